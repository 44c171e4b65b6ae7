package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-restaurant-printing/config"
	"go-restaurant-printing/controllers"
	"go-restaurant-printing/database"
	"go-restaurant-printing/events"
	"go-restaurant-printing/helpers"
	"go-restaurant-printing/middleware"
	"go-restaurant-printing/printer"
	"go-restaurant-printing/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	logger := helpers.NewLogger("app", cfg.LogLevel)
	for _, w := range cfg.Warnings {
		logger.Warn("config_incomplete", "detail", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orders, err := database.NewOrderSource(ctx, cfg.Store)
	if err != nil {
		logger.Error("order_store_unavailable", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer orders.Close(context.Background())

	relayURL, relayToken := cfg.Relay.Endpoint()
	dispatcher := printer.NewDispatcher(printer.Options{
		Printers:   cfg.Printers,
		RelayURL:   relayURL,
		RelayToken: relayToken,
		Formatter:  printer.NewFormatter(cfg.Business, cfg.Location),
		Transport:  printer.NewSystemTransport(cfg.DialTimeout, logger),
		HTTPClient: &http.Client{Timeout: cfg.RelayTimeout},
		Logger:     logger,
	})
	if cfg.Printers.Any() {
		logger.Info("dispatch_strategy", "strategy", "local")
	} else {
		logger.Info("dispatch_strategy", "strategy", "relay", "url", relayURL)
	}

	hub := controllers.NewHub(logger)
	notifying := controllers.NewNotifyingDispatcher(dispatcher, hub)

	if cfg.Events.Enabled() {
		consumer := events.NewConsumer(orders, notifying, cfg.Events, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("consumer_failed", "error", err)
			}
		}()
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:9000"}
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"POST", "GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	routes.WebSocketRoutes(router, hub)
	authorized := router.Group("", middleware.Authentication(cfg.SecretKey))
	routes.PrintRoutes(authorized, orders, notifying, cfg.Relay.Handoff, logger)

	serve(ctx, logger, &http.Server{Addr: ":" + cfg.Port, Handler: router})
}

func serve(ctx context.Context, logger *slog.Logger, srv *http.Server) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server_listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server_failed", "error", err)
		os.Exit(1)
	}
}
