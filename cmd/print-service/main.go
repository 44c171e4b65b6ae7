package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"go-restaurant-printing/config"
	"go-restaurant-printing/helpers"
	"go-restaurant-printing/printer"
	"go-restaurant-printing/routes"
)

// print-service runs next to the store's printers and prints jobs relayed
// by the app server or handed off to a browser on the store network.
func main() {
	var hash bool
	flagSet := pflag.NewFlagSet("print-service", pflag.ContinueOnError)
	flagSet.BoolVar(&hash, "hash-token", false, "read a token on stdin and print its PRINT_SERVICE_TOKEN_HASH value")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("Error parsing flags: %v", err)
	}
	if hash {
		if err := hashToken(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Error hashing token: %v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	logger := helpers.NewLogger("print-service", cfg.LogLevel)
	for _, w := range cfg.Warnings {
		logger.Warn("config_incomplete", "detail", w)
	}
	if cfg.Relay.Token == "" && cfg.Relay.TokenHash == "" {
		logger.Error("print_service_token_missing", "detail", "set PRINT_SERVICE_TOKEN or PRINT_SERVICE_TOKEN_HASH")
		os.Exit(1)
	}
	if !cfg.Printers.Any() {
		logger.Warn("printer_not_configured", "detail", "no PRINTER_KITCHEN_* or PRINTER_CASHIER_* settings")
	}

	dispatcher := printer.NewLocalDispatcher(
		cfg.Printers,
		printer.NewFormatter(cfg.Business, cfg.Location),
		printer.NewSystemTransport(cfg.DialTimeout, logger),
		logger,
	)

	corsConfig := cors.Config{
		AllowMethods:  []string{"POST", "GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors.New(corsConfig))
	routes.PrintServiceRoutes(router, cfg.Printers, dispatcher, cfg.Relay.Token, cfg.Relay.TokenHash, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: ":" + cfg.PrintServicePort, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("print_service_listening", "addr", srv.Addr, "kitchen", cfg.Printers.Kitchen != nil, "cashier", cfg.Printers.Cashier != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

// hashToken reads the first line of r as the relay token and writes its
// bcrypt hash to w.
func hashToken(r io.Reader, w io.Writer) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return errors.New("empty token")
	}
	hashed, err := helpers.HashRelayToken(token)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hashed)
	return err
}
