package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"go-restaurant-printing/controllers"
	"go-restaurant-printing/middleware"
	"go-restaurant-printing/models"
	"go-restaurant-printing/printer"
)

// PrintServiceRoutes registers the relay surface: an open health check and
// the bearer-protected print endpoint.
func PrintServiceRoutes(incomingRoutes *gin.Engine, printers models.PrinterRoles, dispatcher printer.Dispatcher, token, tokenHash string, logger *slog.Logger) {
	incomingRoutes.GET("/health", controllers.Health(printers))
	incomingRoutes.POST("/", middleware.RelayAuthentication(token, tokenHash), controllers.ReceivePrintJob(dispatcher, logger))
}
