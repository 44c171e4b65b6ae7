package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"go-restaurant-printing/controllers"
	"go-restaurant-printing/printer"
)

func PrintRoutes(incomingRoutes gin.IRoutes, orders controllers.OrderFinder, dispatcher printer.Dispatcher, handoff controllers.Handoff, logger *slog.Logger) {
	incomingRoutes.POST("/api/print", controllers.PrintOrder(orders, dispatcher, handoff, logger))
}
