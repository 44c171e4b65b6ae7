package routes

import (
	"github.com/gin-gonic/gin"

	"go-restaurant-printing/controllers"
)

func WebSocketRoutes(incomingRoutes gin.IRoutes, hub *controllers.Hub) {
	incomingRoutes.GET("/ws", hub.HandleWebSocket())
}
