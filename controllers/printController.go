package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"

	"go-restaurant-printing/database"
	"go-restaurant-printing/models"
	"go-restaurant-printing/printer"
)

var validate = validator.New()

// OrderFinder loads an order and its items for printing.
type OrderFinder interface {
	FindOrder(ctx context.Context, orderID string) (models.Order, []models.OrderItem, error)
}

// Handoff resolves the print service URL and token given to browsers.
type Handoff func() (url, token string)

type printRequest struct {
	Type    models.TicketKind `json:"type" validate:"required"`
	OrdenID string            `json:"ordenId" validate:"required"`
}

func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// PrintOrder prints a kitchen ticket or customer receipt for an order on
// demand, without changing its status. With ?handoff=1 it returns the job
// and the print service endpoint so a browser in the store can post it.
func PrintOrder(orders OrderFinder, dispatcher printer.Dispatcher, handoff Handoff, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req printRequest
		if err := c.BindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, "Tipo de impresión y ID de orden requeridos")
			return
		}
		if err := validate.Struct(req); err != nil {
			errorResponse(c, http.StatusBadRequest, "Tipo de impresión y ID de orden requeridos")
			return
		}
		if !req.Type.Valid() {
			errorResponse(c, http.StatusBadRequest, `Tipo de impresión inválido. Debe ser "kitchen" o "receipt"`)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, items, err := orders.FindOrder(ctx, req.OrdenID)
		if errors.Is(err, database.ErrOrderNotFound) {
			errorResponse(c, http.StatusNotFound, "Orden no encontrada")
			return
		}
		if err != nil {
			logger.Error("order_lookup_failed", "order_id", req.OrdenID, "error", err)
			errorResponse(c, http.StatusInternalServerError, "Error obteniendo la orden: "+err.Error())
			return
		}
		if len(items) == 0 {
			errorResponse(c, http.StatusBadRequest, "La orden no tiene items para imprimir")
			return
		}

		if c.Query("handoff") == "1" {
			url, token := handoff()
			if url == "" || token == "" {
				logger.Error("print_service_not_configured", "order", order.OrderNumber)
				errorResponse(c, http.StatusInternalServerError,
					"Servicio de impresión local no configurado. Verifica PUBLIC_PRINT_SERVICE_URL y PUBLIC_PRINT_SERVICE_TOKEN.")
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"success":           true,
				"printServiceUrl":   url,
				"printServiceToken": token,
				"type":              req.Type,
				"orden":             order,
				"items":             items,
				"message":           "Datos listos para impresión",
			})
			return
		}

		ok, err := printer.Print(c.Request.Context(), dispatcher, req.Type, order, items)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		if !ok {
			errorResponse(c, http.StatusBadGateway, printFailedMessage(req.Type))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": printedMessage(req.Type)})
	}
}

func printedMessage(kind models.TicketKind) string {
	if kind == models.TicketKitchen {
		return "Comanda impresa"
	}
	return "Boleta impresa"
}

func printFailedMessage(kind models.TicketKind) string {
	if kind == models.TicketKitchen {
		return "No se pudo imprimir la comanda"
	}
	return "No se pudo imprimir la boleta"
}
