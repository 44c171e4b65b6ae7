package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-restaurant-printing/models"
	"go-restaurant-printing/printer"
)

// ReceivePrintJob is the print service endpoint: it accepts a relayed job
// and prints it on the printers attached to this host.
func ReceivePrintJob(dispatcher printer.Dispatcher, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var job models.PrintJob
		if err := c.BindJSON(&job); err != nil {
			errorResponse(c, http.StatusBadRequest, "Cuerpo inválido: "+err.Error())
			return
		}
		if len(job.Items) == 0 {
			errorResponse(c, http.StatusBadRequest, "La orden no tiene items para imprimir")
			return
		}
		if err := validate.Struct(job); err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}

		ok, err := printer.Print(c.Request.Context(), dispatcher, job.Type, job.Order, job.Items)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		logger.Info("print_job_received", "ticket", job.Type, "order", job.Order.OrderNumber, "success", ok)
		if !ok {
			errorResponse(c, http.StatusServiceUnavailable, printFailedMessage(job.Type))
			return
		}
		c.JSON(http.StatusOK, models.PrintResult{Success: true, Message: printedMessage(job.Type)})
	}
}

// Health reports which printer roles this print service can reach.
func Health(printers models.PrinterRoles) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"kitchen": printers.Kitchen != nil,
			"cashier": printers.Cashier != nil,
		})
	}
}
