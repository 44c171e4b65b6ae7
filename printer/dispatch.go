package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go-restaurant-printing/models"
)

var ErrUnknownTicketKind = errors.New("unknown ticket kind")

// Dispatcher delivers tickets to a printer. Expected failures are logged
// and reported as false; they never escape as errors or panics.
type Dispatcher interface {
	PrintKitchenTicket(ctx context.Context, order models.Order, items []models.OrderItem) bool
	PrintCustomerReceipt(ctx context.Context, order models.Order, items []models.OrderItem) bool
}

// Print routes a ticket kind to the matching dispatcher method.
func Print(ctx context.Context, d Dispatcher, kind models.TicketKind, order models.Order, items []models.OrderItem) (bool, error) {
	switch kind {
	case models.TicketKitchen:
		return d.PrintKitchenTicket(ctx, order, items), nil
	case models.TicketReceipt:
		return d.PrintCustomerReceipt(ctx, order, items), nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownTicketKind, kind)
}

type Options struct {
	Printers   models.PrinterRoles
	RelayURL   string
	RelayToken string
	Formatter  *Formatter
	Transport  Transport
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewDispatcher picks the delivery strategy once: print directly when this
// host has printers configured, otherwise hand jobs to the print service.
func NewDispatcher(opts Options) Dispatcher {
	if opts.Printers.Any() {
		return NewLocalDispatcher(opts.Printers, opts.Formatter, opts.Transport, opts.Logger)
	}
	return NewRelayDispatcher(opts.RelayURL, opts.RelayToken, opts.HTTPClient, opts.Logger)
}

func ticketLabel(kind models.TicketKind) string {
	if kind == models.TicketKitchen {
		return "comanda"
	}
	return "boleta"
}

// recoverJob turns a panic inside one print call into a false outcome so a
// broken job cannot take down the process.
func recoverJob(ok *bool, logger *slog.Logger, kind models.TicketKind, order models.Order) {
	if r := recover(); r != nil {
		logger.Error("print_job_panic", "ticket", ticketLabel(kind), "order", order.OrderNumber, "panic", fmt.Sprint(r))
		*ok = false
	}
}

// LocalDispatcher formats tickets and writes them to printers reachable
// from this host.
type LocalDispatcher struct {
	printers  models.PrinterRoles
	formatter *Formatter
	transport Transport
	locks     *DeviceLocks
	logger    *slog.Logger
}

func NewLocalDispatcher(printers models.PrinterRoles, formatter *Formatter, transport Transport, logger *slog.Logger) *LocalDispatcher {
	if formatter == nil {
		formatter = &Formatter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalDispatcher{
		printers:  printers,
		formatter: formatter,
		transport: transport,
		locks:     NewDeviceLocks(),
		logger:    logger,
	}
}

func (d *LocalDispatcher) PrintKitchenTicket(ctx context.Context, order models.Order, items []models.OrderItem) bool {
	return d.print(ctx, models.TicketKitchen, order, items)
}

func (d *LocalDispatcher) PrintCustomerReceipt(ctx context.Context, order models.Order, items []models.OrderItem) bool {
	return d.print(ctx, models.TicketReceipt, order, items)
}

func (d *LocalDispatcher) print(ctx context.Context, kind models.TicketKind, order models.Order, items []models.OrderItem) (ok bool) {
	defer recoverJob(&ok, d.logger, kind, order)

	if len(items) == 0 {
		d.logger.Warn("print_job_empty", "ticket", ticketLabel(kind), "order", order.OrderNumber)
		return false
	}
	cfg := d.printers.For(kind)
	if cfg == nil {
		d.logger.Warn("printer_not_configured", "ticket", ticketLabel(kind), "order", order.OrderNumber)
		return false
	}
	if d.transport == nil {
		d.logger.Warn("printer_transport_unavailable", "ticket", ticketLabel(kind), "order", order.OrderNumber)
		return false
	}

	var ticket Ticket
	if kind == models.TicketKitchen {
		ticket = d.formatter.KitchenTicket(order, items)
	} else {
		ticket = d.formatter.CustomerReceipt(order, items)
	}
	payload, err := EncodeESCPOS(ticket)
	if err != nil {
		d.logger.Error("ticket_encode_failed", "ticket", ticketLabel(kind), "order", order.OrderNumber, "error", err)
		return false
	}

	unlock := d.locks.Lock(*cfg)
	defer unlock()

	// once formatted, a job runs to completion
	err = Transmit(context.WithoutCancel(ctx), d.transport, *cfg, payload, d.logger)
	attrs := []any{"ticket", ticketLabel(kind), "order", order.OrderNumber, "kind", cfg.Kind, "address", cfg.Address}
	switch {
	case errors.Is(err, ErrTransportUnavailable):
		d.logger.Warn("printer_unavailable", append(attrs, "error", err)...)
		return false
	case errors.Is(err, ErrSend):
		d.logger.Error("printer_send_failed", append(attrs, "error", err)...)
		return false
	case err != nil:
		d.logger.Error("printer_connect_failed", append(attrs, "error", err)...)
		return false
	}
	d.logger.Info("ticket_printed", attrs...)
	return true
}

// RelayDispatcher forwards jobs to the print service running next to the
// printers.
type RelayDispatcher struct {
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

func NewRelayDispatcher(baseURL, token string, client *http.Client, logger *slog.Logger) *RelayDispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RelayDispatcher{
		url:    strings.TrimSuffix(baseURL, "/"),
		token:  token,
		client: client,
		logger: logger,
	}
}

func (d *RelayDispatcher) PrintKitchenTicket(ctx context.Context, order models.Order, items []models.OrderItem) bool {
	return d.forward(ctx, models.TicketKitchen, order, items)
}

func (d *RelayDispatcher) PrintCustomerReceipt(ctx context.Context, order models.Order, items []models.OrderItem) bool {
	return d.forward(ctx, models.TicketReceipt, order, items)
}

func (d *RelayDispatcher) forward(ctx context.Context, kind models.TicketKind, order models.Order, items []models.OrderItem) (ok bool) {
	defer recoverJob(&ok, d.logger, kind, order)

	if len(items) == 0 {
		d.logger.Warn("print_job_empty", "ticket", ticketLabel(kind), "order", order.OrderNumber)
		return false
	}
	if d.url == "" || d.token == "" {
		d.logger.Warn("print_service_not_configured", "ticket", ticketLabel(kind), "order", order.OrderNumber)
		return false
	}

	result, err := d.post(context.WithoutCancel(ctx), models.PrintJob{Type: kind, Order: order, Items: items})
	if err != nil {
		d.logger.Error("print_service_failed", "ticket", ticketLabel(kind), "order", order.OrderNumber, "error", err)
		return false
	}
	d.logger.Info("print_service_accepted", "ticket", ticketLabel(kind), "order", order.OrderNumber,
		"success", result.Success, "message", result.Message)
	return result.Success
}

func (d *RelayDispatcher) post(ctx context.Context, job models.PrintJob) (models.PrintResult, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return models.PrintResult{}, fmt.Errorf("marshal print job: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return models.PrintResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		return models.PrintResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.PrintResult{}, fmt.Errorf("read response: %w", err)
	}

	var result models.PrintResult
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if json.Unmarshal(raw, &result) == nil && result.Error != "" {
			return models.PrintResult{}, errors.New(result.Error)
		}
		return models.PrintResult{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return models.PrintResult{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
