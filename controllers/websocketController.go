package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-restaurant-printing/models"
	"go-restaurant-printing/printer"
)

// Message is the envelope pushed to dashboard clients.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

const printJobEvent = "printJob"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait   = 5 * time.Second
	sendBufSize = 16
)

// Hub keeps the connected dashboards and fans print events out to them.
// Each client has its own writer goroutine, so a stalled dashboard never
// blocks a broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	logger  *slog.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{clients: make(map[*client]bool), logger: logger}
}

func (h *Hub) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Warn("websocket_upgrade_failed", "error", err)
			return
		}
		defer conn.Close()

		cl := &client{conn: conn, send: make(chan []byte, sendBufSize)}
		h.mu.Lock()
		h.clients[cl] = true
		h.mu.Unlock()
		go h.writePump(cl)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(cl)
				break
			}
		}
	}
}

// writePump drains one client's queue until the hub closes it.
func (h *Hub) writePump(cl *client) {
	for msg := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warn("websocket_write_failed", "error", err)
			h.remove(cl)
			cl.conn.Close()
			return
		}
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[cl] {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// Clients returns the number of connected dashboards.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues one message for every client. A client whose queue is
// full is dropped.
func (h *Hub) Broadcast(message Message) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("websocket_marshal_failed", "event", message.Event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- messageBytes:
		default:
			h.logger.Warn("websocket_client_lagging", "event", message.Event)
			delete(h.clients, cl)
			close(cl.send)
		}
	}
}

// NotifyingDispatcher wraps a dispatcher and announces each outcome on the
// hub.
type NotifyingDispatcher struct {
	next printer.Dispatcher
	hub  *Hub
	now  func() time.Time
}

func NewNotifyingDispatcher(next printer.Dispatcher, hub *Hub) *NotifyingDispatcher {
	return &NotifyingDispatcher{next: next, hub: hub, now: time.Now}
}

func (d *NotifyingDispatcher) PrintKitchenTicket(ctx context.Context, order models.Order, items []models.OrderItem) bool {
	ok := d.next.PrintKitchenTicket(ctx, order, items)
	d.notify(models.TicketKitchen, order, ok)
	return ok
}

func (d *NotifyingDispatcher) PrintCustomerReceipt(ctx context.Context, order models.Order, items []models.OrderItem) bool {
	ok := d.next.PrintCustomerReceipt(ctx, order, items)
	d.notify(models.TicketReceipt, order, ok)
	return ok
}

func (d *NotifyingDispatcher) notify(kind models.TicketKind, order models.Order, ok bool) {
	d.hub.Broadcast(Message{
		Event: printJobEvent,
		Payload: models.PrintEvent{
			JobID:       uuid.NewString(),
			Type:        kind,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Success:     ok,
			At:          d.now(),
		},
	})
}
