package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-restaurant-printing/database"
	"go-restaurant-printing/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeOrders struct {
	order models.Order
	items []models.OrderItem
	err   error
}

func (f fakeOrders) FindOrder(_ context.Context, id string) (models.Order, []models.OrderItem, error) {
	if f.err != nil {
		return models.Order{}, nil, f.err
	}
	if id != f.order.ID {
		return models.Order{}, nil, database.ErrOrderNotFound
	}
	return f.order, f.items, nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	result bool
	calls  []models.TicketKind
}

func (f *fakeDispatcher) record(kind models.TicketKind) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kind)
	return f.result
}

func (f *fakeDispatcher) PrintKitchenTicket(context.Context, models.Order, []models.OrderItem) bool {
	return f.record(models.TicketKitchen)
}

func (f *fakeDispatcher) PrintCustomerReceipt(context.Context, models.Order, []models.OrderItem) bool {
	return f.record(models.TicketReceipt)
}

var (
	testOrder = models.Order{ID: "o-1", OrderNumber: "ORD-1", Status: models.StatusPreparing, CreatedAt: time.Date(2026, 10, 17, 13, 5, 0, 0, time.UTC)}
	testItems = []models.OrderItem{{Quantity: 1, UnitPrice: 1190, Subtotal: 1190, MenuItem: &models.MenuItemRef{ID: 7, Name: "Shawarma"}}}
)

func noHandoff() (string, string) { return "", "" }

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func printRouter(orders OrderFinder, d *fakeDispatcher, handoff Handoff) *gin.Engine {
	r := gin.New()
	r.POST("/api/print", PrintOrder(orders, d, handoff, discardLogger()))
	return r
}

func TestPrintOrder(t *testing.T) {
	d := &fakeDispatcher{result: true}
	r := printRouter(fakeOrders{order: testOrder, items: testItems}, d, noHandoff)

	w := post(r, "/api/print", `{"type":"kitchen","ordenId":"o-1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Comanda impresa"}`, w.Body.String())

	w = post(r, "/api/print", `{"type":"receipt","ordenId":"o-1"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.TicketKind{models.TicketKitchen, models.TicketReceipt}, d.calls)
}

func TestPrintOrderErrors(t *testing.T) {
	tests := map[string]struct {
		orders OrderFinder
		result bool
		body   string
		code   int
	}{
		"missing fields":  {fakeOrders{order: testOrder, items: testItems}, true, `{"type":"kitchen"}`, http.StatusBadRequest},
		"bad type":        {fakeOrders{order: testOrder, items: testItems}, true, `{"type":"invoice","ordenId":"o-1"}`, http.StatusBadRequest},
		"not found":       {fakeOrders{order: testOrder, items: testItems}, true, `{"type":"kitchen","ordenId":"o-9"}`, http.StatusNotFound},
		"no items":        {fakeOrders{order: testOrder}, true, `{"type":"kitchen","ordenId":"o-1"}`, http.StatusBadRequest},
		"store failure":   {fakeOrders{err: errors.New("connection reset")}, true, `{"type":"kitchen","ordenId":"o-1"}`, http.StatusInternalServerError},
		"printer failure": {fakeOrders{order: testOrder, items: testItems}, false, `{"type":"receipt","ordenId":"o-1"}`, http.StatusBadGateway},
		"malformed json":  {fakeOrders{order: testOrder, items: testItems}, true, `{`, http.StatusBadRequest},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r := printRouter(tc.orders, &fakeDispatcher{result: tc.result}, noHandoff)

			w := post(r, "/api/print", tc.body)

			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestPrintOrderHandoff(t *testing.T) {
	d := &fakeDispatcher{result: true}
	handoff := func() (string, string) { return "https://print.example.com", "public" }
	r := printRouter(fakeOrders{order: testOrder, items: testItems}, d, handoff)

	w := post(r, "/api/print?handoff=1", `{"type":"receipt","ordenId":"o-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, d.calls)

	var body struct {
		Success           bool               `json:"success"`
		PrintServiceURL   string             `json:"printServiceUrl"`
		PrintServiceToken string             `json:"printServiceToken"`
		Type              models.TicketKind  `json:"type"`
		Orden             models.Order       `json:"orden"`
		Items             []models.OrderItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "https://print.example.com", body.PrintServiceURL)
	assert.Equal(t, "public", body.PrintServiceToken)
	assert.Equal(t, models.TicketReceipt, body.Type)
	assert.Equal(t, "ORD-1", body.Orden.OrderNumber)
	assert.Len(t, body.Items, 1)

	r = printRouter(fakeOrders{order: testOrder, items: testItems}, d, noHandoff)
	w = post(r, "/api/print?handoff=1", `{"type":"receipt","ordenId":"o-1"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReceivePrintJob(t *testing.T) {
	job, err := json.Marshal(models.PrintJob{Type: models.TicketKitchen, Order: testOrder, Items: testItems})
	require.NoError(t, err)

	tests := map[string]struct {
		body   string
		result bool
		code   int
	}{
		"printed":        {string(job), true, http.StatusOK},
		"printer down":   {string(job), false, http.StatusServiceUnavailable},
		"no items":       {`{"type":"kitchen","orden":{"numero_orden":"ORD-1","estado":"pending"},"items":[]}`, true, http.StatusBadRequest},
		"unknown type":   {strings.Replace(string(job), `"kitchen"`, `"invoice"`, 1), true, http.StatusBadRequest},
		"zero quantity":  {strings.Replace(string(job), `"cantidad":1`, `"cantidad":0`, 1), true, http.StatusBadRequest},
		"malformed json": {`not json`, true, http.StatusBadRequest},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := &fakeDispatcher{result: tc.result}
			r := gin.New()
			r.POST("/", ReceivePrintJob(d, discardLogger()))

			w := post(r, "/", tc.body)

			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.JSONEq(t, `{"success":true,"message":"Comanda impresa"}`, w.Body.String())
			}
		})
	}
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/health", Health(models.PrinterRoles{Kitchen: &models.PrinterConfig{Kind: models.PrinterNetwork, Address: "10.0.0.5", Port: 9100}}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","kitchen":true,"cashier":false}`, w.Body.String())
}

func TestNotifyingDispatcherBroadcasts(t *testing.T) {
	hub := NewHub(discardLogger())
	r := gin.New()
	r.GET("/ws", hub.HandleWebSocket())
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	d := NewNotifyingDispatcher(&fakeDispatcher{result: false}, hub)
	assert.False(t, d.PrintCustomerReceipt(context.Background(), testOrder, testItems))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event   string            `json:"event"`
		Payload models.PrintEvent `json:"payload"`
	}
	require.NoError(t, json.NewDecoder(bytes.NewReader(raw)).Decode(&msg))
	assert.Equal(t, "printJob", msg.Event)
	assert.Equal(t, models.TicketReceipt, msg.Payload.Type)
	assert.Equal(t, "ORD-1", msg.Payload.OrderNumber)
	assert.False(t, msg.Payload.Success)
	assert.NotEmpty(t, msg.Payload.JobID)
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(discardLogger())
	r := gin.New()
	r.GET("/ws", hub.HandleWebSocket())
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastDropsLaggingClients(t *testing.T) {
	hub := NewHub(discardLogger())
	stalled := &client{send: make(chan []byte, 1)}
	stalled.send <- []byte("pending")
	live := &client{send: make(chan []byte, 1)}
	hub.clients[stalled] = true
	hub.clients[live] = true

	done := make(chan struct{})
	go func() {
		hub.Broadcast(Message{Event: printJobEvent, Payload: "x"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a stalled client")
	}

	assert.Equal(t, 1, hub.Clients())
	assert.JSONEq(t, `{"event":"printJob","payload":"x"}`, string(<-live.send))

	<-stalled.send
	_, open := <-stalled.send
	assert.False(t, open)
}
