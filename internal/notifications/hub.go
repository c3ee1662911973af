package notifications

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types pushed to connected back-office clients.
const (
	EventAgreementCommitted  = "agreement_committed"
	EventContractTerminated  = "contract_terminated"
	EventRoomStatusChanged   = "room_status_changed"
	EventInvoiceIssued       = "invoice_issued"
	EventInvoicePaid         = "invoice_paid"
	EventDepositReserved     = "deposit_reserved"
)

// Event is one realtime notification.
type Event struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans events out to every connected websocket client. Slow or
// broken clients are dropped, never waited on.
type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Event
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 64),
	}
}

// Run drains the broadcast channel; call it in its own goroutine.
func (h *Hub) Run() {
	for event := range h.broadcast {
		h.clientsMux.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(event); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.clientsMux.Unlock()
	}
}

// Publish queues an event for delivery. It never blocks: when the
// buffer is full the event is dropped and logged.
func (h *Hub) Publish(eventType, message string, payload interface{}) {
	event := Event{
		Type:      eventType,
		Message:   message,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[Notify] dropping %s event, broadcast buffer full", eventType)
	}
}

// HandleWebSocket upgrades the connection and parks it until the client
// goes away. Inbound messages are ignored.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Notify] websocket upgrade error:", err)
		return
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	defer conn.Close()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			break
		}
	}
}

// ClientCount reports connected clients, for the health endpoint.
func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients)
}
