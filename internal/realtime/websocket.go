package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sentimatrix/sentimatrix/internal/domain"
)

// EventSeriousTicket is the event name carried by every pushed frame.
const EventSeriousTicket = "serious-ticket"

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// eventFrame is the wire shape of a pushed event.
type eventFrame struct {
	Event string               `json:"event"`
	Data  domain.ProcessedEmail `json:"data"`
}

// ServeWS upgrades the request to a WebSocket connection, registers it as a
// subscriber, and pumps published tickets to it until the client goes away.
// Clients receive only events published while they are connected.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := h.Subscribe()
	h.logger.Info("subscriber connected", "subscriber", sub.ID(), "remote", r.RemoteAddr)

	defer func() {
		h.Unsubscribe(sub)
		conn.Close()
		h.logger.Info("subscriber disconnected", "subscriber", sub.ID())
	}()

	// Reads are discarded; the read loop only detects disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ticket := <-sub.C():
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(eventFrame{Event: EventSeriousTicket, Data: ticket}); err != nil {
				h.logger.Warn("push failed", "subscriber", sub.ID(), "error", err)
				return
			}
		}
	}
}
