// internal/hub/hub.go
// Provides the Hub: live contest feed for websocket observers and the JetStream contest journal.
package hub

import (
	"context"
	"sync"

	"github.com/erilali/spamcontest/internal/contest"
	"github.com/erilali/spamcontest/internal/logger"
	"github.com/nats-io/nats.go"
)

const broadcastBuffer = 256

// Hub fans contest lifecycle events out to websocket clients and, when NATS is available, records
// them in JetStream. It implements contest.Observer.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan []byte
	Mu         sync.Mutex

	NatsConn *nats.Conn
	Js       nats.JetStreamContext
	Logger   *logger.Logger

	done chan struct{} // closed when Run returns

	// Snapshot lists running contests; sent to clients when they connect or ask for it.
	Snapshot func() []contest.Active
}

// NewHub creates a Hub. nc and js may be nil, in which case nothing is journaled.
func NewHub(nc *nats.Conn, js nats.JetStreamContext, logger *logger.Logger, snapshot func() []contest.Active) *Hub {
	if snapshot == nil {
		snapshot = func() []contest.Active { return nil }
	}
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan []byte, broadcastBuffer),
		NatsConn:   nc,
		Js:         js,
		Logger:     logger,
		Snapshot:   snapshot,
		done:       make(chan struct{}),
	}
}

// Run serves client registration and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.Mu.Lock()
			for client := range h.Clients {
				delete(h.Clients, client)
				close(client.Send)
			}
			h.Mu.Unlock()
			return

		case client := <-h.Register:
			h.Mu.Lock()
			h.Clients[client] = true
			h.Mu.Unlock()
			h.Logger.Infof("Observer registered: %s", client.Name)
			h.SendActiveContests(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case message := <-h.Broadcast:
			// copy so the lock is not held while sending
			h.Mu.Lock()
			clientsToBroadcast := make([]*Client, 0, len(h.Clients))
			for client := range h.Clients {
				clientsToBroadcast = append(clientsToBroadcast, client)
			}
			h.Mu.Unlock()

			for _, client := range clientsToBroadcast {
				select {
				case client.Send <- message:
				default:
					// Slow observer, drop it. The pumps notice the closed channel.
					h.removeClient(client)
				}
			}
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if _, ok := h.Clients[client]; ok {
		delete(h.Clients, client)
		close(client.Send)
		h.Logger.Infof("Observer unregistered: %s", client.Name)
	}
}

// ClientCount is the number of connected observers.
func (h *Hub) ClientCount() int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return len(h.Clients)
}
