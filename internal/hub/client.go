// internal/hub/client.go
package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

// Client is a connected contest observer.
type Client struct {
	Name       string
	Conn       *websocket.Conn
	Send       chan []byte
	LastActive time.Time
}
