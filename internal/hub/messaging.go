// internal/hub/messaging.go
package hub

import (
	"encoding/json"
	"unicode"

	"github.com/erilali/spamcontest/internal/message"
)

// validateObserverName accepts 1-64 printable characters.
func validateObserverName(name string) bool {
	runes := []rune(name)
	if len(runes) < 1 || len(runes) > 64 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// HandleClientMessage answers requests sent by an observer.
func (h *Hub) HandleClientMessage(client *Client, request map[string]interface{}) {
	messageType, ok := request["type"].(string)
	if !ok {
		h.SendErrorMessage(client, "Invalid message format")
		return
	}

	switch messageType {
	case message.TypeActiveContests:
		h.SendActiveContests(client)
	default:
		h.SendErrorMessage(client, "Unknown message type")
	}
}

// SendActiveContests sends the list of running contests to one observer.
func (h *Hub) SendActiveContests(client *Client) {
	h.sendTo(client, message.WSMessage{
		Version: message.Version,
		Type:    message.TypeActiveContests,
		Data:    h.Snapshot(),
	})
}

// SendErrorMessage sends an error to one observer.
func (h *Hub) SendErrorMessage(client *Client, errorMsg string) {
	h.sendTo(client, message.WSMessage{
		Version:   message.Version,
		Type:      message.TypeError,
		Data:      errorMsg,
		ErrorCode: "bad_request",
	})
}

// sendTo queues msg for client unless the client is gone or its buffer is full.
func (h *Hub) sendTo(client *Client, msg message.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.Logger.Errorf("Failed to marshal %s message: %v", msg.Type, err)
		return
	}
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if !h.Clients[client] {
		return
	}
	select {
	case client.Send <- data:
	default:
		h.Logger.Warnf("Send buffer full for %s, dropping %s", client.Name, msg.Type)
	}
}

// BroadcastMessage queues msg for every observer. It never blocks the caller.
func (h *Hub) BroadcastMessage(msg message.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.Logger.Errorf("Failed to marshal %s message: %v", msg.Type, err)
		return
	}
	select {
	case h.Broadcast <- data:
	default:
		h.Logger.Warnf("Broadcast buffer full, dropping %s", msg.Type)
	}
}
