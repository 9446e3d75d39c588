package socket

import (
	"encoding/json"
	"sync"

	"actionitems/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	SubscribedType = "SUBSCRIBED"           // Sent once the client has joined its notebook room
	ChangedType    = "ACTION_ITEMS_CHANGED" // A list in the room must be refetched

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type WSMessage struct {
	Type       string          `json:"type"`
	NotebookID string          `json:"notebook_id"`
	UserID     string          `json:"user_id"`
	SessionID  string          `json:"session_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type ChangePayload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// Hub fans change notifications out to the websocket clients watching a
// notebook. Rooms are keyed by notebook ID.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
}

type Client struct {
	Hub        *Hub
	Conn       *websocket.Conn
	NotebookID string
	UserID     string
	SessionID  string
	Send       chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.NotebookID] == nil {
				h.Rooms[client.NotebookID] = make(map[*Client]bool)
			}
			h.Rooms[client.NotebookID][client] = true
			h.mu.Unlock()

			ack, _ := json.Marshal(WSMessage{
				Type:       SubscribedType,
				NotebookID: client.NotebookID,
				UserID:     client.UserID,
				SessionID:  client.SessionID,
			})
			client.Send <- ack

		case client := <-h.Unregister:
			h.removeClient(client)

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			// Only the owner's other sessions care about a change; items are
			// never visible across users.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[msg.NotebookID]))
			for client := range h.Rooms[msg.NotebookID] {
				if client.UserID != msg.UserID {
					continue
				}
				if msg.SessionID != "" && client.SessionID == msg.SessionID {
					continue
				}
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
					h.removeClient(client)
				}
			}
		}
	}
}

// Notify queues a change notification for the notebook room. It never blocks
// the caller; a full queue drops the notification.
func (h *Hub) Notify(notebookID, userID, sessionID, action, id string) {
	payload, _ := json.Marshal(ChangePayload{Action: action, ID: id})
	msg := WSMessage{
		Type:       ChangedType,
		NotebookID: notebookID,
		UserID:     userID,
		SessionID:  sessionID,
		Payload:    payload,
	}
	select {
	case h.Broadcast <- msg:
	default:
		logger.Sugar.Warnf("Broadcast queue full, dropping %s notification for notebook %s", action, notebookID)
	}
}

// RoomSize reports how many clients watch a notebook.
func (h *Hub) RoomSize(notebookID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[notebookID])
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Rooms[client.NotebookID][client]; !ok {
		return
	}
	delete(h.Rooms[client.NotebookID], client)
	close(client.Send)
	if len(h.Rooms[client.NotebookID]) == 0 {
		delete(h.Rooms, client.NotebookID)
		logger.Sugar.Infof("Closed empty room: %s", client.NotebookID)
	}
}
