package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"actionitems/pkg/logger"
	"actionitems/socket"

	"github.com/gorilla/websocket"
)

// Change is one notification from the change feed.
type Change struct {
	NotebookID string
	Action     string
	ID         string
}

// Watch joins the change feed of notebookID. Changes made by this client's own
// session are filtered out by the service. The channel closes when ctx ends or
// the connection drops.
func (c *Client) Watch(ctx context.Context, notebookID string) (<-chan Change, error) {
	u, err := url.Parse(c.BaseURL + "/ws")
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.RawQuery = url.Values{
		"token":      {c.Token},
		"notebookId": {notebookID},
		"session":    {c.SessionID},
	}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial change feed: %w", err)
	}

	changes := make(chan Change, 8)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(changes)
		defer conn.Close()
		for {
			var msg socket.WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					logger.Sugar.Warnf("Change feed for notebook %s closed: %v", notebookID, err)
				}
				return
			}
			if msg.Type != socket.ChangedType {
				continue
			}

			var p socket.ChangePayload
			if len(msg.Payload) > 0 {
				if err := json.Unmarshal(msg.Payload, &p); err != nil {
					logger.Sugar.Errorf("Bad change payload: %v", err)
				}
			}
			select {
			case changes <- Change{NotebookID: msg.NotebookID, Action: p.Action, ID: p.ID}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return changes, nil
}
