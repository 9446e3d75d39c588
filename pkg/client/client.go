// Package client talks to the action items service over HTTP and follows its
// change feed over a websocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"actionitems/internal/actionitem/model"

	"github.com/google/uuid"
)

// SessionHeader must match the header the service reads to skip echoing a
// session's own writes back on the change feed.
const SessionHeader = "X-Session-ID"

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("action items service returned %d: %s", e.Status, e.Message)
}

// Client implements the data-access layer's Store against a running service.
type Client struct {
	BaseURL    string
	Token      string
	SessionID  string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Token:     token,
		SessionID: uuid.NewString(),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// List ignores userID: the service scopes by the token's subject.
func (c *Client) List(ctx context.Context, notebookID, _ string) ([]model.ActionItem, error) {
	q := url.Values{"notebookId": {notebookID}}

	var items []model.ActionItem
	if _, err := c.do(ctx, http.MethodGet, "/api/action-items?"+q.Encode(), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.ActionItem{}
	}
	return items, nil
}

func (c *Client) Create(ctx context.Context, in model.NewActionItem) (*model.ActionItem, error) {
	body := model.CreateRequest{NotebookID: in.NotebookID, ActionText: in.ActionText}

	var it model.ActionItem
	if _, err := c.do(ctx, http.MethodPost, "/api/action-items/create", body, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Update returns nil, nil when the service reports that no owned row matched.
func (c *Client) Update(ctx context.Context, id, _ string, p model.Patch) (*model.ActionItem, error) {
	body := model.UpdateRequest{ActionText: p.ActionText, IsCompleted: p.IsCompleted}
	if !p.UpdatedAt.IsZero() {
		stamp := p.UpdatedAt.UTC()
		body.UpdatedAt = &stamp
	}
	q := url.Values{"id": {id}}

	var it model.ActionItem
	status, err := c.do(ctx, http.MethodPut, "/api/action-items/update?"+q.Encode(), body, &it)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &it, nil
}

func (c *Client) Delete(ctx context.Context, id, _ string) error {
	q := url.Values{"id": {id}}
	_, err := c.do(ctx, http.MethodDelete, "/api/action-items/delete?"+q.Encode(), nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.SessionID != "" {
		req.Header.Set(SessionHeader, c.SessionID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
