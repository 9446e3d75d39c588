package model

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyText    = errors.New("action text cannot be empty")
	ErrMissingScope = errors.New("notebook ID and user ID are required")
)

type ActionItem struct {
	ID          string    `json:"id"`
	NotebookID  string    `json:"notebook_id"`
	UserID      string    `json:"user_id"`
	ActionText  string    `json:"action_text"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewActionItem is an insert. Completion always starts false.
type NewActionItem struct {
	NotebookID string
	UserID     string
	ActionText string
}

// Patch is a partial update; nil fields are left alone.
type Patch struct {
	ActionText  *string   `json:"action_text,omitempty"`
	IsCompleted *bool     `json:"is_completed,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Patch) Empty() bool {
	return p.ActionText == nil && p.IsCompleted == nil
}

type CreateRequest struct {
	NotebookID string `json:"notebook_id"`
	ActionText string `json:"action_text"`
}

type UpdateRequest struct {
	ActionText  *string    `json:"action_text,omitempty"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// NormalizeText trims the text the way every write path expects it.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}

func Text(s string) *string { return &s }

func Completed(b bool) *bool { return &b }
