package service

import (
	"context"
	"errors"
	"time"

	"actionitems/internal/actionitem/model"
	"actionitems/internal/actionitem/repository"
	"actionitems/socket"
)

var (
	ErrEmptyText    = model.ErrEmptyText
	ErrMissingScope = model.ErrMissingScope
	ErrMissingID    = errors.New("action item ID is required")
)

type sessionKey struct{}

// WithSessionID tags the context with the session that issued a mutation, so
// the change feed can skip telling that session about its own write.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func sessionID(ctx context.Context) string {
	s, _ := ctx.Value(sessionKey{}).(string)
	return s
}

type ActionItemService struct {
	Repo *repository.ActionItemRepository
	Hub  *socket.Hub
	Now  func() time.Time
}

func NewActionItemService(repo *repository.ActionItemRepository, hub *socket.Hub) *ActionItemService {
	return &ActionItemService{Repo: repo, Hub: hub, Now: time.Now}
}

func (s *ActionItemService) List(ctx context.Context, notebookID, userID string) ([]model.ActionItem, error) {
	if notebookID == "" || userID == "" {
		return nil, ErrMissingScope
	}
	return s.Repo.ListByNotebook(ctx, notebookID, userID)
}

func (s *ActionItemService) Create(ctx context.Context, in model.NewActionItem) (*model.ActionItem, error) {
	if in.NotebookID == "" || in.UserID == "" {
		return nil, ErrMissingScope
	}
	in.ActionText = model.NormalizeText(in.ActionText)
	if in.ActionText == "" {
		return nil, ErrEmptyText
	}

	it, err := s.Repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, it.NotebookID, it.UserID, socket.ActionCreated, it.ID)
	return it, nil
}

// Update returns nil, nil when the item does not exist or is not owned by
// userID.
func (s *ActionItemService) Update(ctx context.Context, id, userID string, p model.Patch) (*model.ActionItem, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	if userID == "" {
		return nil, ErrMissingScope
	}
	if p.ActionText != nil {
		text := model.NormalizeText(*p.ActionText)
		if text == "" {
			return nil, ErrEmptyText
		}
		p.ActionText = &text
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.Now().UTC()
	}

	it, err := s.Repo.Update(ctx, id, userID, p)
	if err != nil || it == nil {
		return it, err
	}
	s.notify(ctx, it.NotebookID, userID, socket.ActionUpdated, it.ID)
	return it, nil
}

func (s *ActionItemService) Delete(ctx context.Context, id, userID string) error {
	if id == "" {
		return ErrMissingID
	}
	if userID == "" {
		return ErrMissingScope
	}

	notebookID, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if notebookID != "" {
		s.notify(ctx, notebookID, userID, socket.ActionDeleted, id)
	}
	return nil
}

func (s *ActionItemService) notify(ctx context.Context, notebookID, userID, action, id string) {
	if s.Hub == nil {
		return
	}
	s.Hub.Notify(notebookID, userID, sessionID(ctx), action, id)
}
