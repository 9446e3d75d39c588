package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"actionitems/internal/actionitem/model"
	"actionitems/internal/actionitem/service"
	"actionitems/middleware"
	"actionitems/pkg/logger"

	"github.com/google/uuid"
)

// SessionHeader carries the caller's session ID so its own change
// notifications are not echoed back on the change feed.
const SessionHeader = "X-Session-ID"

type ActionItemHandler struct {
	Service *service.ActionItemService
}

func NewActionItemHandler(service *service.ActionItemService) *ActionItemHandler {
	return &ActionItemHandler{Service: service}
}

func (h *ActionItemHandler) GetActionItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	notebookID := r.URL.Query().Get("notebookId")
	if notebookID == "" {
		http.Error(w, "Missing notebookId parameter", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.UserID(r.Context())

	items, err := h.Service.List(r.Context(), notebookID, userID)
	if err != nil {
		logger.Sugar.Errorf("Error fetching action items: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *ActionItemHandler) CreateActionItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.NotebookID == "" {
		http.Error(w, "Notebook ID is required", http.StatusBadRequest)
		return
	}

	userID, _ := middleware.UserID(r.Context())

	it, err := h.Service.Create(h.sessionContext(r), model.NewActionItem{
		NotebookID: req.NotebookID,
		UserID:     userID,
		ActionText: req.ActionText,
	})
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to create action item: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, it)
}

func (h *ActionItemHandler) UpdateActionItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req model.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	patch := model.Patch{ActionText: req.ActionText, IsCompleted: req.IsCompleted}
	if patch.Empty() {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}
	if req.UpdatedAt != nil {
		patch.UpdatedAt = req.UpdatedAt.UTC()
	}

	userID, _ := middleware.UserID(r.Context())

	it, err := h.Service.Update(h.sessionContext(r), id, userID, patch)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to update action item %s: %v", id, err)
		writeServiceError(w, err)
		return
	}
	if it == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, it)
}

func (h *ActionItemHandler) DeleteActionItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := itemID(w, r)
	if !ok {
		return
	}

	userID, _ := middleware.UserID(r.Context())

	if err := h.Service.Delete(h.sessionContext(r), id, userID); err != nil {
		logger.Sugar.Errorf("Handler: Failed to delete action item %s: %v", id, err)
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ActionItemHandler) sessionContext(r *http.Request) context.Context {
	return service.WithSessionID(r.Context(), r.Header.Get(SessionHeader))
}

func itemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Invalid id parameter", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyText), errors.Is(err, service.ErrMissingScope), errors.Is(err, service.ErrMissingID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Database error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to write JSON response: %v", err)
	}
}
