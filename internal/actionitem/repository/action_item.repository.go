package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"actionitems/internal/actionitem/model"
	"actionitems/pkg/logger"
)

const columns = "id, notebook_id, user_id, action_text, is_completed, created_at, updated_at"

type ActionItemRepository struct {
	DB *sql.DB
}

func NewActionItemRepository(db *sql.DB) *ActionItemRepository {
	return &ActionItemRepository{DB: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (model.ActionItem, error) {
	var it model.ActionItem
	err := s.Scan(&it.ID, &it.NotebookID, &it.UserID, &it.ActionText, &it.IsCompleted, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

// ListByNotebook returns the user's items in the notebook, newest first.
func (r *ActionItemRepository) ListByNotebook(ctx context.Context, notebookID, userID string) ([]model.ActionItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+columns+` FROM action_items WHERE notebook_id = $1 AND user_id = $2 ORDER BY created_at DESC`,
		notebookID, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list action items for notebook %s: %v", notebookID, err)
		return nil, err
	}
	defer rows.Close()

	items := []model.ActionItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan action item row: %v", err)
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to iterate action items for notebook %s: %v", notebookID, err)
		return nil, err
	}
	return items, nil
}

func (r *ActionItemRepository) Create(ctx context.Context, in model.NewActionItem) (*model.ActionItem, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO action_items (notebook_id, user_id, action_text, is_completed)
		VALUES ($1, $2, $3, false)
		RETURNING `+columns,
		in.NotebookID, in.UserID, in.ActionText)
	it, err := scanItem(row)
	if err != nil {
		logger.Sugar.Errorf("Failed to create action item in notebook %s: %v", in.NotebookID, err)
		return nil, err
	}
	return &it, nil
}

// Update applies the non-nil fields of the patch plus updated_at to the row
// owned by userID. It returns nil, nil when no owned row matched.
func (r *ActionItemRepository) Update(ctx context.Context, id, userID string, p model.Patch) (*model.ActionItem, error) {
	sets := []string{}
	args := []any{}
	if p.ActionText != nil {
		args = append(args, *p.ActionText)
		sets = append(sets, fmt.Sprintf("action_text = $%d", len(args)))
	}
	if p.IsCompleted != nil {
		args = append(args, *p.IsCompleted)
		sets = append(sets, fmt.Sprintf("is_completed = $%d", len(args)))
	}
	args = append(args, p.UpdatedAt)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE action_items SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), columns)

	it, err := scanItem(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		logger.Sugar.Infof("Update of action item %s matched no rows for user %s", id, userID)
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update action item %s: %v", id, err)
		return nil, err
	}
	return &it, nil
}

// Delete removes the row owned by userID and returns the notebook it
// belonged to, or "" when no owned row matched.
func (r *ActionItemRepository) Delete(ctx context.Context, id, userID string) (string, error) {
	var notebookID string
	err := r.DB.QueryRowContext(ctx, `
		DELETE FROM action_items
		WHERE id = $1 AND user_id = $2
		RETURNING notebook_id`, id, userID).Scan(&notebookID)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Sugar.Infof("Delete of action item %s matched no rows for user %s", id, userID)
		return "", nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to delete action item %s: %v", id, err)
		return "", err
	}
	return notebookID, nil
}
