package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"actionitems/internal/actionitem/model"
	"actionitems/pkg/identity"
	"actionitems/router"
	"actionitems/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret   = "client-secret"
	itemUUID = "0b6c5d9e-7a41-4f0e-8d3b-2c9a1e7f6b20"
)

var itemColumns = []string{"id", "notebook_id", "user_id", "action_text", "is_completed", "created_at", "updated_at"}

type env struct {
	server *httptest.Server
	mock   sqlmock.Sqlmock
	hub    *socket.Hub
	token  string
}

func newEnv(t *testing.T) *env {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hub := socket.NewHub()
	go hub.Run()

	server := httptest.NewServer(router.Setup(db, hub, router.Options{JWTSecret: secret, AllowedOrigin: "*"}))
	t.Cleanup(server.Close)

	token, err := identity.Issue(secret, "user-1", time.Hour)
	require.NoError(t, err)
	return &env{server: server, mock: mock, hub: hub, token: token}
}

func TestClient_ListAndCreate(t *testing.T) {
	e := newEnv(t)
	c := New(e.server.URL, e.token)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	e.mock.ExpectQuery("SELECT (.+) FROM action_items").
		WithArgs("nb-1", "user-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(itemUUID, "nb-1", "user-1", "Call vendor", false, now, now))

	items, err := c.List(context.Background(), "nb-1", "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Call vendor", items[0].ActionText)

	e.mock.ExpectQuery("INSERT INTO action_items").
		WithArgs("nb-1", "user-1", "Send notes").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(itemUUID, "nb-1", "user-1", "Send notes", false, now, now))

	it, err := c.Create(context.Background(), model.NewActionItem{NotebookID: "nb-1", UserID: "user-1", ActionText: "Send notes"})
	require.NoError(t, err)
	assert.Equal(t, itemUUID, it.ID)
	assert.False(t, it.IsCompleted)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestClient_UpdateSendsTimestampAndHandlesNoMatch(t *testing.T) {
	e := newEnv(t)
	c := New(e.server.URL, e.token)
	stamp := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

	e.mock.ExpectQuery("UPDATE action_items SET is_completed = \\$1, updated_at = \\$2").
		WithArgs(true, stamp, itemUUID, "user-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(itemUUID, "nb-1", "user-1", "x", true, stamp, stamp))

	it, err := c.Update(context.Background(), itemUUID, "user-1", model.Patch{IsCompleted: model.Completed(true), UpdatedAt: stamp})
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.True(t, it.IsCompleted)

	e.mock.ExpectQuery("UPDATE action_items SET").WillReturnRows(sqlmock.NewRows(itemColumns))

	it, err = c.Update(context.Background(), itemUUID, "user-1", model.Patch{IsCompleted: model.Completed(false), UpdatedAt: stamp})
	assert.NoError(t, err)
	assert.Nil(t, it)
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestClient_Delete(t *testing.T) {
	e := newEnv(t)
	c := New(e.server.URL, e.token)

	e.mock.ExpectQuery("DELETE FROM action_items").
		WithArgs(itemUUID, "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"notebook_id"}).AddRow("nb-1"))

	require.NoError(t, c.Delete(context.Background(), itemUUID, "user-1"))
	assert.NoError(t, e.mock.ExpectationsWereMet())
}

func TestClient_ErrorsCarryStatus(t *testing.T) {
	e := newEnv(t)

	_, err := New(e.server.URL, "not-a-token").List(context.Background(), "nb-1", "user-1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = New(e.server.URL, e.token).Create(context.Background(), model.NewActionItem{NotebookID: "nb-1", ActionText: "   "})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClient_SendsSessionHeader(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(SessionHeader)
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	c := New(server.URL, "tok")
	items, err := c.List(context.Background(), "nb-1", "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotEmpty(t, c.SessionID)
	assert.Equal(t, c.SessionID, got)
}

func TestClient_WatchReceivesOtherSessionsChanges(t *testing.T) {
	e := newEnv(t)
	watcher := New(e.server.URL, e.token)
	other := New(e.server.URL, e.token)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := watcher.Watch(ctx, "nb-1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return e.hub.RoomSize("nb-1") == 1 }, time.Second, 10*time.Millisecond)

	now := time.Now().UTC()
	e.mock.ExpectQuery("INSERT INTO action_items").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow("own-item", "nb-1", "user-1", "mine", false, now, now))
	e.mock.ExpectQuery("INSERT INTO action_items").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(itemUUID, "nb-1", "user-1", "theirs", false, now, now))

	_, err = watcher.Create(ctx, model.NewActionItem{NotebookID: "nb-1", ActionText: "mine"})
	require.NoError(t, err)
	_, err = other.Create(ctx, model.NewActionItem{NotebookID: "nb-1", ActionText: "theirs"})
	require.NoError(t, err)

	select {
	case ch := <-changes:
		assert.Equal(t, Change{NotebookID: "nb-1", Action: socket.ActionCreated, ID: itemUUID}, ch)
	case <-time.After(2 * time.Second):
		t.Fatal("no change received")
	}

	cancel()
	for range changes {
	}
}
