package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"actionitems/internal/actionitem/model"
	"actionitems/internal/actionitem/repository"
	"actionitems/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemColumns = []string{"id", "notebook_id", "user_id", "action_text", "is_completed", "created_at", "updated_at"}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newService(t *testing.T) (*ActionItemService, sqlmock.Sqlmock, *socket.Hub) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// The hub is not running: notifications stay queued on Broadcast where
	// the tests can inspect them.
	hub := socket.NewHub()
	svc := NewActionItemService(repository.NewActionItemRepository(db), hub)
	svc.Now = func() time.Time { return fixedNow }
	return svc, mock, hub
}

func nextNotification(t *testing.T, hub *socket.Hub) (socket.WSMessage, socket.ChangePayload) {
	select {
	case msg := <-hub.Broadcast:
		var change socket.ChangePayload
		require.NoError(t, json.Unmarshal(msg.Payload, &change))
		return msg, change
	default:
		t.Fatal("expected a queued notification")
		return socket.WSMessage{}, socket.ChangePayload{}
	}
}

func assertNoNotification(t *testing.T, hub *socket.Hub) {
	select {
	case msg := <-hub.Broadcast:
		t.Fatalf("unexpected notification %+v", msg)
	default:
	}
}

func TestCreate_TrimsTextAndNotifies(t *testing.T) {
	svc, mock, hub := newService(t)
	mock.ExpectQuery("INSERT INTO action_items").
		WithArgs("nb-1", "user-1", "Call the bank").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow("item-1", "nb-1", "user-1", "Call the bank", false, fixedNow, fixedNow))

	ctx := WithSessionID(context.Background(), "sess-a")
	it, err := svc.Create(ctx, model.NewActionItem{NotebookID: "nb-1", UserID: "user-1", ActionText: "  Call the bank \n"})
	require.NoError(t, err)
	assert.Equal(t, "Call the bank", it.ActionText)

	msg, change := nextNotification(t, hub)
	assert.Equal(t, socket.ChangedType, msg.Type)
	assert.Equal(t, "nb-1", msg.NotebookID)
	assert.Equal(t, "user-1", msg.UserID)
	assert.Equal(t, "sess-a", msg.SessionID)
	assert.Equal(t, socket.ActionCreated, change.Action)
	assert.Equal(t, "item-1", change.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RejectsWhitespaceWithoutTouchingStore(t *testing.T) {
	svc, mock, hub := newService(t)

	for _, text := range []string{"", " ", "\t\n  "} {
		_, err := svc.Create(context.Background(), model.NewActionItem{NotebookID: "nb-1", UserID: "user-1", ActionText: text})
		assert.ErrorIs(t, err, ErrEmptyText)
	}
	assertNoNotification(t, hub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RequiresScope(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Create(context.Background(), model.NewActionItem{UserID: "user-1", ActionText: "x"})
	assert.ErrorIs(t, err, ErrMissingScope)
	_, err = svc.Create(context.Background(), model.NewActionItem{NotebookID: "nb-1", ActionText: "x"})
	assert.ErrorIs(t, err, ErrMissingScope)
}

func TestList_RequiresScope(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.List(context.Background(), "nb-1", "")
	assert.ErrorIs(t, err, ErrMissingScope)
}

func TestUpdate_StampsTimeWhenMissing(t *testing.T) {
	svc, mock, hub := newService(t)
	mock.ExpectQuery("UPDATE action_items SET is_completed = \\$1, updated_at = \\$2 WHERE id = \\$3 AND user_id = \\$4").
		WithArgs(true, fixedNow, "item-1", "user-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow("item-1", "nb-1", "user-1", "Text", true, fixedNow, fixedNow))

	it, err := svc.Update(context.Background(), "item-1", "user-1", model.Patch{IsCompleted: model.Completed(true)})
	require.NoError(t, err)
	require.NotNil(t, it)

	_, change := nextNotification(t, hub)
	assert.Equal(t, socket.ActionUpdated, change.Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_KeepsClientTimestamp(t *testing.T) {
	svc, mock, _ := newService(t)
	client := fixedNow.Add(-time.Minute)
	mock.ExpectQuery("UPDATE action_items SET action_text = \\$1, updated_at = \\$2").
		WithArgs("Trimmed", client, "item-1", "user-1").
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow("item-1", "nb-1", "user-1", "Trimmed", false, fixedNow, client))

	_, err := svc.Update(context.Background(), "item-1", "user-1", model.Patch{ActionText: model.Text(" Trimmed "), UpdatedAt: client})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotOwnedIsSilent(t *testing.T) {
	svc, mock, hub := newService(t)
	mock.ExpectQuery("UPDATE action_items SET").
		WillReturnRows(sqlmock.NewRows(itemColumns))

	it, err := svc.Update(context.Background(), "item-1", "intruder", model.Patch{IsCompleted: model.Completed(true)})
	assert.NoError(t, err)
	assert.Nil(t, it)
	assertNoNotification(t, hub)
}

func TestUpdate_RejectsBlankText(t *testing.T) {
	svc, mock, _ := newService(t)

	_, err := svc.Update(context.Background(), "item-1", "user-1", model.Patch{ActionText: model.Text("   ")})
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotifiesNotebookRoom(t *testing.T) {
	svc, mock, hub := newService(t)
	mock.ExpectQuery("DELETE FROM action_items").
		WithArgs("item-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"notebook_id"}).AddRow("nb-7"))

	require.NoError(t, svc.Delete(context.Background(), "item-1", "user-1"))

	msg, change := nextNotification(t, hub)
	assert.Equal(t, "nb-7", msg.NotebookID)
	assert.Equal(t, socket.ActionDeleted, change.Action)
	assert.Equal(t, "item-1", change.ID)
}

func TestDelete_NotOwnedIsSilent(t *testing.T) {
	svc, mock, hub := newService(t)
	mock.ExpectQuery("DELETE FROM action_items").
		WillReturnRows(sqlmock.NewRows([]string{"notebook_id"}))

	assert.NoError(t, svc.Delete(context.Background(), "item-1", "intruder"))
	assertNoNotification(t, hub)
}
