package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"actionitems/pkg/identity"
	"actionitems/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "router-secret"

func TestSetup_RoutesAreAuthenticated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := Setup(db, socket.NewHub(), Options{JWTSecret: secret, AllowedOrigin: "*"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/action-items?notebookId=nb-1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := identity.Issue(secret, "user-1", time.Hour)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM action_items").
		WithArgs("nb-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "notebook_id", "user_id", "action_text", "is_completed", "created_at", "updated_at"}))

	req := httptest.NewRequest(http.MethodGet, "/api/action-items?notebookId=nb-1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetup_Healthz(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := httptest.NewRecorder()
	Setup(db, socket.NewHub(), Options{JWTSecret: secret}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
