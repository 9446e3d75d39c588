package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"actionitems/pkg/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "mw-secret"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(userID))
	})
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	tok, err := identity.Issue(secret, "user-1", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/action-items", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	AuthMiddleware(secret)(echoUser()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	tok, err := identity.Issue(secret, "user-2", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ws?notebookId=nb&token="+tok, nil)
	rec := httptest.NewRecorder()
	AuthMiddleware(secret)(echoUser()).ServeHTTP(rec, req)

	assert.Equal(t, "user-2", rec.Body.String())
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	forged, err := identity.Issue("not-the-secret", "user-1", time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"missing": "",
		"garbage": "Bearer abc.def.ghi",
		"forged":  "Bearer " + forged,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/action-items", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			AuthMiddleware(secret)(echoUser()).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/api/action-items", nil)
	rec := httptest.NewRecorder()
	CORSMiddleware("https://app.example")(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}
