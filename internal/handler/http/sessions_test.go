package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/middleware"
)

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[SessionResponse](t, body.Data)
	assert.NotEmpty(t, created.SessionID)
	assert.Equal(t, created.SessionID, rec.Header().Get(middleware.SessionIDHeader))
	assert.Empty(t, created.Cart.Lines)
	assert.Empty(t, created.Wishlist.ProductIDs)

	rec, _ = env.do(t, http.MethodGet, "/api/v1/cart", created.SessionID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEndSession(t *testing.T) {
	env := newTestEnv(t)
	sid := env.newSession(t)
	addItem(t, env, sid, "dc-002", "S", "Sand")

	rec, _ := env.do(t, http.MethodDelete, "/api/v1/sessions", sid, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/v1/cart", sid, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/sessions", sid, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndSession_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.do(t, http.MethodDelete, "/api/v1/sessions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
