package shows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/upstream"
)

func newTestClient(server *httptest.Server) *Client {
	return NewClient(config.ServiceConfig{BaseURL: server.URL, Timeout: 5}, zerolog.Nop())
}

func TestClient_Name(t *testing.T) {
	client := NewClient(config.ServiceConfig{}, zerolog.Nop())
	assert.Equal(t, "shows", client.Name())
	assert.False(t, client.IsConfigured())
}

func TestClient_GetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shows/1396", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"show_id": 1396, "name": "Breaking Bad"}`))
	}))
	defer server.Close()

	body, err := newTestClient(server).GetByID(context.Background(), "user-token", 1396)
	require.NoError(t, err)
	assert.JSONEq(t, `{"show_id": 1396, "name": "Breaking Bad"}`, string(body))
}

func TestClient_GetByID_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server).GetByID(context.Background(), "", 1)
	assert.ErrorIs(t, err, upstream.ErrNotFound)
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	require.NoError(t, newTestClient(server).Ping(context.Background()))
}
