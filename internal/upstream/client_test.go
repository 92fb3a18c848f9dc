package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Config{Name: "test", BaseURL: url + "/", Timeout: 5 * time.Second}, zerolog.Nop())
}

func TestClient_IsConfigured(t *testing.T) {
	assert.True(t, NewClient(Config{BaseURL: "http://x"}, zerolog.Nop()).IsConfigured())
	assert.False(t, NewClient(Config{BaseURL: "  "}, zerolog.Nop()).IsConfigured())
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movies/603", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"id": 603}`))
	}))
	defer server.Close()

	var out struct {
		ID int `json:"id"`
	}
	err := newTestClient(server.URL).GetJSON(context.Background(), "/movies/603", "secret", &out)
	require.NoError(t, err)
	assert.Equal(t, 603, out.ID)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Get(context.Background(), "health", "")
	require.NoError(t, err)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrStatus},
		{http.StatusBadGateway, ErrStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message": "nope"}`))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Get(context.Background(), "/x", "")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var out map[string]any
	err := newTestClient(server.URL).GetJSON(context.Background(), "/x", "", &out)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClient_BaseURLMissing(t *testing.T) {
	client := NewClient(Config{Name: "movies"}, zerolog.Nop())
	_, err := client.Get(context.Background(), "/movies/1", "")
	assert.ErrorIs(t, err, ErrBaseURLMissing)
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Get(context.Background(), "/x", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.True(t, IsNetworkError(err))
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{Name: "slow", BaseURL: server.URL, Timeout: 20 * time.Millisecond}, zerolog.Nop())
	_, err := client.Get(context.Background(), "/x", "")
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.True(t, IsNetworkError(err))
}

func TestIsNetworkError(t *testing.T) {
	assert.False(t, IsNetworkError(nil))
	assert.False(t, IsNetworkError(errors.New("bad request")))
	assert.True(t, IsNetworkError(context.DeadlineExceeded))
	assert.True(t, IsNetworkError(errors.New("dial tcp 127.0.0.1:1: connect: connection refused")))
}
