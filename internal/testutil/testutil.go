// Package testutil provides testing utilities for integration tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// NewTestLogger creates a test logger that outputs to t.Log.
func NewTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// Response is a canned upstream answer.
type Response struct {
	Status int // 0 means 200
	Body   string
	Delay  time.Duration
}

// Request is what the fake upstream saw.
type Request struct {
	Path          string
	Authorization string
}

// FakeUpstream is an httptest server answering GETs from a path table.
// Unknown paths answer 404.
type FakeUpstream struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []Request
}

// NewFakeUpstream starts a fake upstream that is closed when the test ends.
func NewFakeUpstream(t *testing.T) *FakeUpstream {
	t.Helper()

	f := &FakeUpstream{responses: make(map[string]Response)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Handle sets the response for path.
func (f *FakeUpstream) Handle(path string, resp Response) *FakeUpstream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = resp
	return f
}

// JSON answers path with 200 and body.
func (f *FakeUpstream) JSON(path, body string) *FakeUpstream {
	return f.Handle(path, Response{Body: body})
}

// Requests returns the requests received so far.
func (f *FakeUpstream) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func (f *FakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, Request{Path: r.URL.Path, Authorization: r.Header.Get("Authorization")})
	resp, ok := f.responses[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}
