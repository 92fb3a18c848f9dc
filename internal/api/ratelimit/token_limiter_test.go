package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(now *time.Time) *TokenLimiter {
	l := NewTokenLimiter()
	l.maxFailedAttempts = 3
	l.now = func() time.Time { return *now }
	return l
}

func TestTokenLimiter_LocksAfterFailures(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(&now)

	l.RecordFailure("1.2.3.4")
	l.RecordFailure("1.2.3.4")
	assert.False(t, l.IsLocked("1.2.3.4"))

	l.RecordFailure("1.2.3.4")
	assert.True(t, l.IsLocked("1.2.3.4"))
	assert.False(t, l.IsLocked("5.6.7.8"))

	now = now.Add(DefaultLockoutDuration + time.Second)
	assert.False(t, l.IsLocked("1.2.3.4"))
}

func TestTokenLimiter_WindowResets(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(&now)

	l.RecordFailure("ip")
	l.RecordFailure("ip")
	now = now.Add(DefaultFailureWindow + time.Second)
	l.RecordFailure("ip")

	assert.False(t, l.IsLocked("ip"))
}

func TestTokenLimiter_SuccessAndCleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(&now)

	l.RecordFailure("a")
	l.RecordFailure("b")
	l.RecordSuccess("a")
	assert.Equal(t, 1, l.Len())

	now = now.Add(2 * DefaultFailureWindow)
	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, 0, l.Len())
}

func TestTokenLimiter_Middleware(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(&now)
	for i := 0; i < 3; i++ {
		l.RecordFailure("192.0.2.1")
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	c := e.NewContext(req, httptest.NewRecorder())

	err := l.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
}
