package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/project-planner/internal/transport/http/handlers"
)

type fakeLoginAttemptStore struct {
	count    int
	oldest   time.Time
	pruneErr error
	countErr error

	recorded int
	pruned   int
}

func (f *fakeLoginAttemptStore) RecordAttempt(context.Context, string, time.Time) error {
	f.recorded++
	return nil
}

func (f *fakeLoginAttemptStore) PruneBefore(context.Context, string, time.Time) error {
	f.pruned++
	return f.pruneErr
}

func (f *fakeLoginAttemptStore) AttemptsSince(context.Context, string, time.Time) (int, time.Time, error) {
	return f.count, f.oldest, f.countErr
}

func newThrottledRouter(t *testing.T, store *fakeLoginAttemptStore, now time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	throttle := NewLoginThrottle(store, 5, time.Minute, zaptest.NewLogger(t)).
		WithClock(func() time.Time { return now })

	router := gin.New()
	router.POST("/login", throttle.Handler(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func postLogin(router *gin.Engine) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.0.2.1:4242"
	router.ServeHTTP(rr, req)
	return rr
}

func TestLoginThrottleAllowsBelowLimit(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeLoginAttemptStore{count: 2, oldest: now.Add(-30 * time.Second)}
	router := newThrottledRouter(t, store, now)

	rr := postLogin(router)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.pruned != 1 {
		t.Fatalf("expected one prune call, got %d", store.pruned)
	}
	if store.recorded != 1 {
		t.Fatalf("expected the attempt to be recorded once, got %d", store.recorded)
	}
}

func TestLoginThrottleBlocksAtLimit(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeLoginAttemptStore{count: 5, oldest: now.Add(-30 * time.Second)}
	router := newThrottledRouter(t, store, now)

	rr := postLogin(router)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if store.recorded != 0 {
		t.Fatalf("blocked attempt must not be recorded, got %d records", store.recorded)
	}

	// The oldest attempt leaves the window in 30 seconds.
	if got := rr.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After 30, got %q", got)
	}

	var resp handlers.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("expected an error body")
	}
}

func TestLoginThrottleFailsOpenOnStoreError(t *testing.T) {
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeLoginAttemptStore{pruneErr: errors.New("redis down")}
	router := newThrottledRouter(t, store, now)

	rr := postLogin(router)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when failing open, got %d", rr.Code)
	}
	if store.recorded != 0 {
		t.Fatalf("expected no record on store failure, got %d", store.recorded)
	}
}
