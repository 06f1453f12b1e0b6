package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/syncboard/syncboard/internal/config"
	"github.com/syncboard/syncboard/internal/models"
	"github.com/syncboard/syncboard/internal/tokens"
	"github.com/syncboard/syncboard/pkg/middleware"
)

// capturingNotifier records published events and signals on each publish
type capturingNotifier struct {
	mu      sync.Mutex
	channel string
	event   string
	payload interface{}
	err     error
	done    chan struct{}
}

func newCapturingNotifier() *capturingNotifier {
	return &capturingNotifier{done: make(chan struct{}, 8)}
}

func (n *capturingNotifier) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	n.mu.Lock()
	n.channel = channel
	n.event = event
	n.payload = payload
	err := n.err
	n.mu.Unlock()
	n.done <- struct{}{}
	return err
}

func (n *capturingNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
	}
}

func newRealtimeRouter(t *testing.T, n *capturingNotifier) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.JWT.Secret = "realtime-test-secret-32-bytes-xxxxx"

	u := &models.User{ID: "user-1", Name: "Alice", Email: "alice@example.com", AvatarColor: "#4ECDC4"}
	access, err := tokens.GenerateAccessToken(cfg, u, time.Minute)
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	NewRealtimeHandler(n).Register(api)
	return r, access
}

func postRealtime(r *gin.Engine, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/realtime", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRealtimeBroadcastStampsIdentity(t *testing.T) {
	n := newCapturingNotifier()
	r, access := newRealtimeRouter(t, n)

	w := postRealtime(r, `{"channelName":"document-42","eventName":"cursor-moved","data":{"x":10,"y":20}}`, access)
	require.Equal(t, http.StatusOK, w.Code)
	n.wait(t)

	require.Equal(t, "document-42", n.channel)
	require.Equal(t, "cursor-moved", n.event)
	payload := n.payload.(map[string]interface{})
	require.Equal(t, float64(10), payload["x"])
	require.Equal(t, "user-1", payload["userId"])
	require.Equal(t, "Alice", payload["userName"])
	require.Equal(t, "#4ECDC4", payload["avatarColor"])
}

func TestRealtimeBroadcastValidation(t *testing.T) {
	n := newCapturingNotifier()
	r, access := newRealtimeRouter(t, n)

	// missing fields
	w := postRealtime(r, `{"channelName":"document-42"}`, access)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unauthenticated
	w = postRealtime(r, `{"channelName":"c","eventName":"e","data":{}}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRealtimeBroadcastSucceedsWhenPublishFails(t *testing.T) {
	n := newCapturingNotifier()
	n.err = errors.New("backend down")
	r, access := newRealtimeRouter(t, n)

	w := postRealtime(r, `{"channelName":"c","eventName":"e","data":{"k":"v"}}`, access)
	require.Equal(t, http.StatusOK, w.Code)
	n.wait(t)
	require.Equal(t, true, decode(t, w)["success"])
}
