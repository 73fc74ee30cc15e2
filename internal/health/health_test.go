package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, p Status) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	Router(p).ServeHTTP(w, httptest.NewRequest(http.MethodGet, Path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthConnected(t *testing.T) {
	code, body := get(t, Status{
		Connected:   func() bool { return true },
		ActiveGames: func() int { return 2 },
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["discord_connected"])
	assert.Equal(t, float64(2), body["active_games"])
	assert.Contains(t, body, "version")
}

func TestHealthDisconnected(t *testing.T) {
	code, body := get(t, Status{Connected: func() bool { return false }})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, float64(0), body["active_games"])
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", Router(Status{})) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
