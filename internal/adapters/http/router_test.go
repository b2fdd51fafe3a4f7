package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Duet/internal/app"
	"github.com/dkeye/Duet/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Mode = gin.TestMode
	cfg.StaticPath = filepath.Join(t.TempDir(), "nope")
	return cfg
}

func TestRouter_Health(t *testing.T) {
	req := require.New(t)
	orch := app.NewOrchestrator()
	r := SetupRouter(context.Background(), testConfig(t), orch)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	req.Equal(http.StatusOK, w.Code)
	var body map[string]any
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal("healthy", body["status"])
	req.Equal(float64(0), body["activeSessions"])
	req.Contains(body, "uptime")
	req.NotEmpty(w.Result().Cookies(), "client token cookie should be issued")
}

func TestRouter_RTCConfig(t *testing.T) {
	req := require.New(t)
	cfg := testConfig(t)
	cfg.ICEServers = append(cfg.ICEServers, config.ICEServer{
		URLs:       []string{"turn:turn.example.org:3478"},
		Username:   "duet",
		Credential: "secret",
	})
	r := SetupRouter(context.Background(), cfg, app.NewOrchestrator())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rtc-config", nil))

	req.Equal(http.StatusOK, w.Code)
	var body struct {
		ICEServers []map[string]any `json:"iceServers"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Len(body.ICEServers, 4)
	req.Equal([]any{"stun:stun.l.google.com:19302"}, body.ICEServers[0]["urls"])
	req.Equal("duet", body.ICEServers[3]["username"])
	req.Equal("secret", body.ICEServers[3]["credential"])
}

func TestRouter_Metrics(t *testing.T) {
	req := require.New(t)
	r := SetupRouter(context.Background(), testConfig(t), app.NewOrchestrator())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "duet_sessions_active")
}

func TestRouter_StatusWithoutStatic(t *testing.T) {
	req := require.New(t)
	r := SetupRouter(context.Background(), testConfig(t), app.NewOrchestrator())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	req.Equal(http.StatusOK, w.Code)
	var body map[string]any
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal("ok", body["status"])
	req.Equal(float64(0), body["activeSessions"])
	ts, _ := body["timestamp"].(string)
	_, err := time.Parse(time.RFC3339Nano, ts)
	req.NoError(err)
}

func TestRouter_StaticWhenPresent(t *testing.T) {
	req := require.New(t)
	cfg := testConfig(t)
	cfg.StaticPath = t.TempDir()
	req.NoError(os.WriteFile(filepath.Join(cfg.StaticPath, "index.html"), []byte("<h1>duet</h1>"), 0o600))
	r := SetupRouter(context.Background(), cfg, app.NewOrchestrator())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "duet")
}

func TestRouter_WebsocketSession(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orch := app.NewOrchestrator()
	srv := httptest.NewServer(SetupRouter(ctx, testConfig(t), orch))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws/signal", nil)
	req.NoError(err)
	defer ws.Close()

	req.NoError(ws.WriteJSON(map[string]any{"type": "create-session"}))
	req.NoError(ws.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var got map[string]any
	req.NoError(ws.ReadJSON(&got))
	req.Equal("session-created", got["type"])

	req.Equal(1, orch.ActiveSessions())
}
