package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"tower-server/internal/domain"
	"tower-server/internal/engine"
	"tower-server/internal/network"
	"tower-server/internal/scene"
	"tower-server/pkg/api"
	"tower-server/pkg/dungeon"
	"tower-server/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) (*Server, *engine.Session) {
	t.Helper()
	cfg := engine.NewConfig()
	cfg.Seed = 11
	cfg.StartRegion = "gen:tower"

	world := scene.New(scene.DefaultOptions())
	c := engine.NewController(cfg, world, dungeon.NewRegionLoader("", cfg.Seed), nil,
		dungeon.DefaultDefinitions(), &domain.SessionState{ID: "srv", Seed: cfg.Seed})
	world.SetListener(c.HandleMessage)

	hub := network.NewBroadcaster()
	session := engine.NewSession(cfg, world, c, hub)
	require.NoError(t, session.Start())

	return New(session, hub, ":0"), session
}

func TestServer_Routes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/health", http.StatusOK, "ok"},
		{"/version", http.StatusOK, `"buildId"`},
		{"/debug/session", http.StatusOK, `"state":"IN_LEVEL"`},
		{"/debug/objects", http.StatusOK, `"isPlayer":true`},
		{"/debug/replay", http.StatusOK, `"seed":11`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     api.ClientCommand
		wantErr bool
	}{
		{"move", api.ClientCommand{Action: "MOVE", Payload: json.RawMessage(`{"dir":"up"}`)}, false},
		{"checkpoint", api.ClientCommand{Action: "checkpoint"}, false},
		{"unknown", api.ClientCommand{Action: "FLY"}, true},
		{"missing payload", api.ClientCommand{Action: "SHOOT"}, true},
		{"bad dir", api.ClientCommand{Action: "MOVE", Payload: json.RawMessage(`{"dir":"north"}`)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCommand(tt.cmd)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServer_WebSocket(t *testing.T) {
	srv, session := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// Первым приходит последний снимок сессии
	var first api.ServerResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, api.TypeSnapshot, first.Type)
	assert.Equal(t, "srv", first.Session)

	// Ошибка валидации возвращается только этому клиенту
	require.NoError(t, conn.WriteJSON(api.ClientCommand{Action: "FLY"}))
	var errMsg api.ServerResponse
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, api.TypeError, errMsg.Type)

	// INIT проходит через очередь сессии и возвращается снимком с приветствием
	require.NoError(t, conn.WriteJSON(api.ClientCommand{Action: "INIT"}))

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			session.Step(ctx, 1.0/30)
			if session.Frame() > 0 && hasWelcome(session.Snapshot()) {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
	<-done

	for {
		var msg api.ServerResponse
		require.NoError(t, conn.ReadJSON(&msg))
		if hasWelcome(&msg) {
			break
		}
	}
}

func hasWelcome(snap *api.ServerResponse) bool {
	if snap == nil {
		return false
	}
	for _, l := range snap.Logs {
		if strings.Contains(l.Text, "Добро пожаловать") {
			return true
		}
	}
	return false
}
