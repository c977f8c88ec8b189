package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *fakeClock) {
	t.Helper()
	svc, clock := newTestService(t)
	return NewServer(svc, nil, "/api", nil).Routes(), clock
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer anon")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestHandler_CreateRoom(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
		validate       func(t *testing.T, resp map[string]any)
	}{
		{
			name:           "create room successfully",
			body:           map[string]any{"roomCode": "abcdef", "hostUsername": "alice"},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, true, resp["success"])
				assert.Equal(t, "ABCDEF", resp["roomCode"])
			},
		},
		{
			name:           "missing host",
			body:           map[string]any{"roomCode": "ABCDEF"},
			expectedStatus: http.StatusBadRequest,
			validate: func(t *testing.T, resp map[string]any) {
				assert.Equal(t, "Missing roomCode or hostUsername", resp["error"])
			},
		},
		{
			name:           "invalid json",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			validate: func(t *testing.T, resp map[string]any) {
				assert.NotEmpty(t, resp["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t)
			code, resp := do(t, h, http.MethodPost, "/api/create-room", tt.body)
			assert.Equal(t, tt.expectedStatus, code)
			tt.validate(t, resp)
		})
	}
}

func TestHandler_JoinRoom(t *testing.T) {
	h, _ := newTestRouter(t)

	code, resp := do(t, h, http.MethodPost, "/api/join-room", map[string]any{"roomCode": "ABCDEF", "username": "bob"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Room not found", resp["error"])

	code, _ = do(t, h, http.MethodPost, "/api/join-room", map[string]any{"roomCode": "ABCDEF"})
	assert.Equal(t, http.StatusBadRequest, code)

	do(t, h, http.MethodPost, "/api/create-room", map[string]any{"roomCode": "ABCDEF", "hostUsername": "alice"})
	code, resp = do(t, h, http.MethodPost, "/api/join-room", map[string]any{"roomCode": "abcdef", "username": "bob"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])
}

func TestHandler_PlayerLifecycle(t *testing.T) {
	h, clock := newTestRouter(t)

	code, _ := do(t, h, http.MethodGet, "/api/get-players", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, h, http.MethodGet, "/api/get-players?roomCode=ABCDEF", nil)
	assert.Equal(t, http.StatusNotFound, code)

	do(t, h, http.MethodPost, "/api/create-room", map[string]any{"roomCode": "ABCDEF", "hostUsername": "alice"})
	code, resp := do(t, h, http.MethodGet, "/api/get-players?roomCode=ABCDEF", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{}, resp["players"])

	update := map[string]any{
		"roomCode": "ABCDEF",
		"playerId": "p1",
		"playerData": map[string]any{
			"username": "alice",
			"position": map[string]any{"x": 1, "y": 2, "z": 3},
			"rotation": map[string]any{"x": 0, "y": 0, "z": 0},
			"health":   100,
			"mode":     "flying",
		},
	}
	code, resp = do(t, h, http.MethodPost, "/api/update-player", update)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])

	code, _ = do(t, h, http.MethodPost, "/api/update-player", map[string]any{"roomCode": "ABCDEF", "playerId": "p1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = do(t, h, http.MethodGet, "/api/get-players?roomCode=abcdef", nil)
	require.Equal(t, http.StatusOK, code)
	players := resp["players"].(map[string]any)
	require.Contains(t, players, "p1")
	p1 := players["p1"].(map[string]any)
	assert.Equal(t, "flying", p1["mode"])
	assert.Equal(t, float64(clock.Now().UnixMilli()), p1["lastUpdate"])

	for i := 0; i < 2; i++ {
		code, resp = do(t, h, http.MethodPost, "/api/leave-room", map[string]any{"roomCode": "ABCDEF", "playerId": "p1"})
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, resp["success"])
	}
	code, _ = do(t, h, http.MethodPost, "/api/leave-room", map[string]any{"roomCode": "ABCDEF"})
	assert.Equal(t, http.StatusBadRequest, code)

}

func TestHandler_StaleEviction(t *testing.T) {
	h, clock := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/create-room", map[string]any{"roomCode": "ABCDEF", "hostUsername": "alice"})
	do(t, h, http.MethodPost, "/api/update-player", map[string]any{
		"roomCode": "ABCDEF", "playerId": "p1",
		"playerData": map[string]any{"username": "alice", "mode": "ground", "health": 100},
	})

	clock.Advance(6 * time.Second)
	code, resp := do(t, h, http.MethodGet, "/api/get-players?roomCode=ABCDEF", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp["players"])
}

func TestHandler_HealthCORSAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t)

	code, resp := do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])

	req := httptest.NewRequest(http.MethodOptions, "/api/update-player", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	do(t, h, http.MethodPost, "/api/join-room", map[string]any{"roomCode": "NOPE00", "username": "x"})
	code, resp = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, code)
	metrics := resp["metrics"].(map[string]any)
	assert.Equal(t, float64(1), metrics["failures"])

	code, resp = do(t, h, http.MethodGet, "/admin/config", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5000), resp["stale_after_ms"])
}
