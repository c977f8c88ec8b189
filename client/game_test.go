package client

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarzd/game"
	"jarzd/server"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	svc := server.NewService(server.NewMemoryStore("room:"))
	srv := httptest.NewServer(server.NewServer(svc, nil, "/api", nil).Routes())
	t.Cleanup(srv.Close)
	return NewAPI(srv.URL+"/api", "anon", nil)
}

func TestNewRoomCode(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-Z]{6}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, re, NewRoomCode())
	}
}

func TestConnect(t *testing.T) {
	ctx := context.Background()
	api := newTestAPI(t)

	host, err := Connect(ctx, api, "alice", "", true)
	require.NoError(t, err)
	assert.Len(t, host.RoomCode, 6)
	assert.NotEmpty(t, host.PlayerID)
	assert.True(t, host.Host)

	guest, err := Connect(ctx, api, "bob", host.RoomCode, false)
	require.NoError(t, err)
	assert.Equal(t, host.RoomCode, guest.RoomCode)
	assert.NotEqual(t, host.PlayerID, guest.PlayerID)

	_, err = Connect(ctx, api, "carol", "nope00", false)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Room not found", apiErr.Message)
}

func TestAPI_RoundTrip(t *testing.T) {
	ctx := context.Background()
	api := newTestAPI(t)
	require.NoError(t, api.Health(ctx))

	code, err := api.CreateRoom(ctx, "abcdef", "alice")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF", code)

	players, err := api.GetPlayers(ctx, code)
	require.NoError(t, err)
	assert.Empty(t, players)

	require.NoError(t, api.UpdatePlayer(ctx, code, "p1", game.PlayerSnapshot{Username: "alice", Mode: game.ModeFlying, Health: 100}))
	players, err = api.GetPlayers(ctx, code)
	require.NoError(t, err)
	require.Contains(t, players, "p1")
	assert.NotZero(t, players["p1"].LastUpdate)

	require.NoError(t, api.LeaveRoom(ctx, code, "p1"))
	require.NoError(t, api.LeaveRoom(ctx, code, "p1"))
}

func TestGame_OfflineStillSimulates(t *testing.T) {
	g := NewGame(nil, nil, nil)
	f := g.Frame(game.Input{Fire: true})
	assert.Equal(t, game.ModeFlying, f.Mode)
	assert.True(t, f.Plane.Visible)
	assert.False(t, f.Character.Visible)
	assert.Len(t, f.Bullets, 1)
	assert.Empty(t, f.Remotes)

	f = g.Frame(game.Input{BailOut: true})
	assert.Equal(t, game.ModeParachuting, f.Mode)
	assert.True(t, f.Chute.Visible)
	assert.NoError(t, g.Leave(context.Background()))
}

func TestGame_TwoPlayersSeeEachOther(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api := newTestAPI(t)

	aliceSession, err := Connect(ctx, api, "alice", "", true)
	require.NoError(t, err)
	bobSession, err := Connect(ctx, api, "bob", aliceSession.RoomCode, false)
	require.NoError(t, err)

	fast := WithIntervals(5*time.Millisecond, 10*time.Millisecond)
	alice := NewGame(aliceSession, NewSynchronizer(api, aliceSession, fast), nil)
	bob := NewGame(bobSession, NewSynchronizer(api, bobSession, fast), nil)
	alice.sync.Start(ctx)
	bob.sync.Start(ctx)

	// bob 跳伞后只发布这一帧，推送循环会反复上报它
	bob.Frame(game.Input{BailOut: true})
	var seen Frame
	require.Eventually(t, func() bool {
		seen = alice.Frame(game.Input{})
		return len(seen.Remotes) == 1 && seen.Remotes[0].Mode == game.ModeParachuting
	}, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, "bob", seen.Remotes[0].Username)
	assert.True(t, seen.Remotes[0].ChuteVisible)

	// bob 离开后从 alice 的镜像中消失
	require.NoError(t, bob.Leave(ctx))
	require.Eventually(t, func() bool {
		return len(alice.Frame(game.Input{}).Remotes) == 0
	}, 3*time.Second, 5*time.Millisecond)
	require.NoError(t, alice.Leave(ctx))
}

type countingRenderer struct{ frames int }

func (r *countingRenderer) Render(Frame) { r.frames++ }

func TestGame_RunUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	g := NewGame(nil, nil, nil)
	r := &countingRenderer{}
	err := g.Run(ctx, &Autopilot{BailAfter: 2}, r, 100)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, r.frames)
	assert.NotEqual(t, game.ModeFlying, g.Pilot().Mode)
}

func TestGame_ChuteSwayFollowsWallClock(t *testing.T) {
	at := time.UnixMilli(1_700_000_123_456)
	g := NewGame(nil, nil, nil)
	g.now = func() time.Time { return at }

	f := g.Frame(game.Input{BailOut: true})
	require.Equal(t, game.ModeParachuting, f.Mode)

	ms := float64(at.UnixMilli())
	assert.InDelta(t, math.Sin(ms*0.002)*game.ChuteSwayAmp, f.Chute.Rotation.Z, 1e-9)
	assert.InDelta(t, math.Cos(ms*0.003)*game.ChuteSwayAmp, f.Chute.Rotation.X, 1e-9)
}
