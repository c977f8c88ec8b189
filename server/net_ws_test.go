package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_PushesPlayers(t *testing.T) {
	svc, _ := newTestService(t)
	feed := NewFeed(svc, 20*time.Millisecond)
	defer feed.Stop()
	srv := httptest.NewServer(NewServer(svc, feed, "/api", nil).Routes())
	defer srv.Close()

	ctx := context.Background()
	_, err := svc.CreateRoom(ctx, "ABCDEF", "alice")
	require.NoError(t, err)
	require.NoError(t, svc.UpdatePlayer(ctx, "ABCDEF", "p1", flying("alice")))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?roomCode=abcdef"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var body struct {
		Type     string                     `json:"type"`
		RoomCode string                     `json:"roomCode"`
		Players  map[string]json.RawMessage `json:"players"`
	}
	require.NoError(t, json.Unmarshal(msg, &body))
	assert.Equal(t, "players", body.Type)
	assert.Equal(t, "ABCDEF", body.RoomCode)
	assert.Contains(t, body.Players, "p1")

	assert.Eventually(t, func() bool {
		return svc.Metrics().Snapshot()["feed_clients"] == int64(1)
	}, time.Second, 10*time.Millisecond)
}

func TestFeed_RejectsUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t)
	feed := NewFeed(svc, 20*time.Millisecond)
	defer feed.Stop()
	srv := httptest.NewServer(NewServer(svc, feed, "/api", nil).Routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?roomCode=NOPE00"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	url = "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeed_LastWatcherStopsTicker(t *testing.T) {
	svc, _ := newTestService(t)
	feed := NewFeed(svc, 20*time.Millisecond)
	srv := httptest.NewServer(NewServer(svc, feed, "/api", nil).Routes())
	defer srv.Close()

	_, err := svc.CreateRoom(context.Background(), "ABCDEF", "alice")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?roomCode=ABCDEF"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		feed.mu.Lock()
		defer feed.mu.Unlock()
		return len(feed.rooms) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

// gatedStore 在 armed 后让下一次 Load 停住，直到 release 关闭
type gatedStore struct {
	*MemoryStore
	armed   atomic.Bool
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Load(ctx context.Context, code string) (*Room, error) {
	if g.armed.Load() {
		g.once.Do(func() { close(g.entered) })
		<-g.release
	}
	return g.MemoryStore.Load(ctx, code)
}

func TestFeed_StopDuringBroadcast(t *testing.T) {
	store := &gatedStore{
		MemoryStore: NewMemoryStore("room:"),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc := NewService(store)
	feed := NewFeed(svc, 20*time.Millisecond)
	srv := httptest.NewServer(NewServer(svc, feed, "/api", nil).Routes())
	defer srv.Close()

	_, err := svc.CreateRoom(context.Background(), "ABCDEF", "alice")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?roomCode=ABCDEF"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	// 推送卡在读取房间时关闭 feed，之后推送不能再写入已关闭的队列
	store.armed.Store(true)
	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast never reached the store")
	}
	feed.Stop()
	sent := svc.Metrics().Snapshot()["feed_broadcasts"]
	store.armed.Store(false)
	close(store.release)

	assert.Never(t, func() bool {
		return svc.Metrics().Snapshot()["feed_broadcasts"] != sent
	}, 200*time.Millisecond, 10*time.Millisecond)
	assert.EqualValues(t, 0, svc.Metrics().Snapshot()["feed_clients"])

	// 停止后不再接受新的观察者
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	feed.mu.Lock()
	defer feed.mu.Unlock()
	assert.Empty(t, feed.rooms)
}
