package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConn 负责发送（写）数据到观察者的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 16),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		// 观察者跟不上时丢弃，下一次推送会带上最新状态
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS；队列关闭后发送关闭帧
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

// readPump 观察者只读不写；读到错误（含对端关闭）即退出
func (c *ClientConn) readPump(onClose func()) {
	defer onClose()
	c.ws.SetReadLimit(1 << 10)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 与 HTTP 接口一致：允许所有来源
		return true
	},
}

// Feed 按房间向 WebSocket 观察者定时推送玩家列表
type Feed struct {
	svc      *Service
	interval time.Duration

	mu      sync.Mutex
	rooms   map[string]*feedRoom
	stopped bool
}

// feedRoom 单个房间的观察者集合与推送循环
type feedRoom struct {
	code    string
	clients map[*ClientConn]struct{}
	stop    chan struct{}
}

func NewFeed(svc *Service, interval time.Duration) *Feed {
	return &Feed{
		svc:      svc,
		interval: interval,
		rooms:    make(map[string]*feedRoom),
	}
}

// ServeWS WebSocket 接入：?roomCode=ABCDEF
func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := NormalizeCode(r.URL.Query().Get("roomCode"))
	if code == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing roomCode"})
		return
	}
	if f.isStopped() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Server shutting down"})
		return
	}
	if _, err := f.svc.load(r.Context(), code, "Failed to watch room"); err != nil {
		e := classify(err, "Failed to watch room")
		writeJSON(w, e.Status(), errorBody{Error: e.Message})
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws)
	if !f.join(code, client) {
		_ = ws.Close()
		return
	}
	go client.writePump()
	go client.readPump(func() { f.leave(code, client) })
}

// join 登记观察者；Stop 之后拒绝
func (f *Feed) join(code string, c *ClientConn) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return false
	}
	fr, ok := f.rooms[code]
	if !ok {
		fr = &feedRoom{code: code, clients: make(map[*ClientConn]struct{}), stop: make(chan struct{})}
		f.rooms[code] = fr
		f.startTicker(fr)
	}
	fr.clients[c] = struct{}{}
	f.svc.metrics.AddFeedClients(1)
	Log.Infof("watcher joined room %s (%d watching)", code, len(fr.clients))
	return true
}

func (f *Feed) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// leave 移除观察者并关闭其发送队列；房间没有观察者后停止推送
func (f *Feed) leave(code string, c *ClientConn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fr, ok := f.rooms[code]
	if !ok {
		return
	}
	if _, ok := fr.clients[c]; !ok {
		return
	}
	delete(fr.clients, c)
	close(c.send)
	f.svc.metrics.AddFeedClients(-1)
	if len(fr.clients) == 0 {
		close(fr.stop)
		delete(f.rooms, code)
	}
}

// broadcast 读取一次玩家列表（会触发过期清理）并推送给该房间全部观察者
func (f *Feed) broadcast(fr *feedRoom) {
	ctx, cancel := context.WithTimeout(context.Background(), f.interval)
	defer cancel()

	var payload []byte
	players, err := f.svc.GetPlayers(ctx, fr.code)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		payload = mustJSON(map[string]string{"type": "error", "error": "Room not found"})
	case err != nil:
		Log.Warnf("feed %s: %v", fr.code, err)
		return
	default:
		payload = mustJSON(playersBody{Type: "players", RoomCode: fr.code, Players: players})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// 读取期间房间可能已被 leave/Stop 移除，其发送队列已关闭
	if f.rooms[fr.code] != fr {
		return
	}
	for c := range fr.clients {
		c.Enqueue(payload)
	}
	f.svc.metrics.IncFeedBroadcasts()
}

// Stop 关闭所有观察者连接，之后不再接受新的观察者
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	for code, fr := range f.rooms {
		close(fr.stop)
		for c := range fr.clients {
			delete(fr.clients, c)
			close(c.send)
			f.svc.metrics.AddFeedClients(-1)
		}
		delete(f.rooms, code)
	}
}
