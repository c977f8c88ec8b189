package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"jarzd/game"
)

// 默认推送/拉取间隔
const (
	DefaultPushInterval = 50 * time.Millisecond
	DefaultPullInterval = 100 * time.Millisecond
)

// RoomAPI 同步器依赖的房间服务操作
type RoomAPI interface {
	UpdatePlayer(ctx context.Context, code, playerID string, s game.PlayerSnapshot) error
	GetPlayers(ctx context.Context, code string) (map[string]game.PlayerSnapshot, error)
	LeaveRoom(ctx context.Context, code, playerID string) error
}

// Synchronizer 两个互相独立的轮询循环：定时推送本地快照、定时拉取全体快照。
// 推送只读取帧循环最近发布的快照；拉取结果经单槽通道交回帧循环，新结果覆盖未读的旧结果。
// 远端镜像（Roster）只在帧循环里通过 Sync 修改
type Synchronizer struct {
	api     RoomAPI
	session *Session
	push    time.Duration
	pull    time.Duration
	log     *zap.SugaredLogger

	latest atomic.Pointer[game.PlayerSnapshot]
	pulled chan map[string]game.PlayerSnapshot
	roster *Roster

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SyncOption 构造选项
type SyncOption func(*Synchronizer)

func WithIntervals(push, pull time.Duration) SyncOption {
	return func(s *Synchronizer) {
		s.push, s.pull = push, pull
	}
}

func WithLogger(l *zap.SugaredLogger) SyncOption {
	return func(s *Synchronizer) { s.log = l }
}

func NewSynchronizer(api RoomAPI, session *Session, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		api:     api,
		session: session,
		push:    DefaultPushInterval,
		pull:    DefaultPullInterval,
		log:     zap.NewNop().Sugar(),
		pulled:  make(chan map[string]game.PlayerSnapshot, 1),
		roster:  NewRoster(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Session 当前会话
func (s *Synchronizer) Session() *Session { return s.session }

// Roster 远端镜像
func (s *Synchronizer) Roster() *Roster { return s.roster }

// Start 启动推送与拉取循环，直到 Stop 或 ctx 结束
func (s *Synchronizer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(2)
	go s.loop(ctx, s.push, s.pushOnce)
	go s.loop(ctx, s.pull, s.pullOnce)
}

// Publish 帧循环每帧发布最新快照
func (s *Synchronizer) Publish(snap game.PlayerSnapshot) {
	s.latest.Store(&snap)
}

// Sync 在帧循环中调用：有新拉取结果时更新镜像，返回被移除的玩家
func (s *Synchronizer) Sync() (removed []string, ok bool) {
	select {
	case players := <-s.pulled:
		return s.roster.Reconcile(players, s.session.PlayerID), true
	default:
		return nil, false
	}
}

func (s *Synchronizer) loop(ctx context.Context, every time.Duration, fn func(context.Context)) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// pushOnce 失败只记日志：不重试、不排队，下一次推送会覆盖
func (s *Synchronizer) pushOnce(ctx context.Context) {
	snap := s.latest.Load()
	if snap == nil {
		return
	}
	if err := s.api.UpdatePlayer(ctx, s.session.RoomCode, s.session.PlayerID, *snap); err != nil && ctx.Err() == nil {
		s.log.Warnw("error updating player", "room", s.session.RoomCode, "error", err)
	}
}

func (s *Synchronizer) pullOnce(ctx context.Context) {
	players, err := s.api.GetPlayers(ctx, s.session.RoomCode)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warnw("error fetching players", "room", s.session.RoomCode, "error", err)
		}
		return
	}
	// 单槽：丢弃未读的旧结果
	select {
	case <-s.pulled:
	default:
	}
	select {
	case s.pulled <- players:
	default:
	}
}

// Stop 停止两个循环并等待退出
func (s *Synchronizer) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
}

// Leave 停止同步、通知服务端离开（尽力而为）并释放全部镜像
func (s *Synchronizer) Leave(ctx context.Context) error {
	s.Stop()
	err := s.api.LeaveRoom(ctx, s.session.RoomCode, s.session.PlayerID)
	if err != nil {
		s.log.Warnw("error leaving room", "room", s.session.RoomCode, "error", err)
	}
	s.roster.Clear()
	return err
}
