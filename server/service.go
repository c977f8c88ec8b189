package server

import (
	"context"
	"errors"
	"time"

	"jarzd/game"
)

// DefaultStaleAfter 成员存活窗口
const DefaultStaleAfter = 5 * time.Second

// Service 房间存储的业务操作。每个操作都是对单个房间的读-改-写，
// 并发请求之间后写者胜出
type Service struct {
	store      Store
	staleAfter time.Duration
	now        func() time.Time
	metrics    *Metrics
}

// Option 构造选项
type Option func(*Service)

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStaleAfter 替换存活窗口
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) { s.staleAfter = d }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
		metrics:    &Metrics{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Metrics 运行计数
func (s *Service) Metrics() *Metrics { return s.metrics }

func (s *Service) nowMs() int64 { return s.now().UnixMilli() }

// load 读取房间；不存在时返回 ErrRoomNotFound
func (s *Service) load(ctx context.Context, code, failMsg string) (*Room, error) {
	room, err := s.store.Load(ctx, code)
	if errors.Is(err, errNoRoom) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, internal(failMsg, err)
	}
	return room, nil
}

// CreateRoom 无条件覆盖同码房间，没有唯一性检查
func (s *Service) CreateRoom(ctx context.Context, code, host string) (*Room, error) {
	code = NormalizeCode(code)
	if code == "" || host == "" {
		return nil, validation("Missing roomCode or hostUsername")
	}
	room := NewRoom(code, host, s.nowMs())
	if err := s.store.Save(ctx, room); err != nil {
		return nil, internal("Failed to create room", err)
	}
	s.metrics.IncCreated()
	Log.Infof("room created: %s by %s", code, host)
	return room, nil
}

// JoinRoom 只确认房间存在，不修改状态；成员身份由第一次 UpdatePlayer 建立
func (s *Service) JoinRoom(ctx context.Context, code, username string) error {
	code = NormalizeCode(code)
	if code == "" || username == "" {
		return validation("Missing roomCode or username")
	}
	if _, err := s.load(ctx, code, "Failed to join room"); err != nil {
		return err
	}
	s.metrics.IncJoins()
	Log.Infof("player %s joined room %s", username, code)
	return nil
}

// UpdatePlayer 写入玩家快照，lastUpdate 取服务端时间
func (s *Service) UpdatePlayer(ctx context.Context, code string, id PlayerID, snap *game.PlayerSnapshot) error {
	code = NormalizeCode(code)
	if code == "" || id == "" || snap == nil {
		return validation("Missing required fields")
	}
	room, err := s.load(ctx, code, "Failed to update player")
	if err != nil {
		return err
	}
	room.Upsert(id, *snap, s.nowMs())
	if err := s.store.Save(ctx, room); err != nil {
		return internal("Failed to update player", err)
	}
	s.metrics.IncUpdates()
	return nil
}

// GetPlayers 返回房间内玩家。读取时顺带移除过期成员并写回存储，
// 没人读取的房间会一直保留过期成员
func (s *Service) GetPlayers(ctx context.Context, code string) (map[PlayerID]game.PlayerSnapshot, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, validation("Missing roomCode")
	}
	room, err := s.load(ctx, code, "Failed to get players")
	if err != nil {
		return nil, err
	}
	evicted := room.Evict(s.nowMs(), s.staleAfter.Milliseconds())
	if err := s.store.Save(ctx, room); err != nil {
		return nil, internal("Failed to get players", err)
	}
	if len(evicted) > 0 {
		s.metrics.AddEvicted(len(evicted))
		Log.Debugf("room %s: evicted %d stale players %v", code, len(evicted), evicted)
	}
	s.metrics.IncReads()
	return room.Players, nil
}

// LeaveRoom 幂等：房间或玩家不存在都视为成功
func (s *Service) LeaveRoom(ctx context.Context, code string, id PlayerID) error {
	code = NormalizeCode(code)
	if code == "" || id == "" {
		return validation("Missing roomCode or playerId")
	}
	room, err := s.load(ctx, code, "Failed to leave room")
	if errors.Is(err, ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !room.Remove(id) {
		return nil
	}
	if err := s.store.Save(ctx, room); err != nil {
		return internal("Failed to leave room", err)
	}
	s.metrics.IncLeaves()
	Log.Infof("player %s left room %s", id, code)
	return nil
}
