package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"jarzd/game"
)

// Game 客户端帧循环：持有本地玩家、相机与同步器。sync 为 nil 时即单机模式
type Game struct {
	session *Session
	pilot   *game.Pilot
	camera  *game.Camera
	sync    *Synchronizer
	log     *zap.SugaredLogger

	now func() time.Time
}

// NewGame sync 可为 nil（离线）
func NewGame(session *Session, sync *Synchronizer, log *zap.SugaredLogger) *Game {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	g := &Game{
		session: session,
		pilot:   game.NewPilot(),
		camera:  game.NewCamera(),
		sync:    sync,
		log:     log,
		now:     time.Now,
	}
	return g
}

func (g *Game) Pilot() *game.Pilot { return g.pilot }

// Frame 推进一帧：模拟 -> 相机 -> 发布快照 -> 吸收拉取结果 -> 投影
func (g *Game) Frame(in game.Input) Frame {
	prev := g.pilot.Mode
	g.pilot.Step(in, wallClock(g.now()))
	if g.pilot.Mode != prev {
		g.log.Infow("mode changed", "from", prev, "to", g.pilot.Mode)
	}
	g.camera.Follow(g.pilot.Mode, g.pilot.Transform())

	var roster *Roster
	if g.sync != nil {
		g.sync.Publish(g.pilot.Snapshot(g.username()))
		if removed, ok := g.sync.Sync(); ok && len(removed) > 0 {
			g.log.Debugw("players left", "ids", removed)
		}
		roster = g.sync.Roster()
	}
	return Project(g.pilot, g.camera, roster)
}

// wallClock 自 Unix 纪元起的毫秒数，所有客户端的伞摆动相位一致
func wallClock(t time.Time) time.Duration {
	return time.Duration(t.UnixMilli()) * time.Millisecond
}

func (g *Game) username() string {
	if g.session == nil {
		return ""
	}
	return g.session.Username
}

// Run 以固定帧率驱动 Frame，直到 ctx 结束。同步器随之启动与停止
func (g *Game) Run(ctx context.Context, src InputSource, r Renderer, fps int) error {
	if g.sync != nil {
		g.sync.Start(ctx)
		defer g.sync.Stop()
	}
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Render(g.Frame(src.Poll()))
		}
	}
}

// Leave 离开房间：停止同步、通知服务端并释放镜像
func (g *Game) Leave(ctx context.Context) error {
	if g.sync == nil {
		return nil
	}
	return g.sync.Leave(ctx)
}
