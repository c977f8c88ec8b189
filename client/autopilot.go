package client

import (
	"fmt"

	"go.uber.org/zap"

	"jarzd/game"
)

// Autopilot 无界面运行时的脚本输入：盘旋、定时开火、到点跳伞、落地后行走
type Autopilot struct {
	BailAfter int // 第几帧跳伞
	FireEvery int // 每几帧开火一次，0 表示不开火

	frame int
}

func (a *Autopilot) Poll() game.Input {
	a.frame++
	in := game.Input{Keys: game.NewKeySet(game.KeyW)}
	if a.frame%120 < 30 {
		in.Keys.Press(game.KeyQ)
	}
	if a.FireEvery > 0 && a.frame%a.FireEvery == 0 {
		in.Fire = true
	}
	if a.BailAfter > 0 && a.frame == a.BailAfter {
		in.BailOut = true
	}
	return in
}

// LogRenderer 无界面渲染：每隔 Every 帧把投影摘要写入日志
type LogRenderer struct {
	Log   *zap.SugaredLogger
	Every int

	frames int
}

func (r *LogRenderer) Render(f Frame) {
	r.frames++
	if r.Every <= 0 || r.frames%r.Every != 0 {
		return
	}
	pos := f.Plane.Position
	if f.Mode != game.ModeFlying {
		pos = f.Character.Position
	}
	r.Log.Infow("frame",
		"n", r.frames,
		"mode", f.Mode,
		"pos", fmt.Sprintf("(%.1f, %.1f, %.1f)", pos.X, pos.Y, pos.Z),
		"bullets", len(f.Bullets),
		"remotes", len(f.Remotes),
	)
}
