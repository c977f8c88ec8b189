// Package radar 俯视雷达窗口：把客户端帧投影画成 X/Z 平面上的点
package radar

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"jarzd/client"
	"jarzd/game"
)

const (
	Width  = 640
	Height = 480
	scale  = 2.0 // 每个世界单位的像素数
)

var (
	bgColor     = color.NRGBA{12, 16, 24, 255}
	gridColor   = color.NRGBA{30, 40, 56, 255}
	selfColor   = color.NRGBA{80, 200, 255, 255}
	chuteColor  = color.NRGBA{255, 255, 255, 255}
	walkColor   = color.NRGBA{120, 220, 120, 255}
	remoteColor = color.NRGBA{255, 140, 60, 255}
	bulletColor = color.NRGBA{255, 230, 80, 255}
)

// Window 实现 ebiten.Game：Update 推进一帧，Draw 画出上一帧的投影
type Window struct {
	ctx   context.Context
	game  *client.Game
	input client.InputSource
	room  string

	frame client.Frame
}

func NewWindow(ctx context.Context, g *client.Game, room string) *Window {
	return &Window{ctx: ctx, game: g, input: Keyboard{}, room: room}
}

// Run 打开窗口直到关闭或 ctx 结束。同步器的启停由调用方负责
func (w *Window) Run(fps int) error {
	if fps > 0 {
		ebiten.SetTPS(fps)
	}
	ebiten.SetWindowSize(Width, Height)
	ebiten.SetWindowTitle(fmt.Sprintf("jarzd.io radar - %s", w.room))
	return ebiten.RunGame(w)
}

func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}
	w.frame = w.game.Frame(w.input.Poll())
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	center := w.focus()

	for i := -Width / 2; i <= Width/2; i += 50 {
		vector.FillRect(screen, float32(Width/2+i), 0, 1, Height, gridColor, false)
	}
	for i := -Height / 2; i <= Height/2; i += 50 {
		vector.FillRect(screen, 0, float32(Height/2+i), Width, 1, gridColor, false)
	}

	for _, b := range w.frame.Bullets {
		x, y := toScreen(b, center)
		vector.FillRect(screen, x-1, y-1, 2, 2, bulletColor, false)
	}
	for _, m := range w.frame.Remotes {
		pos := m.CharacterPosition
		if m.PlaneVisible {
			pos = m.PlanePosition
		}
		x, y := toScreen(pos, center)
		vector.FillCircle(screen, x, y, 4, remoteColor, true)
		ebitenutil.DebugPrintAt(screen, m.Username, int(x)+6, int(y)-8)
	}

	switch {
	case w.frame.Plane.Visible:
		x, y := toScreen(w.frame.Plane.Position, center)
		vector.FillCircle(screen, x, y, 5, selfColor, true)
	case w.frame.Chute.Visible:
		x, y := toScreen(w.frame.Chute.Position, center)
		vector.FillCircle(screen, x, y, 6, chuteColor, true)
	default:
		x, y := toScreen(w.frame.Character.Position, center)
		vector.FillCircle(screen, x, y, 3, walkColor, true)
	}

	ebitenutil.DebugPrint(screen, w.hud(center))
}

func (w *Window) Layout(int, int) (int, int) { return Width, Height }

func (w *Window) focus() game.Vector3 {
	if w.frame.Mode == game.ModeFlying {
		return w.frame.Plane.Position
	}
	return w.frame.Character.Position
}

func (w *Window) hud(pos game.Vector3) string {
	return fmt.Sprintf("room %s  mode %s\nalt %.1f  bullets %d  players %d\nWS/AD/QE steer  SPACE fire  F bail",
		w.room, w.frame.Mode, pos.Y, len(w.frame.Bullets), len(w.frame.Remotes)+1)
}

// toScreen 以 center 为屏幕中心做俯视投影：世界 X 向右，世界 Z 向下
func toScreen(v, center game.Vector3) (float32, float32) {
	return float32(Width/2 + (v.X-center.X)*scale), float32(Height/2 + (v.Z-center.Z)*scale)
}
