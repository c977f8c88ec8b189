package radar

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"jarzd/game"
)

var heldKeys = map[ebiten.Key]game.Key{
	ebiten.KeyW:          game.KeyW,
	ebiten.KeyA:          game.KeyA,
	ebiten.KeyS:          game.KeyS,
	ebiten.KeyD:          game.KeyD,
	ebiten.KeyQ:          game.KeyQ,
	ebiten.KeyE:          game.KeyE,
	ebiten.KeyArrowUp:    game.KeyArrowUp,
	ebiten.KeyArrowDown:  game.KeyArrowDown,
	ebiten.KeyArrowLeft:  game.KeyArrowLeft,
	ebiten.KeyArrowRight: game.KeyArrowRight,
}

// Keyboard 从 ebiten 读取键盘状态。开火与跳伞只在按下的那一帧触发
type Keyboard struct{}

func (Keyboard) Poll() game.Input {
	in := game.Input{Keys: game.NewKeySet()}
	for k, gk := range heldKeys {
		if ebiten.IsKeyPressed(k) {
			in.Keys.Press(gk)
		}
	}
	in.Fire = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	in.BailOut = inpututil.IsKeyJustPressed(ebiten.KeyF)
	return in
}
