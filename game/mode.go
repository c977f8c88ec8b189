package game

// Mode 玩家当前移动模式，同一时刻只有一个生效
type Mode string

const (
	ModeFlying      Mode = "flying"
	ModeParachuting Mode = "parachuting"
	ModeGround      Mode = "ground"
)

// Valid 判断是否为已知模式
func (m Mode) Valid() bool {
	switch m {
	case ModeFlying, ModeParachuting, ModeGround:
		return true
	}
	return false
}
