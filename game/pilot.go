package game

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Rates 飞行角速度（弧度/Tick）
type Rates struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Transform 渲染与相机读取的目标变换
type Transform struct {
	Position    Vector3
	Orientation mgl64.Quat
}

// Pilot 本地玩家的运动状态机。只由帧循环持有，每帧 Step 一次，不可重入
type Pilot struct {
	Mode Mode

	// 飞机
	PlanePosition Vector3
	Orientation   mgl64.Quat
	Rates         Rates

	// 人物与降落伞（跳伞后生效）
	CharacterPosition Vector3
	ChuteVelocity     Vector3
	ChuteSway         Vector3 // 仅外观，由墙钟时间驱动
	ChuteVisible      bool

	Projectiles []Projectile
}

// NewPilot 进入房间时的初始状态：飞行
func NewPilot() *Pilot {
	return &Pilot{
		Mode:          ModeFlying,
		PlanePosition: Vector3{Y: SpawnAltitude},
		Orientation:   mgl64.QuatIdent(),
	}
}

// Step 按本帧输入推进一次。wall 为自 Unix 纪元起的墙钟时间，只影响伞的摆动
func (p *Pilot) Step(in Input, wall time.Duration) {
	keys := in.Keys
	if keys == nil {
		keys = KeySet{}
	}
	if in.Fire {
		p.Fire()
	}
	if in.BailOut {
		p.BailOut()
	}

	switch p.Mode {
	case ModeFlying:
		p.fly(keys)
	case ModeParachuting:
		p.parachute(keys, wall)
	case ModeGround:
		p.walk(keys)
	}

	if len(p.Projectiles) > 0 {
		p.Projectiles = advanceProjectiles(p.Projectiles)
	}
}

// BailOut 飞行 -> 伞降。其他模式下无效果
func (p *Pilot) BailOut() bool {
	if p.Mode != ModeFlying {
		return false
	}
	p.Mode = ModeParachuting
	p.CharacterPosition = p.PlanePosition
	p.ChuteVelocity = Vector3{Y: BailOutVelocity}
	p.ChuteVisible = true
	return true
}

// Fire 仅飞行模式可开火
func (p *Pilot) Fire() bool {
	if p.Mode != ModeFlying {
		return false
	}
	p.Projectiles = append(p.Projectiles, Projectile{
		Position:          p.PlanePosition,
		Velocity:          forward(p.Orientation).Scale(ProjectileSpeed),
		RemainingLifetime: ProjectileLifetime,
	})
	return true
}

func (p *Pilot) fly(keys KeySet) {
	p.Rates.Yaw = steer(p.Rates.Yaw, keys.forward(), keys.back())
	p.Rates.Pitch = steer(p.Rates.Pitch, keys.left(), keys.right())
	p.Rates.Roll = steer(p.Rates.Roll, keys.rollLeft(), keys.rollRight())

	p.Orientation = rotateLocal(p.Orientation, p.Rates)
	p.PlanePosition = p.PlanePosition.Add(forward(p.Orientation).Scale(FlightSpeed))
	if p.PlanePosition.Y < FlightFloor {
		p.PlanePosition.Y = FlightFloor
	}
}

// steer 按住正向键加速、反向键减速，都未按时衰减
func steer(rate float64, up, down bool) float64 {
	switch {
	case up:
		return math.Min(rate+RateAccel, MaxRate)
	case down:
		return math.Max(rate-RateAccel, -MaxRate)
	default:
		return rate * RateDecay
	}
}

func (p *Pilot) parachute(keys KeySet, wall time.Duration) {
	v := &p.ChuteVelocity
	if keys.forward() {
		v.X += ChuteInputAccel
	}
	if keys.back() {
		v.X -= ChuteInputAccel
	}
	if keys.left() {
		v.Z += ChuteInputAccel
	}
	if keys.right() {
		v.Z -= ChuteInputAccel
	}

	v.Y = math.Max(v.Y-ChuteGravity, ChuteTerminal)
	v.X *= ChuteDrag
	v.Z *= ChuteDrag

	p.CharacterPosition = p.CharacterPosition.Add(*v)

	ms := float64(wall.Milliseconds())
	p.ChuteSway = Vector3{
		X: math.Cos(ms*0.003) * ChuteSwayAmp,
		Z: math.Sin(ms*0.002) * ChuteSwayAmp,
	}

	if p.CharacterPosition.Y <= GroundHeight {
		p.CharacterPosition.Y = GroundHeight
		p.ChuteVisible = false
		p.Mode = ModeGround
	}
}

func (p *Pilot) walk(keys KeySet) {
	if keys.forward() {
		p.CharacterPosition.X += WalkStep
	}
	if keys.back() {
		p.CharacterPosition.X -= WalkStep
	}
	if keys.left() {
		p.CharacterPosition.Z += WalkStep
	}
	if keys.right() {
		p.CharacterPosition.Z -= WalkStep
	}
	p.CharacterPosition.Y = GroundHeight
}

// Transform 当前模式下被跟随的目标（飞机或人物）
func (p *Pilot) Transform() Transform {
	if p.Mode == ModeFlying {
		return Transform{Position: p.PlanePosition, Orientation: p.Orientation}
	}
	return Transform{Position: p.CharacterPosition, Orientation: mgl64.QuatIdent()}
}

// Snapshot 生成推送给服务端的快照；人物不旋转，伞降与地面模式下 rotation 为零
func (p *Pilot) Snapshot(username string) PlayerSnapshot {
	s := PlayerSnapshot{
		Username: username,
		Health:   FullHealth,
		Mode:     p.Mode,
	}
	if p.Mode == ModeFlying {
		s.Position = p.PlanePosition
		s.Rotation = EulerXYZ(p.Orientation)
	} else {
		s.Position = p.CharacterPosition
	}
	return s
}
