package game

// 每 Tick 的调参常量（一帧推进一次）
const (
	SpawnAltitude = 50.0

	FlightSpeed = 0.3   // 沿机头方向的固定速度
	RateAccel   = 0.002 // 按住控制键时角速度增量
	MaxRate     = 0.05  // 角速度上限（绝对值）
	RateDecay   = 0.95  // 松开按键后的衰减系数
	FlightFloor = -15.0 // 飞行最低高度

	BailOutVelocity = -0.1  // 跳伞初始下落速度
	ChuteInputAccel = 0.01  // 伞降水平方向键增量
	ChuteGravity    = 0.005 // 伞降每 Tick 重力
	ChuteTerminal   = -0.3  // 伞降终端速度
	ChuteDrag       = 0.98  // 水平阻力系数
	ChuteSwayAmp    = 0.1   // 伞摆动幅度

	GroundHeight = -18.5
	WalkStep     = 0.2

	ProjectileSpeed    = 2.0
	ProjectileLifetime = 100 // 单位：Tick

	CameraBlend = 0.1
	MirrorBlend = 0.3 // 远端玩家位置插值系数

	FullHealth = 100
)
