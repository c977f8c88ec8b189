package game

// 各模式下相机相对目标的偏移
var (
	flyingCameraOffset      = Vector3{0, 5, -15}
	parachutingCameraOffset = Vector3{-10, 5, 0}
	groundCameraOffset      = Vector3{-8, 3, 0}
)

// Camera 跟随相机，只做平滑插值，不直接吸附
type Camera struct {
	Position Vector3
	LookAt   Vector3
}

func NewCamera() *Camera {
	return &Camera{Position: flyingCameraOffset}
}

// CameraGoal 给定模式与目标变换时相机的理想位置；仅飞行模式随目标朝向旋转偏移
func CameraGoal(mode Mode, target Transform) Vector3 {
	var offset Vector3
	switch mode {
	case ModeParachuting:
		offset = parachutingCameraOffset
	case ModeGround:
		offset = groundCameraOffset
	default:
		offset = fromVec(target.Orientation.Rotate(flyingCameraOffset.vec()))
	}
	return target.Position.Add(offset)
}

// Follow 每帧向理想位置插值一次
func (c *Camera) Follow(mode Mode, target Transform) {
	c.Position = c.Position.Lerp(CameraGoal(mode, target), CameraBlend)
	c.LookAt = target.Position
}
