package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	axisX = mgl64.Vec3{1, 0, 0}
	axisY = mgl64.Vec3{0, 1, 0}
	axisZ = mgl64.Vec3{0, 0, 1}
)

// rotateLocal 依次绕自身 X/Y/Z 轴旋转（俯仰、偏航、横滚）
func rotateLocal(q mgl64.Quat, r Rates) mgl64.Quat {
	q = q.Mul(mgl64.QuatRotate(r.Pitch, axisX))
	q = q.Mul(mgl64.QuatRotate(r.Yaw, axisY))
	q = q.Mul(mgl64.QuatRotate(r.Roll, axisZ))
	return q.Normalize()
}

// forward 机头方向（本地 +X）
func forward(q mgl64.Quat) Vector3 {
	return fromVec(q.Rotate(axisX))
}

// EulerXYZ 将朝向分解为 XYZ 顺序欧拉角，用于线上快照
func EulerXYZ(q mgl64.Quat) Vector3 {
	m := q.Normalize().Mat4()
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	var e Vector3
	e.Y = math.Asin(math.Max(-1, math.Min(1, m13)))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		e.X = math.Atan2(m32, m22)
	}
	return e
}

// QuatFromEuler 欧拉角（XYZ）还原为四元数
func QuatFromEuler(e Vector3) mgl64.Quat {
	return rotateLocal(mgl64.QuatIdent(), Rates{Pitch: e.X, Yaw: e.Y, Roll: e.Z})
}
