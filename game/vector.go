package game

import "github.com/go-gl/mathgl/mgl64"

// Vector3 线上传输的三维向量，位置与欧拉角共用
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vector3) Scale(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

// Lerp 向 to 插值 t（0 不动，1 直接到达）
func (v Vector3) Lerp(to Vector3, t float64) Vector3 {
	return v.Add(to.Sub(v).Scale(t))
}

func (v Vector3) vec() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

func fromVec(v mgl64.Vec3) Vector3 { return Vector3{X: v[0], Y: v[1], Z: v[2]} }
