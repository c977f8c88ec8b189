package client

import "jarzd/game"

// Body 渲染层读取的一个可见物体
type Body struct {
	Position game.Vector3
	Rotation game.Vector3
	Visible  bool
}

// Frame 一帧的渲染投影：本地玩家、相机、子弹与全部远端镜像
type Frame struct {
	Mode      game.Mode
	Plane     Body
	Character Body
	Chute     Body
	Camera    game.Camera
	Bullets   []game.Vector3
	Remotes   []Mirror
}

// Project 由模拟状态生成渲染投影，不修改任何状态
func Project(p *game.Pilot, cam *game.Camera, roster *Roster) Frame {
	f := Frame{
		Mode: p.Mode,
		Plane: Body{
			Position: p.PlanePosition,
			Rotation: game.EulerXYZ(p.Orientation),
			Visible:  p.Mode == game.ModeFlying,
		},
		Character: Body{
			Position: p.CharacterPosition,
			Visible:  p.Mode != game.ModeFlying,
		},
		Chute: Body{
			Position: p.CharacterPosition,
			Rotation: p.ChuteSway,
			Visible:  p.ChuteVisible,
		},
		Camera: *cam,
	}
	if len(p.Projectiles) > 0 {
		f.Bullets = make([]game.Vector3, len(p.Projectiles))
		for i, b := range p.Projectiles {
			f.Bullets[i] = b.Position
		}
	}
	if roster != nil {
		f.Remotes = roster.List()
	}
	return f
}

// Renderer 渲染协作方：每帧接收一次投影
type Renderer interface {
	Render(Frame)
}

// InputSource 每帧查询一次按键状态
type InputSource interface {
	Poll() game.Input
}
