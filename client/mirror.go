package client

import (
	"sort"

	"jarzd/game"
)

// Mirror 远端玩家在本地的镜像，只用于渲染
type Mirror struct {
	ID       string
	Username string
	Mode     game.Mode
	Health   int

	PlanePosition     game.Vector3
	CharacterPosition game.Vector3
	ChutePosition     game.Vector3
	Rotation          game.Vector3

	PlaneVisible     bool
	CharacterVisible bool
	ChuteVisible     bool
}

func newMirror(id string, s game.PlayerSnapshot) *Mirror {
	// 首次出现时直接放到收到的位置，之后才插值
	return &Mirror{
		ID:                id,
		PlanePosition:     s.Position,
		CharacterPosition: s.Position,
		ChutePosition:     s.Position,
		PlaneVisible:      true,
	}
}

// apply 位置向目标插值，旋转直接赋值，按模式切换可见性
func (m *Mirror) apply(s game.PlayerSnapshot) {
	m.Username = s.Username
	m.Health = s.Health
	m.Mode = s.Mode
	m.Rotation = s.Rotation

	switch s.Mode {
	case game.ModeFlying:
		m.PlanePosition = m.PlanePosition.Lerp(s.Position, game.MirrorBlend)
		m.PlaneVisible, m.CharacterVisible, m.ChuteVisible = true, false, false
	case game.ModeParachuting:
		m.CharacterPosition = m.CharacterPosition.Lerp(s.Position, game.MirrorBlend)
		m.ChutePosition = m.ChutePosition.Lerp(s.Position, game.MirrorBlend)
		m.PlaneVisible, m.CharacterVisible, m.ChuteVisible = false, true, true
	case game.ModeGround:
		m.CharacterPosition = m.CharacterPosition.Lerp(s.Position, game.MirrorBlend)
		m.PlaneVisible, m.CharacterVisible, m.ChuteVisible = false, true, false
	}
}

// Roster 所有远端镜像；只在帧循环内读写
type Roster struct {
	mirrors map[string]*Mirror

	// OnDispose 镜像被移除时回调，供渲染层释放资源
	OnDispose func(id string)
}

func NewRoster() *Roster {
	return &Roster{mirrors: make(map[string]*Mirror)}
}

// Reconcile 用一次拉取结果更新镜像：消失的移除，其余（本地玩家除外）插值更新
func (r *Roster) Reconcile(players map[string]game.PlayerSnapshot, localID string) (removed []string) {
	for id := range r.mirrors {
		if _, ok := players[id]; !ok {
			r.dispose(id)
			removed = append(removed, id)
		}
	}
	for id, s := range players {
		// 未知模式无法决定显示哪个物体，忽略该快照，已有镜像保持原状
		if id == localID || !s.Mode.Valid() {
			continue
		}
		m, ok := r.mirrors[id]
		if !ok {
			m = newMirror(id, s)
			r.mirrors[id] = m
		}
		m.apply(s)
	}
	return removed
}

// Get 按 ID 取镜像
func (r *Roster) Get(id string) (*Mirror, bool) {
	m, ok := r.mirrors[id]
	return m, ok
}

func (r *Roster) Len() int { return len(r.mirrors) }

// List 按 ID 排序的镜像副本
func (r *Roster) List() []Mirror {
	out := make([]Mirror, 0, len(r.mirrors))
	for _, m := range r.mirrors {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clear 离开房间时释放全部镜像
func (r *Roster) Clear() {
	for id := range r.mirrors {
		r.dispose(id)
	}
}

func (r *Roster) dispose(id string) {
	delete(r.mirrors, id)
	if r.OnDispose != nil {
		r.OnDispose(id)
	}
}
