package game

import "strings"

// Key 键名，与浏览器 KeyboardEvent.key 小写后一致
type Key string

const (
	KeyW          Key = "w"
	KeyA          Key = "a"
	KeyS          Key = "s"
	KeyD          Key = "d"
	KeyQ          Key = "q"
	KeyE          Key = "e"
	KeyF          Key = "f"
	KeySpace      Key = " "
	KeyArrowUp    Key = "arrowup"
	KeyArrowDown  Key = "arrowdown"
	KeyArrowLeft  Key = "arrowleft"
	KeyArrowRight Key = "arrowright"
)

// ParseKey 规范化键名
func ParseKey(s string) Key {
	if s == " " {
		return KeySpace
	}
	return Key(strings.ToLower(s))
}

// KeySet 当前按住的键集合
type KeySet map[Key]struct{}

func NewKeySet(keys ...Key) KeySet {
	ks := make(KeySet, len(keys))
	for _, k := range keys {
		ks[k] = struct{}{}
	}
	return ks
}

func (ks KeySet) Press(k Key)   { ks[k] = struct{}{} }
func (ks KeySet) Release(k Key) { delete(ks, k) }

// Has 任一键按下即为 true
func (ks KeySet) Has(keys ...Key) bool {
	for _, k := range keys {
		if _, ok := ks[k]; ok {
			return true
		}
	}
	return false
}

func (ks KeySet) forward() bool   { return ks.Has(KeyW, KeyArrowUp) }
func (ks KeySet) back() bool      { return ks.Has(KeyS, KeyArrowDown) }
func (ks KeySet) left() bool      { return ks.Has(KeyA, KeyArrowLeft) }
func (ks KeySet) right() bool     { return ks.Has(KeyD, KeyArrowRight) }
func (ks KeySet) rollLeft() bool  { return ks.Has(KeyQ) }
func (ks KeySet) rollRight() bool { return ks.Has(KeyE) }

// Input 一帧的输入：持续按住的键 + 本帧触发的动作
type Input struct {
	Keys    KeySet
	Fire    bool // 空格按下
	BailOut bool // F 按下
}
