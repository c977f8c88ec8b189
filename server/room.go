package server

import (
	"strings"

	"jarzd/game"
)

// Room 房间记录，整体作为一个值存放在 KV 中（键 room:<CODE>）
type Room struct {
	Code      string                           `json:"code"`
	Host      string                           `json:"host"`
	Players   map[PlayerID]game.PlayerSnapshot `json:"players"`
	CreatedAt int64                            `json:"createdAt"`
}

// NewRoom 创建空房间，房主不自动成为玩家
func NewRoom(code, host string, nowMs int64) *Room {
	return &Room{
		Code:      NormalizeCode(code),
		Host:      host,
		Players:   make(map[PlayerID]game.PlayerSnapshot),
		CreatedAt: nowMs,
	}
}

// NormalizeCode 房间码统一大写后再存取
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Upsert 写入或覆盖玩家快照
func (r *Room) Upsert(id PlayerID, s game.PlayerSnapshot, nowMs int64) {
	if r.Players == nil {
		r.Players = make(map[PlayerID]game.PlayerSnapshot)
	}
	r.Players[id] = stamp(s, nowMs)
}

// Remove 移除玩家，返回是否存在
func (r *Room) Remove(id PlayerID) bool {
	if _, ok := r.Players[id]; !ok {
		return false
	}
	delete(r.Players, id)
	return true
}

// Evict 移除超过存活窗口的玩家，返回被移除的 ID
func (r *Room) Evict(nowMs, windowMs int64) []PlayerID {
	var evicted []PlayerID
	for id, p := range r.Players {
		if stale(p, nowMs, windowMs) {
			delete(r.Players, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
