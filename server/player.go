package server

import "jarzd/game"

// PlayerID 客户端会话内生成的玩家唯一标识
type PlayerID string

// stamp 以服务端时间覆盖快照的 lastUpdate
func stamp(s game.PlayerSnapshot, nowMs int64) game.PlayerSnapshot {
	s.LastUpdate = nowMs
	return s
}

// stale 是否超过存活窗口（严格大于才算过期）
func stale(s game.PlayerSnapshot, nowMs, windowMs int64) bool {
	return nowMs-s.LastUpdate > windowMs
}
