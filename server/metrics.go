package server

import (
	"sync/atomic"
)

// Metrics 房间服务的运行计数（用于 /metrics 与调试）
type Metrics struct {
	RoomsCreated   int64 // 创建（含覆盖）次数
	Joins          int64 // join-room 成功次数
	Updates        int64 // update-player 成功次数
	Reads          int64 // get-players 成功次数
	Evicted        int64 // 因过期被移除的玩家数
	Leaves         int64 // 实际移除了玩家的 leave-room 次数
	Failures       int64 // 返回错误的请求数
	FeedBroadcasts int64 // /ws 推送次数
	FeedClients    int64 // 当前 /ws 连接数
}

func (m *Metrics) IncCreated()          { atomic.AddInt64(&m.RoomsCreated, 1) }
func (m *Metrics) IncJoins()            { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncUpdates()          { atomic.AddInt64(&m.Updates, 1) }
func (m *Metrics) IncReads()            { atomic.AddInt64(&m.Reads, 1) }
func (m *Metrics) AddEvicted(n int)     { atomic.AddInt64(&m.Evicted, int64(n)) }
func (m *Metrics) IncLeaves()           { atomic.AddInt64(&m.Leaves, 1) }
func (m *Metrics) IncFailures()         { atomic.AddInt64(&m.Failures, 1) }
func (m *Metrics) IncFeedBroadcasts()   { atomic.AddInt64(&m.FeedBroadcasts, 1) }
func (m *Metrics) AddFeedClients(d int) { atomic.AddInt64(&m.FeedClients, int64(d)) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"rooms_created":   atomic.LoadInt64(&m.RoomsCreated),
		"joins":           atomic.LoadInt64(&m.Joins),
		"updates":         atomic.LoadInt64(&m.Updates),
		"reads":           atomic.LoadInt64(&m.Reads),
		"evicted":         atomic.LoadInt64(&m.Evicted),
		"leaves":          atomic.LoadInt64(&m.Leaves),
		"failures":        atomic.LoadInt64(&m.Failures),
		"feed_broadcasts": atomic.LoadInt64(&m.FeedBroadcasts),
		"feed_clients":    atomic.LoadInt64(&m.FeedClients),
	}
}
