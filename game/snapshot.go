package game

// PlayerSnapshot 玩家状态快照：由本地模拟产生，其他客户端仅作渲染目标
type PlayerSnapshot struct {
	Username   string  `json:"username"`
	Position   Vector3 `json:"position"`
	Rotation   Vector3 `json:"rotation"`
	Health     int     `json:"health"`
	Mode       Mode    `json:"mode"`
	LastUpdate int64   `json:"lastUpdate,omitempty"` // 服务端写入（毫秒时间戳）
}
