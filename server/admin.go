package server

import (
	"net/http"
)

// HandleAdminConfig 输出当前生效的服务端配置（只读）
// GET /admin/config
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stale_after_ms": s.svc.staleAfter.Milliseconds(),
		"base_path":      s.basePath,
		"feed":           s.feed != nil,
		"config":         s.settings,
	})
}

// HandleMetrics 输出房间服务的运行指标
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": s.svc.metrics.Snapshot(),
	})
}
