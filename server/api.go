package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"jarzd/game"
)

const maxRequestBody = 1 << 16 // 64 KB

// Server 房间存储的 HTTP 接口
type Server struct {
	svc      *Service
	feed     *Feed
	basePath string
	settings any // /admin/config 输出的生效配置
}

// NewServer feed 可为 nil（不提供 /ws）
func NewServer(svc *Service, feed *Feed, basePath string, settings any) *Server {
	return &Server{
		svc:      svc,
		feed:     feed,
		basePath: strings.TrimSuffix(basePath, "/"),
		settings: settings,
	}
}

// Routes 设定路由
//
//	POST {base}/create-room   {roomCode, hostUsername}
//	POST {base}/join-room     {roomCode, username}
//	POST {base}/update-player {roomCode, playerId, playerData}
//	GET  {base}/get-players?roomCode=
//	POST {base}/leave-room    {roomCode, playerId}
//	GET  {base}/health
//	GET  {base}/ws?roomCode=  玩家列表推送
//	GET  /metrics, GET /admin/config
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	b := s.basePath

	mux.HandleFunc("POST "+b+"/create-room", s.wrap("create-room", s.createRoom))
	mux.HandleFunc("POST "+b+"/join-room", s.wrap("join-room", s.joinRoom))
	mux.HandleFunc("POST "+b+"/update-player", s.wrap("update-player", s.updatePlayer))
	mux.HandleFunc("GET "+b+"/get-players", s.wrap("get-players", s.getPlayers))
	mux.HandleFunc("POST "+b+"/leave-room", s.wrap("leave-room", s.leaveRoom))
	mux.HandleFunc("GET "+b+"/health", s.health)
	if s.feed != nil {
		mux.HandleFunc("GET "+b+"/ws", s.feed.ServeWS)
	}

	mux.HandleFunc("GET /metrics", s.HandleMetrics)
	mux.HandleFunc("GET /admin/config", s.HandleAdminConfig)

	return cors(mux)
}

type apiFunc func(w http.ResponseWriter, r *http.Request) error

// wrap 在请求边界统一把错误与 panic 转成 JSON 错误体
func (s *Server) wrap(name string, h apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				Log.Errorf("%s: panic: %v", name, rec)
				s.svc.metrics.IncFailures()
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
			}
		}()

		if err := h(w, r); err != nil {
			e := classify(err, "Failed to "+strings.ReplaceAll(name, "-", " "))
			if e.Kind == KindInternal {
				Log.Errorf("%s: %v", name, err)
			}
			s.svc.metrics.IncFailures()
			writeJSON(w, e.Status(), errorBody{Error: e.Message})
		}
		Log.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// playersBody get-players 响应；/ws 推送时带 type 与 roomCode
type playersBody struct {
	Type     string                           `json:"type,omitempty"`
	RoomCode string                           `json:"roomCode,omitempty"`
	Players  map[PlayerID]game.PlayerSnapshot `json:"players"`
}

type successBody struct {
	Success  bool   `json:"success"`
	RoomCode string `json:"roomCode,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return validation("invalid json")
	}
	return nil
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) error {
	var req createRoomRequest
	if err := decode(w, r, &req); err != nil {
		return err
	}
	room, err := s.svc.CreateRoom(r.Context(), req.RoomCode, req.HostUsername)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, successBody{Success: true, RoomCode: room.Code})
	return nil
}

func (s *Server) joinRoom(w http.ResponseWriter, r *http.Request) error {
	var req joinRoomRequest
	if err := decode(w, r, &req); err != nil {
		return err
	}
	if err := s.svc.JoinRoom(r.Context(), req.RoomCode, req.Username); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
	return nil
}

func (s *Server) updatePlayer(w http.ResponseWriter, r *http.Request) error {
	var req updatePlayerRequest
	if err := decode(w, r, &req); err != nil {
		return err
	}
	if err := s.svc.UpdatePlayer(r.Context(), req.RoomCode, req.PlayerID, req.PlayerData); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
	return nil
}

func (s *Server) getPlayers(w http.ResponseWriter, r *http.Request) error {
	players, err := s.svc.GetPlayers(r.Context(), r.URL.Query().Get("roomCode"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, playersBody{Players: players})
	return nil
}

func (s *Server) leaveRoom(w http.ResponseWriter, r *http.Request) error {
	var req leaveRoomRequest
	if err := decode(w, r, &req); err != nil {
		return err
	}
	if err := s.svc.LeaveRoom(r.Context(), req.RoomCode, req.PlayerID); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "game": "jarzd.io"})
}

// cors 允许任意来源；Authorization 头接受但不校验
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
