package server

import "jarzd/game"

// 入站请求体（JSON）

// {"roomCode":"ABCDEF","hostUsername":"alice"}
type createRoomRequest struct {
	RoomCode     string `json:"roomCode"`
	HostUsername string `json:"hostUsername"`
}

// {"roomCode":"ABCDEF","username":"bob"}
type joinRoomRequest struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

// {"roomCode":"ABCDEF","playerId":"p1","playerData":{...}}
type updatePlayerRequest struct {
	RoomCode   string               `json:"roomCode"`
	PlayerID   PlayerID             `json:"playerId"`
	PlayerData *game.PlayerSnapshot `json:"playerData"`
}

// {"roomCode":"ABCDEF","playerId":"p1"}
type leaveRoomRequest struct {
	RoomCode string   `json:"roomCode"`
	PlayerID PlayerID `json:"playerId"`
}
