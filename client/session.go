package client

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

const roomCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewRoomCode 6 位 base-36 随机码（大写），不检查冲突
func NewRoomCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = roomCodeAlphabet[rand.IntN(len(roomCodeAlphabet))]
	}
	return strings.ToUpper(string(b))
}

// Session 一次进房会话：玩家 ID 在会话内固定，离开时随同步器一起结束
type Session struct {
	PlayerID string
	RoomCode string
	Username string
	Host     bool
}

// Connect 创建（host 为 true）或加入房间。创建时 code 为空则随机生成
func Connect(ctx context.Context, api *API, username, code string, host bool) (*Session, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if host {
		if code == "" {
			code = NewRoomCode()
		}
		created, err := api.CreateRoom(ctx, code, username)
		if err != nil {
			return nil, err
		}
		if created != "" {
			code = created
		}
	} else if err := api.JoinRoom(ctx, code, username); err != nil {
		return nil, err
	}

	return &Session{
		PlayerID: uuid.NewString(),
		RoomCode: code,
		Username: username,
		Host:     host,
	}, nil
}
