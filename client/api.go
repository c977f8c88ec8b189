package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"jarzd/game"
)

// APIError 房间服务返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("room store: %d %s", e.Status, e.Message)
}

// API 房间服务的 HTTP 客户端。不设超时：挂起的请求只会推迟下一轮推送/拉取
type API struct {
	base  string
	token string
	hc    *http.Client
}

// NewAPI base 形如 http://localhost:8080/api；hc 为 nil 时使用 http.DefaultClient
func NewAPI(base, token string, hc *http.Client) *API {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &API{base: strings.TrimSuffix(base, "/"), token: token, hc: hc}
}

func (a *API) CreateRoom(ctx context.Context, code, host string) (string, error) {
	var resp struct {
		RoomCode string `json:"roomCode"`
	}
	err := a.do(ctx, http.MethodPost, "/create-room", map[string]string{"roomCode": code, "hostUsername": host}, &resp)
	return resp.RoomCode, err
}

func (a *API) JoinRoom(ctx context.Context, code, username string) error {
	return a.do(ctx, http.MethodPost, "/join-room", map[string]string{"roomCode": code, "username": username}, nil)
}

func (a *API) UpdatePlayer(ctx context.Context, code, playerID string, s game.PlayerSnapshot) error {
	body := struct {
		RoomCode   string              `json:"roomCode"`
		PlayerID   string              `json:"playerId"`
		PlayerData game.PlayerSnapshot `json:"playerData"`
	}{code, playerID, s}
	return a.do(ctx, http.MethodPost, "/update-player", body, nil)
}

func (a *API) GetPlayers(ctx context.Context, code string) (map[string]game.PlayerSnapshot, error) {
	var resp struct {
		Players map[string]game.PlayerSnapshot `json:"players"`
	}
	if err := a.do(ctx, http.MethodGet, "/get-players?roomCode="+url.QueryEscape(code), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Players == nil {
		resp.Players = map[string]game.PlayerSnapshot{}
	}
	return resp.Players, nil
}

func (a *API) LeaveRoom(ctx context.Context, code, playerID string) error {
	return a.do(ctx, http.MethodPost, "/leave-room", map[string]string{"roomCode": code, "playerId": playerID}, nil)
}

func (a *API) Health(ctx context.Context) error {
	return a.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
