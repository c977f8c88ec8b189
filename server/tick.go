package server

import (
	"encoding/json"
	"time"
)

// startTicker 启动房间的推送循环，直到 stop 关闭。调用方持有 f.mu
func (f *Feed) startTicker(fr *feedRoom) {
	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-fr.stop:
				return
			case <-ticker.C:
				f.broadcast(fr)
			}
		}
	}()
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
