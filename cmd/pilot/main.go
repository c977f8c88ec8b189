package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jarzd/client"
	"jarzd/config"
	"jarzd/radar"
	"jarzd/server"
)

// pilot 客户端入口：创建/加入房间后运行帧循环。-headless 时由自动驾驶驱动并把帧摘要写日志
func main() {
	var (
		cfgPath  = flag.String("config", "jarzd.yaml", "path to YAML config")
		url      = flag.String("server", "", "room store base URL, e.g. http://localhost:8080/api (overrides config)")
		user     = flag.String("user", "pilot", "username shown to other players")
		room     = flag.String("room", "", "room code to join; empty creates a new room")
		headless = flag.Bool("headless", false, "run without a window, driven by the autopilot")
		duration = flag.Duration("duration", 0, "headless run time; 0 runs until interrupted")
		bail     = flag.Int("bail-after", 600, "headless: frame at which the autopilot bails out")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	if *url != "" {
		cfg.Client.ServerURL = *url
	}

	if err := server.InitLogger(server.LogOptions{
		File:    "pilot.log",
		Level:   cfg.Log.Level,
		Console: *headless,
	}); err != nil {
		panic(err)
	}
	defer server.SyncLogger()
	log := server.Log.With("user", *user)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.NewAPI(cfg.Client.ServerURL, cfg.Client.Token, nil)
	session, err := client.Connect(ctx, api, *user, *room, *room == "")
	if err != nil {
		log.Fatalf("connect %s: %v", cfg.Client.ServerURL, err)
	}
	log = log.With("room", session.RoomCode, "player", session.PlayerID)
	log.Infow("joined room", "host", session.Host)

	sync := client.NewSynchronizer(api, session,
		client.WithIntervals(cfg.Client.PushInterval, cfg.Client.PullInterval),
		client.WithLogger(log),
	)
	g := client.NewGame(session, sync, log)

	if *headless {
		if *duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, *duration)
			defer cancel()
		}
		src := &client.Autopilot{BailAfter: *bail, FireEvery: 30}
		r := &client.LogRenderer{Log: log, Every: cfg.Client.FrameRate}
		_ = g.Run(ctx, src, r, cfg.Client.FrameRate)
	} else {
		sync.Start(ctx)
		if err := radar.NewWindow(ctx, g, session.RoomCode).Run(cfg.Client.FrameRate); err != nil {
			log.Errorf("radar: %v", err)
		}
	}

	leaveCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := g.Leave(leaveCtx); err != nil {
		log.Warnf("leave: %v", err)
	}
	log.Info("bye")
}
