// Package config 读取服务端与客户端共用的配置：默认值 -> YAML 文件 -> .env -> 环境变量。
// 命令行参数由各入口自行覆盖。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 整个应用的配置
type Config struct {
	Server struct {
		Addr         string        `yaml:"addr"`
		BasePath     string        `yaml:"base_path"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Store struct {
		Backend   string `yaml:"backend"` // memory | redis
		KeyPrefix string `yaml:"key_prefix"`
		Redis     struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"store"`

	Room struct {
		StaleAfter   time.Duration `yaml:"stale_after"`   // 成员存活窗口
		FeedInterval time.Duration `yaml:"feed_interval"` // /ws 推送间隔
	} `yaml:"room"`

	Client struct {
		ServerURL    string        `yaml:"server_url"`
		Token        string        `yaml:"token"`
		PushInterval time.Duration `yaml:"push_interval"`
		PullInterval time.Duration `yaml:"pull_interval"`
		FrameRate    int           `yaml:"frame_rate"`
	} `yaml:"client"`

	Log struct {
		File    string `yaml:"file"`
		Level   string `yaml:"level"`
		Console bool   `yaml:"console"`
	} `yaml:"log"`
}

// Default 默认配置
func Default() *Config {
	c := &Config{}
	c.Server.Addr = ":8080"
	c.Server.BasePath = "/api"
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 15 * time.Second
	c.Store.Backend = "memory"
	c.Store.KeyPrefix = "room:"
	c.Store.Redis.Addr = "localhost:6379"
	c.Room.StaleAfter = 5 * time.Second
	c.Room.FeedInterval = 100 * time.Millisecond
	c.Client.ServerURL = "http://localhost:8080/api"
	c.Client.PushInterval = 50 * time.Millisecond
	c.Client.PullInterval = 100 * time.Millisecond
	c.Client.FrameRate = 60
	c.Log.File = "app.log"
	c.Log.Level = "debug"
	return c
}

// Load 加载配置；path 为空或文件不存在时只用默认值与环境变量
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env 可选，不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("JARZD_ADDR", &c.Server.Addr)
	setString("JARZD_STORE", &c.Store.Backend)
	setString("JARZD_REDIS_ADDR", &c.Store.Redis.Addr)
	setString("JARZD_REDIS_PASSWORD", &c.Store.Redis.Password)
	setString("JARZD_LOG_FILE", &c.Log.File)
	setString("JARZD_LOG_LEVEL", &c.Log.Level)
	setString("JARZD_SERVER_URL", &c.Client.ServerURL)
	setString("JARZD_TOKEN", &c.Client.Token)

	if v := os.Getenv("JARZD_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JARZD_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = db
	}
	return nil
}

// Validate 检查明显错误的取值
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Room.StaleAfter <= 0 {
		return errors.New("room.stale_after must be positive")
	}
	if c.Room.FeedInterval <= 0 {
		return errors.New("room.feed_interval must be positive")
	}
	if c.Client.PushInterval <= 0 || c.Client.PullInterval <= 0 {
		return errors.New("client intervals must be positive")
	}
	if c.Client.FrameRate <= 0 {
		return errors.New("client.frame_rate must be positive")
	}
	return nil
}
