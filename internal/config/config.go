package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feedview/internal/virtual"

	"github.com/pelletier/go-toml/v2"
)

// ErrEmptyPath 表示未指定路径且无法解析 $HOME。
var ErrEmptyPath = errors.New("config path is empty and $HOME is not set")

// Source kinds.
const (
	SourceMemory = "memory"
	SourceFile   = "file"
	SourceHTTP   = "http"
)

// Config is the only persisted config file schema.
type Config struct {
	Virtual VirtualConfig `toml:"virtual"`
	Source  SourceConfig  `toml:"source"`
	Log     LogConfig     `toml:"log"`
	Path    string        `toml:"-"`
}

// VirtualConfig 对应 [virtual]，单位是终端行。
type VirtualConfig struct {
	EstimateHeight  int `toml:"estimate_height"`
	MinHeight       int `toml:"min_height"`
	FooterHeight    int `toml:"footer_height"`
	Overscan        int `toml:"overscan"`
	Threshold       int `toml:"threshold"`
	PageSize        int `toml:"page_size"`
	FrameIntervalMS int `toml:"frame_interval_ms"`
}

// SourceConfig 对应 [source]。
type SourceConfig struct {
	Kind      string `toml:"kind"`
	Path      string `toml:"path"`
	URL       string `toml:"url"`
	Generate  int    `toml:"generate"`
	Seed      int64  `toml:"seed"`
	LatencyMS int    `toml:"latency_ms"`
	FailEvery int    `toml:"fail_every"`
	Retries   int    `toml:"retries"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// LogConfig 对应 [log]。
type LogConfig struct {
	Path       string `toml:"path"`
	EventsPath string `toml:"events_path"`
	Level      string `toml:"level"`
}

func Default() Config {
	return Config{
		Virtual: VirtualConfig{
			EstimateHeight:  6,
			MinHeight:       1,
			FooterHeight:    1,
			Overscan:        3,
			Threshold:       5,
			PageSize:        20,
			FrameIntervalMS: 16,
		},
		Source: SourceConfig{
			Kind:      SourceMemory,
			Generate:  200,
			Seed:      1,
			LatencyMS: 400,
			Retries:   3,
			TimeoutMS: 10000,
		},
		Log: LogConfig{
			Path:       "logs/feedview.log",
			EventsPath: "logs/feed-events.log",
			Level:      "info",
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".feedview", "config.toml")
}

// Load 读取 TOML 配置；文件不存在时使用默认值。环境变量优先于文件。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, ErrEmptyPath
	}
	cfg.Path = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("FEEDVIEW_SOURCE_URL")); env != "" {
		cfg.Source.URL = env
		cfg.Source.Kind = SourceHTTP
	}
	if env := strings.TrimSpace(os.Getenv("FEEDVIEW_LOG_LEVEL")); env != "" {
		cfg.Log.Level = env
	}
	return cfg
}

// Engine 把 [virtual] 转为引擎参数。
func (c Config) Engine() virtual.Config {
	v := c.Virtual
	return virtual.Config{
		EstimateHeight: float64(v.EstimateHeight),
		MinHeight:      float64(v.MinHeight),
		FooterHeight:   float64(v.FooterHeight),
		Overscan:       v.Overscan,
		Threshold:      v.Threshold,
		PageSize:       v.PageSize,
	}
}

// FrameInterval 返回合并重算使用的帧间隔。
func (c Config) FrameInterval() time.Duration {
	if c.Virtual.FrameIntervalMS <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(c.Virtual.FrameIntervalMS) * time.Millisecond
}

// Latency 返回内存来源的模拟延迟。
func (c Config) Latency() time.Duration {
	return time.Duration(max(c.Source.LatencyMS, 0)) * time.Millisecond
}

// Timeout 返回 HTTP 来源单次请求的超时，0 表示不限制。
func (c Config) Timeout() time.Duration {
	return time.Duration(max(c.Source.TimeoutMS, 0)) * time.Millisecond
}
