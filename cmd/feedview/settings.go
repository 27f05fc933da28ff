package main

import (
	"errors"
	"fmt"
	"io"

	"feedview/internal/config"
	"feedview/internal/feed"
	"feedview/internal/logger"
)

func loadSettings(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil && !errors.Is(err, config.ErrEmptyPath) {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return config.ApplyKVOverrides(cfg, flags.overrides), nil
}

// setupLogging 按 [log] 设置级别并把全局日志重定向到 path。
// 文件打不开时继续运行，返回 nil。
func setupLogging(cfg config.Config) io.Closer {
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warnf("ignore log level %q: %v", cfg.Log.Level, err)
	}
	closer, resolved, err := logger.SetupFile(cfg.Log.Path)
	if err != nil {
		log.Warnf("failed to initialize log file: %v", err)
		return nil
	}
	log.WithField("path", resolved).Debug("log file ready")
	return closer
}

// buildSource 按 [source].kind 构造内容来源。
func buildSource(cfg config.Config) (feed.Source, error) {
	src := cfg.Source
	memOpts := feed.MemoryOptions{Latency: cfg.Latency(), FailEvery: src.FailEvery}
	switch src.Kind {
	case "", config.SourceMemory:
		return feed.NewMemorySource(feed.Generate(src.Generate, src.Seed), memOpts), nil
	case config.SourceFile:
		blocks, err := feed.LoadBlocks(src.Path)
		if err != nil {
			return nil, err
		}
		return feed.NewMemorySource(blocks, memOpts), nil
	case config.SourceHTTP:
		return feed.NewHTTPSource(feed.HTTPOptions{
			BaseURL: src.URL,
			Retries: src.Retries,
			Timeout: cfg.Timeout(),
		})
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}
