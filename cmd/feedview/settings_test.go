package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"feedview/internal/config"
	"feedview/internal/feed"
	"feedview/internal/logger"

	"github.com/sirupsen/logrus"
)

func TestLoadSettingsAppliesOverrides(t *testing.T) {
	t.Setenv("FEEDVIEW_SOURCE_URL", "")
	t.Setenv("FEEDVIEW_LOG_LEVEL", "")
	flags := &rootFlags{
		configPath: filepath.Join(t.TempDir(), "config.toml"),
		overrides:  []string{"overscan=1", "page_size=9"},
	}
	cfg, err := loadSettings(flags)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if cfg.Virtual.Overscan != 1 || cfg.Virtual.PageSize != 9 {
		t.Fatalf("cfg.Virtual = %+v", cfg.Virtual)
	}
}

func TestBuildSourceKinds(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Generate = 4
	src, err := buildSource(cfg)
	if err != nil {
		t.Fatalf("memory source: %v", err)
	}
	if mem, ok := src.(*feed.MemorySource); !ok || mem.Len() != 4 {
		t.Fatalf("memory source = %T", src)
	}

	path := filepath.Join(t.TempDir(), "blocks.toml")
	if err := os.WriteFile(path, []byte(`
[[blocks]]
id = "a"
body = "hello"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg.Source.Kind = config.SourceFile
	cfg.Source.Path = path
	src, err = buildSource(cfg)
	if err != nil {
		t.Fatalf("file source: %v", err)
	}
	if mem, ok := src.(*feed.MemorySource); !ok || mem.Len() != 1 {
		t.Fatalf("file source = %T", src)
	}

	cfg.Source.Kind = config.SourceHTTP
	cfg.Source.URL = "http://feed.test"
	if _, err := buildSource(cfg); err != nil {
		t.Fatalf("http source: %v", err)
	}

	cfg.Source.Kind = "carrier-pigeon"
	if _, err := buildSource(cfg); err == nil {
		t.Fatalf("expected error for unknown source kind")
	}
}

func TestRootCommandWritesConfiguredLogPath(t *testing.T) {
	t.Setenv("FEEDVIEW_SOURCE_URL", "")
	t.Setenv("FEEDVIEW_LOG_LEVEL", "")
	logger.SetRoot(logrus.New())
	t.Cleanup(func() { logger.SetRoot(nil) })

	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "run.log")
	flags := &rootFlags{}
	cmd := newRootCmd(flags)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--config", filepath.Join(dir, "config.toml"),
		"-c", "log_path=" + logPath,
		"-c", "log_level=debug",
		"version",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if flags.logFile == nil {
		t.Fatalf("log file was not opened")
	}
	if got := logger.Root().GetLevel(); got != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", got)
	}
	logger.Infof("written to configured path")
	if err := flags.logFile.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "written to configured path") {
		t.Fatalf("unexpected log content: %q", data)
	}
	if !strings.Contains(out.String(), "feedview "+Version) {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestBuildSourcePassesHTTPTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg = config.ApplyKVOverrides(cfg, []string{
		"kind=http",
		"url=" + srv.URL,
		"retries=0",
		"timeout_ms=20",
	})
	src, err := buildSource(cfg)
	if err != nil {
		t.Fatalf("buildSource: %v", err)
	}

	start := time.Now()
	if _, err := src.Fetch(context.Background(), feed.Query{Limit: 5}); err == nil {
		t.Fatalf("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("fetch took %v, timeout not applied", elapsed)
	}
}
