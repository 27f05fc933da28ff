package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FEEDVIEW_SOURCE_URL", "")
	t.Setenv("FEEDVIEW_LOG_LEVEL", "")
}

func TestDefault_Virtual(t *testing.T) {
	cfg := Default()
	if cfg.Virtual.Overscan != 3 {
		t.Fatalf("Default().Virtual.Overscan = %d, want 3", cfg.Virtual.Overscan)
	}
	if cfg.Virtual.Threshold != 5 {
		t.Fatalf("Default().Virtual.Threshold = %d, want 5", cfg.Virtual.Threshold)
	}
	if cfg.Source.Kind != SourceMemory {
		t.Fatalf("Default().Source.Kind = %q, want %q", cfg.Source.Kind, SourceMemory)
	}
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("cfg.Path = %q, want %q", cfg.Path, path)
	}
	if cfg.Virtual.PageSize != 20 {
		t.Fatalf("cfg.Virtual.PageSize = %d, want 20", cfg.Virtual.PageSize)
	}
}

func TestLoad_FromTOML(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`
[virtual]
overscan = 1
page_size = 8

[source]
kind = "file"
path = "blocks.toml"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Virtual.Overscan != 1 || cfg.Virtual.PageSize != 8 {
		t.Fatalf("cfg.Virtual = %+v, want overscan 1 page_size 8", cfg.Virtual)
	}
	// 未出现的键保持默认值
	if cfg.Virtual.Threshold != 5 {
		t.Fatalf("cfg.Virtual.Threshold = %d, want 5", cfg.Virtual.Threshold)
	}
	if cfg.Source.Kind != SourceFile || cfg.Source.Path != "blocks.toml" {
		t.Fatalf("cfg.Source = %+v", cfg.Source)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[virtual\noverscan ="), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load: expected error for invalid toml")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("FEEDVIEW_SOURCE_URL", "http://feed.test")
	t.Setenv("FEEDVIEW_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Kind != SourceHTTP || cfg.Source.URL != "http://feed.test" {
		t.Fatalf("cfg.Source = %+v, want http source", cfg.Source)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("cfg.Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestApplyKVOverrides(t *testing.T) {
	cfg := Default()
	got := ApplyKVOverrides(cfg, []string{
		"overscan=4",
		"virtual.page-size=10",
		"source.kind=HTTP",
		"threshold=-2",
		"garbage",
	})
	if got.Virtual.Overscan != 4 {
		t.Fatalf("Overscan = %d, want 4", got.Virtual.Overscan)
	}
	if got.Virtual.PageSize != 10 {
		t.Fatalf("PageSize = %d, want 10", got.Virtual.PageSize)
	}
	if got.Source.Kind != SourceHTTP {
		t.Fatalf("Source.Kind = %q, want %q", got.Source.Kind, SourceHTTP)
	}
	if got.Virtual.Threshold != 5 {
		t.Fatalf("Threshold = %d, want unchanged 5", got.Virtual.Threshold)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Virtual.Overscan = 7
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Virtual.Overscan != 7 {
		t.Fatalf("Overscan = %d, want 7", loaded.Virtual.Overscan)
	}
}

func TestEngineConversion(t *testing.T) {
	cfg := Default()
	cfg.Virtual.EstimateHeight = 4
	cfg.Virtual.FrameIntervalMS = 0

	ec := cfg.Engine()
	if ec.EstimateHeight != 4 || ec.Overscan != 3 || ec.Threshold != 5 {
		t.Fatalf("Engine() = %+v", ec)
	}
	if got := cfg.FrameInterval(); got != 16*time.Millisecond {
		t.Fatalf("FrameInterval() = %v, want 16ms", got)
	}
}

func TestTimeoutOverride(t *testing.T) {
	cfg := Default()
	if got := cfg.Timeout(); got != 10*time.Second {
		t.Fatalf("default Timeout() = %v, want 10s", got)
	}
	cfg = ApplyKVOverrides(cfg, []string{"source.timeout_ms=250"})
	if got := cfg.Timeout(); got != 250*time.Millisecond {
		t.Fatalf("Timeout() = %v, want 250ms", got)
	}
	cfg = ApplyKVOverrides(cfg, []string{"timeout_ms=-1"})
	if cfg.Source.TimeoutMS != 250 {
		t.Fatalf("negative override applied: %d", cfg.Source.TimeoutMS)
	}
}
