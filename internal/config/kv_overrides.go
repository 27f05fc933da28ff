package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
// Keys may be bare (overscan=4) or section-qualified (virtual.overscan=4).
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if idx := strings.LastIndex(key, "."); idx != -1 {
			key = key[idx+1:]
		}
		key = strings.ReplaceAll(key, "-", "_")
		val := strings.TrimSpace(parts[1])
		switch key {
		case "estimate_height", "estimate":
			setInt(&cfg.Virtual.EstimateHeight, val, 1)
		case "min_height":
			setInt(&cfg.Virtual.MinHeight, val, 0)
		case "footer_height":
			setInt(&cfg.Virtual.FooterHeight, val, 0)
		case "overscan":
			setInt(&cfg.Virtual.Overscan, val, 0)
		case "threshold":
			setInt(&cfg.Virtual.Threshold, val, 0)
		case "page_size":
			setInt(&cfg.Virtual.PageSize, val, 1)
		case "frame_interval_ms":
			setInt(&cfg.Virtual.FrameIntervalMS, val, 1)
		case "kind", "source":
			cfg.Source.Kind = strings.ToLower(val)
		case "path":
			cfg.Source.Path = val
		case "url":
			cfg.Source.URL = val
		case "generate":
			setInt(&cfg.Source.Generate, val, 0)
		case "seed":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				cfg.Source.Seed = n
			}
		case "latency_ms", "latency":
			setInt(&cfg.Source.LatencyMS, val, 0)
		case "fail_every":
			setInt(&cfg.Source.FailEvery, val, 0)
		case "retries":
			setInt(&cfg.Source.Retries, val, 0)
		case "timeout_ms", "timeout":
			setInt(&cfg.Source.TimeoutMS, val, 0)
		case "log_path":
			cfg.Log.Path = val
		case "events_path":
			cfg.Log.EventsPath = val
		case "level", "log_level":
			cfg.Log.Level = val
		}
	}
	return cfg
}

func setInt(dst *int, val string, floor int) {
	n, err := strconv.Atoi(val)
	if err != nil || n < floor {
		return
	}
	*dst = n
}
