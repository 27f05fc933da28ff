package events

import (
	"encoding/json"
	"io"
	"strings"

	"feedview/internal/logger"
)

// DefaultLogPath 是 feed 事件日志的默认路径。
const DefaultLogPath = "logs/feed-events.log"

// log 复用全局 logger，标记事件组件。
var log = logger.Named("events")

// OpenLog 为 EQ 创建独立的文件 logger。失败时退回全局 logger 并返回 nil closer。
func OpenLog(path string) (*logger.LogEntry, io.Closer) {
	const component = "feed-events"
	if path == "" {
		return logger.Named(component), nil
	}
	entry, closer, _, err := logger.SetupComponentFile(component, path)
	if err != nil {
		log.Warnf("failed to set up %s log file (%s): %v", component, path, err)
		return logger.Named(component), nil
	}
	return entry, closer
}

func logEvent(entry *logger.LogEntry, event Event) {
	if entry == nil {
		return
	}
	fields := logger.Fields{
		"type":  string(event.Type),
		"epoch": event.Epoch,
	}
	if payload := encodePayload(event.Payload); payload != "" {
		fields["payload"] = payload
	}
	entry.WithFields(fields).Info("published feed event")
}

func encodePayload(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case error:
		return val.Error()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
