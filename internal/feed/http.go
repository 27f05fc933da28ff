package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"feedview/internal/logger"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrBadStatus 表示分页接口返回了非 2xx 状态码。
var ErrBadStatus = errors.New("feed: unexpected status")

// HTTPOptions 配置 REST 分页来源。
type HTTPOptions struct {
	BaseURL string
	Retries int
	Timeout time.Duration
	Log     *logger.LogEntry
}

// HTTPSource 通过 GET <base>?q=&offset=&limit= 拉取分页，响应为
// {"items": [...], "has_more": true}。
type HTTPSource struct {
	base   *url.URL
	client *retryablehttp.Client
}

type pageResponse struct {
	Items   []Block `json:"items"`
	HasMore bool    `json:"has_more"`
}

// NewHTTPSource 创建带重试的 HTTP 来源。
func NewHTTPSource(opts HTTPOptions) (*HTTPSource, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("feed: http source needs a base url")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	entry := opts.Log
	if entry == nil {
		entry = logger.Named("feed-http")
	}
	client := retryablehttp.NewClient()
	client.RetryMax = max(opts.Retries, 0)
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 3 * time.Second
	client.Logger = retryLogger{entry: entry}
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}
	return &HTTPSource{base: base, client: client}, nil
}

// Fetch 实现 Source。
func (s *HTTPSource) Fetch(ctx context.Context, q Query) (Result, error) {
	u := *s.base
	values := u.Query()
	if q.Text != "" {
		values.Set("q", q.Text)
	}
	values.Set("offset", strconv.Itoa(max(q.Offset, 0)))
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	u.RawQuery = values.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("%w: %d %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Result{}, fmt.Errorf("decode page: %w", err)
	}
	blocks := make([]Block, 0, len(page.Items))
	for _, b := range page.Items {
		blocks = append(blocks, b.normalize())
	}
	return Result{Blocks: blocks, HasMore: page.HasMore}, nil
}

// retryLogger 把 retryablehttp.LeveledLogger 接到 logrus。
type retryLogger struct {
	entry *logger.LogEntry
}

func (l retryLogger) with(keysAndValues []any) *logger.LogEntry {
	fields := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l retryLogger) Error(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Error(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Debug(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Debug(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...any) {
	l.with(keysAndValues).Warn(msg)
}
