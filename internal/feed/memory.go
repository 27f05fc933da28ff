package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"
)

// ErrInjectedFailure 是 MemorySource 按配置注入的失败。
var ErrInjectedFailure = errors.New("feed: injected page failure")

// MemoryOptions 控制内存来源的模拟行为。
type MemoryOptions struct {
	// Latency 是每次 Fetch 的模拟延迟，期间响应 ctx 取消。
	Latency time.Duration
	// FailEvery 大于 0 时每第 N 次调用返回 ErrInjectedFailure。
	FailEvery int
}

// MemorySource 在内存中分页，查询文本通过模糊匹配过滤并按得分排序。
type MemorySource struct {
	blocks []Block
	opts   MemoryOptions

	mu     sync.Mutex
	calls  int
	ranked map[string][]int
}

// NewMemorySource 创建内存来源，缺失 id 的块会被补齐。
func NewMemorySource(blocks []Block, opts MemoryOptions) *MemorySource {
	owned := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		owned = append(owned, b.normalize())
	}
	return &MemorySource{blocks: owned, opts: opts, ranked: map[string][]int{}}
}

// Len 返回来源中的块总数。
func (s *MemorySource) Len() int {
	return len(s.blocks)
}

// Calls 返回 Fetch 被调用的次数。
func (s *MemorySource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Fetch 实现 Source。
func (s *MemorySource) Fetch(ctx context.Context, q Query) (Result, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if s.opts.Latency > 0 {
		timer := time.NewTimer(s.opts.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if s.opts.FailEvery > 0 && call%s.opts.FailEvery == 0 {
		return Result{}, ErrInjectedFailure
	}

	order := s.match(q.Text)
	offset := min(max(q.Offset, 0), len(order))
	limit := q.Limit
	if limit <= 0 {
		limit = len(order)
	}
	end := min(offset+limit, len(order))
	out := make([]Block, 0, end-offset)
	for _, idx := range order[offset:end] {
		out = append(out, s.blocks[idx])
	}
	return Result{Blocks: out, HasMore: end < len(order)}, nil
}

// match 返回查询命中的块下标，结果按查询缓存，保证同一查询的分页顺序稳定。
func (s *MemorySource) match(query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.ranked[query]; ok {
		return order
	}
	var order []int
	if query == "" {
		order = make([]int, len(s.blocks))
		for i := range order {
			order[i] = i
		}
	} else {
		matches := fuzzy.FindFrom(query, searchIndex(s.blocks))
		order = make([]int, 0, len(matches))
		for _, m := range matches {
			order = append(order, m.Index)
		}
	}
	s.ranked[query] = order
	return order
}

// searchIndex 让块列表实现 fuzzy.Source。
type searchIndex []Block

func (s searchIndex) String(i int) string { return s[i].SearchText() }
func (s searchIndex) Len() int            { return len(s) }
