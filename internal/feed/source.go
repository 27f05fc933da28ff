package feed

import (
	"context"

	"feedview/internal/logger"
	"feedview/internal/virtual"
)

var log = logger.Named("feed")

// Query 描述一次分页请求。
type Query struct {
	Text   string
	Offset int
	Limit  int
}

// Result 是一页数据。
type Result struct {
	Blocks  []Block
	HasMore bool
}

// Source 是分页内容来源。
type Source interface {
	Fetch(ctx context.Context, q Query) (Result, error)
}

// Cursor 把 Source 与查询绑定为一个会话内的 virtual.Loader。
// 偏移只在成功后前进；引擎保证同一时间只有一个 LoadMore 在途。
type Cursor struct {
	source Source
	query  string
	limit  int
	offset int
}

// NewCursor 创建从头开始的游标。
func NewCursor(source Source, query string, limit int) *Cursor {
	if limit <= 0 {
		limit = 20
	}
	return &Cursor{source: source, query: query, limit: limit}
}

// Query 返回游标绑定的查询文本。
func (c *Cursor) Query() string {
	return c.query
}

// Offset 返回下一次请求的偏移。
func (c *Cursor) Offset() int {
	return c.offset
}

// LoadMore 实现 virtual.Loader。
func (c *Cursor) LoadMore(ctx context.Context) (virtual.Page, error) {
	res, err := c.source.Fetch(ctx, Query{Text: c.query, Offset: c.offset, Limit: c.limit})
	if err != nil {
		log.WithField("query", c.query).WithField("offset", c.offset).Warnf("fetch page failed: %v", err)
		return virtual.Page{}, err
	}
	c.offset += len(res.Blocks)
	items := make([]virtual.Item, 0, len(res.Blocks))
	for _, b := range res.Blocks {
		items = append(items, b)
	}
	return virtual.Page{Items: items, HasMore: res.HasMore}, nil
}
