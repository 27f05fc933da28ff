package virtual

import (
	"context"
	"errors"
)

// ErrNoLoader 表示 Fetch 没有可调用的加载器。
var ErrNoLoader = errors.New("virtual: no loader configured")

// Page 是一次加载的结果。
type Page struct {
	Items   []Item
	HasMore bool
}

// Loader 由宿主注入，负责取下一页。引擎保证同一时间最多只有一个调用在途。
type Loader interface {
	LoadMore(ctx context.Context) (Page, error)
}

// LoaderFunc 让函数实现 Loader。
type LoaderFunc func(ctx context.Context) (Page, error)

func (f LoaderFunc) LoadMore(ctx context.Context) (Page, error) {
	return f(ctx)
}

// PaginationState 是分页触发器对外暴露的状态。
type PaginationState struct {
	HasMore bool
	Loading bool
}

// Fetch 是一次已派发的加载，携带派发时的 epoch。
// Run 可以在任意 goroutine 执行，结果必须交回 Engine.Resolve。
type Fetch struct {
	epoch  uint64
	ctx    context.Context
	loader Loader
}

// Epoch 返回派发时的代数。
func (f *Fetch) Epoch() uint64 {
	if f == nil {
		return 0
	}
	return f.epoch
}

// Run 调用加载器。序列重置或引擎关闭后上下文会被取消。
func (f *Fetch) Run() (Page, error) {
	if f == nil || f.loader == nil {
		return Page{}, ErrNoLoader
	}
	return f.loader.LoadMore(f.ctx)
}

// Pager 是 Idle/Loading 两态的分页触发器。Loading 标志本身就是互斥手段。
type Pager struct {
	threshold int
	pageSize  int
	loader    Loader
	state     PaginationState

	cancel context.CancelFunc
	epoch  uint64
}

// NewPager 创建分页触发器，初始 hasMore 为 true。
func NewPager(loader Loader, threshold, pageSize int) *Pager {
	if threshold < 0 {
		threshold = 0
	}
	return &Pager{
		threshold: threshold,
		pageSize:  pageSize,
		loader:    loader,
		state:     PaginationState{HasMore: true},
	}
}

// State 返回当前分页状态。
func (p *Pager) State() PaginationState {
	return p.state
}

// Evaluate 在窗口重算后调用；满足条件时进入 Loading 并返回唯一的 Fetch，否则返回 nil。
func (p *Pager) Evaluate(endIndex, itemCount int) *Fetch {
	if p.loader == nil || !p.state.HasMore || p.state.Loading {
		return nil
	}
	if endIndex < itemCount-p.threshold {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state.Loading = true
	return &Fetch{epoch: p.epoch, ctx: ctx, loader: p.loader}
}

// Settle 结束在途加载并回到 Idle。成功时按页大小更新 hasMore，失败时保留原值。
func (p *Pager) Settle(page Page, err error) {
	p.state.Loading = false
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if err != nil {
		return
	}
	hasMore := page.HasMore
	if p.pageSize > 0 && len(page.Items) < p.pageSize {
		hasMore = false
	}
	p.state.HasMore = hasMore
}

// Reset 取消在途加载，推进 epoch，并用新的加载器与 hasMore 重新开始。
func (p *Pager) Reset(epoch uint64, loader Loader, hasMore bool) {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.epoch = epoch
	if loader != nil {
		p.loader = loader
	}
	p.state = PaginationState{HasMore: hasMore}
}
