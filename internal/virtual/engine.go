package virtual

import (
	"fmt"

	"feedview/internal/logger"
)

var log = logger.Named("virtual")

// Item 是引擎唯一关心的条目属性：稳定的唯一标识。
type Item interface {
	ID() string
}

// Config 定义引擎的数值参数，单位由宿主决定（像素或终端行）。
type Config struct {
	EstimateHeight float64
	MinHeight      float64
	FooterHeight   float64
	Overscan       int
	Threshold      int
	PageSize       int
}

// DefaultConfig 返回默认参数：overscan 3、threshold 5。
func DefaultConfig() Config {
	return Config{
		EstimateHeight: 500,
		MinHeight:      20,
		FooterHeight:   80,
		Overscan:       3,
		Threshold:      5,
		PageSize:       20,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.EstimateHeight <= 0 {
		c.EstimateHeight = def.EstimateHeight
	}
	if c.MinHeight < 0 {
		c.MinHeight = 0
	}
	if c.FooterHeight < 0 {
		c.FooterHeight = 0
	}
	if c.Overscan < 0 {
		c.Overscan = def.Overscan
	}
	if c.Threshold < 0 {
		c.Threshold = def.Threshold
	}
	return c
}

// Options 构造 Engine 所需的依赖。
type Options struct {
	Config Config
	Loader Loader
	// Items 是初始序列。
	Items []Item
	// Exhausted 为 true 时初始序列被视为已完整，不再触发加载。
	Exhausted bool
	// OnWindowChange 在每次重算后窗口发生变化时调用。
	OnWindowChange func(Window)
	Log            *logger.LogEntry
}

// Sequence 描述一次重置后的新序列。Loader 为 nil 时沿用当前加载器。
type Sequence struct {
	Items   []Item
	HasMore bool
	Loader  Loader
}

// Frame 是一次合并后的重算结果。Fetch 非 nil 时宿主必须异步执行并把结果交回 Resolve。
type Frame struct {
	Window  Window
	Changed bool
	Fetch   *Fetch
}

// Engine 是单个 feed 会话的虚拟列表引擎。
// 所有方法都必须在同一个 goroutine（宿主事件循环）中调用，只有 Fetch.Run 可以在外部执行。
type Engine struct {
	cfg     Config
	items   []Item
	heights *HeightTable
	offsets *OffsetIndex
	dims    DimensionObserver
	pager   *Pager

	window   Window
	dirty    bool
	epoch    uint64
	closed   bool
	onWindow func(Window)
	unsub    func()
	log      *logger.LogEntry
}

// New 创建引擎。
func New(opts Options) *Engine {
	cfg := opts.Config.withDefaults()
	e := &Engine{
		cfg:      cfg,
		items:    append([]Item(nil), opts.Items...),
		window:   EmptyWindow,
		dirty:    true,
		onWindow: opts.OnWindowChange,
		log:      opts.Log,
	}
	if e.log == nil {
		e.log = log
	}
	var offsets *OffsetIndex
	e.heights = NewHeightTable(cfg.EstimateHeight, cfg.MinHeight, func(index int) {
		offsets.InvalidateFrom(index)
		e.markDirty()
	})
	offsets = NewOffsetIndex(e.heights.Get, cfg.FooterHeight)
	offsets.SetCount(len(e.items))
	e.offsets = offsets
	e.pager = NewPager(opts.Loader, cfg.Threshold, cfg.PageSize)
	if opts.Exhausted {
		e.pager.Reset(e.epoch, nil, false)
	}
	return e
}

// Config 返回生效的参数。
func (e *Engine) Config() Config {
	return e.cfg
}

// Mount 读取一次承载面尺寸并订阅后续尺寸变化。重复挂载会替换旧订阅。
func (e *Engine) Mount(surface Surface) {
	if e.closed || surface == nil {
		return
	}
	if e.unsub != nil {
		e.unsub()
	}
	e.Resize(surface.Size())
	e.unsub = surface.OnResize(func(width, height float64) {
		e.Resize(width, height)
	})
}

// Resize 处理容器尺寸变化。宽度变化会让换行后的高度全部失效。
// 返回 true 表示宿主需要安排一帧。
func (e *Engine) Resize(width, height float64) bool {
	if e.closed {
		return false
	}
	widthChanged, heightChanged := e.dims.Resize(width, height)
	if !widthChanged && !heightChanged {
		return false
	}
	wasDirty := e.dirty
	if widthChanged && e.heights.Len() > 0 {
		e.heights.ClearFrom(0)
	}
	e.clampScroll()
	e.dirty = true
	return !wasDirty
}

// ScrollTo 设置滚动偏移。返回 true 表示宿主需要安排一帧。
func (e *Engine) ScrollTo(offset float64) bool {
	if e.closed || !e.dims.ScrollTo(offset, e.offsets.TotalSize()) {
		return false
	}
	return e.Invalidate()
}

// ScrollBy 相对滚动。
func (e *Engine) ScrollBy(delta float64) bool {
	return e.ScrollTo(e.dims.State().ScrollOffset + delta)
}

// ScrollToIndex 把 index 对齐到视口顶部。
func (e *Engine) ScrollToIndex(index int) bool {
	return e.ScrollTo(e.offsets.OffsetOf(index))
}

// Viewport 返回当前视口快照。
func (e *Engine) Viewport() Viewport {
	return e.dims.State()
}

// Invalidate 标记需要重算。仅在本帧第一次标记时返回 true，宿主据此只安排一帧。
func (e *Engine) Invalidate() bool {
	if e.closed {
		return false
	}
	if e.dirty {
		return false
	}
	e.dirty = true
	return true
}

// Dirty 判断是否有待处理的重算。
func (e *Engine) Dirty() bool {
	return e.dirty
}

func (e *Engine) markDirty() {
	e.dirty = true
}

// Frame 执行一次合并后的窗口重算并评估分页。
// 没有待处理的变化时直接返回当前窗口。
func (e *Engine) Frame() Frame {
	if e.closed {
		return Frame{Window: EmptyWindow}
	}
	if !e.dirty {
		return Frame{Window: e.window}
	}
	e.dirty = false

	next := EmptyWindow
	attached := e.dims.Attached()
	if attached {
		e.clampScroll()
		vp := e.dims.State()
		next = ComputeWindow(e.offsets, e.offsets.Rows(), vp.ScrollOffset, vp.Height, e.cfg.Overscan)
	}
	frame := Frame{Window: next, Changed: next != e.window}
	e.window = next
	if frame.Changed {
		e.log.WithField("window", next.String()).WithField("epoch", e.epoch).Debug("window changed")
		if e.onWindow != nil {
			e.onWindow(next)
		}
	}
	if attached {
		frame.Fetch = e.pager.Evaluate(next.End, len(e.items))
		if frame.Fetch != nil {
			e.log.WithField("end", next.End).WithField("items", len(e.items)).WithField("epoch", e.epoch).Debug("load more dispatched")
		}
	}
	return frame
}

// Window 返回最近一次重算的窗口。
func (e *Engine) Window() Window {
	return e.window
}

// Resolve 把 Fetch 的结果交回引擎。epoch 不匹配的结果被静默丢弃并返回 nil。
// 加载失败时引擎回到 Idle 并把包装后的错误返回给宿主；失败不会标记重算，
// 重试只能由下一次滚动或 Invalidate 触发。
func (e *Engine) Resolve(f *Fetch, page Page, err error) error {
	if f == nil {
		return nil
	}
	if e.closed || f.epoch != e.epoch {
		e.log.WithField("fetch_epoch", f.epoch).WithField("epoch", e.epoch).Debug("stale page dropped")
		return nil
	}
	if !e.pager.State().Loading {
		return nil
	}
	e.pager.Settle(page, err)
	if err != nil {
		return fmt.Errorf("load more (epoch %d): %w", f.epoch, err)
	}
	if len(page.Items) > 0 {
		e.items = append(e.items, page.Items...)
		e.offsets.SetCount(len(e.items))
	}
	e.markDirty()
	e.log.WithField("added", len(page.Items)).WithField("items", len(e.items)).WithField("has_more", e.pager.State().HasMore).Debug("page applied")
	return nil
}

// Reset 原子地替换序列：推进 epoch、取消在途加载、清空高度表与偏移缓存、回到顶部。
func (e *Engine) Reset(seq Sequence) {
	if e.closed {
		return
	}
	e.epoch++
	e.items = append([]Item(nil), seq.Items...)
	e.heights.ClearFrom(0)
	e.offsets.SetCount(len(e.items))
	e.offsets.InvalidateFrom(0)
	e.pager.Reset(e.epoch, seq.Loader, seq.HasMore)
	e.dims.ScrollTo(0, 0)
	e.window = EmptyWindow
	e.markDirty()
	e.log.WithField("epoch", e.epoch).WithField("items", len(e.items)).Debug("sequence reset")
}

// ResetLayoutFrom 丢弃 index 及之后的测量，强制重新测量。
func (e *Engine) ResetLayoutFrom(index int) bool {
	if e.closed {
		return false
	}
	wasDirty := e.dirty
	e.heights.ClearFrom(index)
	e.dirty = true
	return !wasDirty
}

// Close 拆除引擎：取消订阅与在途加载，之后到达的结果全部丢弃。
func (e *Engine) Close() {
	if e.closed {
		return
	}
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
	e.epoch++
	e.pager.Reset(e.epoch, nil, false)
	e.closed = true
	e.window = EmptyWindow
}

// Closed 判断引擎是否已拆除。
func (e *Engine) Closed() bool {
	return e.closed
}

// Epoch 返回当前序列代数。
func (e *Engine) Epoch() uint64 {
	return e.epoch
}

// Len 返回真实条目数量。
func (e *Engine) Len() int {
	return len(e.items)
}

// Item 返回 index 处的条目。
func (e *Engine) Item(index int) (Item, bool) {
	if index < 0 || index >= len(e.items) {
		return nil, false
	}
	return e.items[index], true
}

// Pagination 返回分页状态。
func (e *Engine) Pagination() PaginationState {
	return e.pager.State()
}

// TotalSize 返回滚动轨道总高度。
func (e *Engine) TotalSize() float64 {
	return e.offsets.TotalSize()
}

// OffsetOf 返回 index 的起始偏移。
func (e *Engine) OffsetOf(index int) float64 {
	return e.offsets.OffsetOf(index)
}

// HeightOf 返回 index 当前使用的行高（测量值、估算值或页脚常量）。
func (e *Engine) HeightOf(index int) float64 {
	return e.offsets.RowHeight(index)
}

func (e *Engine) clampScroll() {
	vp := e.dims.State()
	e.dims.ScrollTo(vp.ScrollOffset, e.offsets.TotalSize())
}
