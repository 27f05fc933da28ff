package virtual

// FooterKind 决定合成页脚行显示什么。
type FooterKind int

const (
	// FooterNone 表示页脚占位但不显示内容。
	FooterNone FooterKind = iota
	// FooterLoading 表示正在加载更多。
	FooterLoading
	// FooterEnd 表示列表已到底。
	FooterEnd
)

func (k FooterKind) String() string {
	switch k {
	case FooterLoading:
		return "loading"
	case FooterEnd:
		return "end"
	default:
		return "none"
	}
}

// Row 是窗口中一行的实例化描述：第一阶段使用估算高度，宿主渲染后再回报测量值。
type Row struct {
	Index    int
	Offset   float64
	Height   float64
	Measured bool
	// Item 为 nil 时该行是合成页脚。
	Item   Item
	Footer FooterKind
}

// IsFooter 判断是否为合成页脚行。
func (r Row) IsFooter() bool {
	return r.Item == nil
}

// Content 返回 index 的内容：真实条目，或（index == Len() 时）页脚种类。
func (e *Engine) Content(index int) (Item, FooterKind, bool) {
	if index >= 0 && index < len(e.items) {
		return e.items[index], FooterNone, true
	}
	if index == len(e.items) && len(e.items) > 0 {
		return nil, e.footerKind(), true
	}
	return nil, FooterNone, false
}

func (e *Engine) footerKind() FooterKind {
	state := e.pager.State()
	switch {
	case state.Loading:
		return FooterLoading
	case !state.HasMore:
		return FooterEnd
	default:
		return FooterNone
	}
}

// Rows 实例化当前窗口内的所有行。宿主按 Offset 放置内容后调用 Report 回报真实高度。
func (e *Engine) Rows() []Row {
	if e.closed || e.window.Empty() {
		return nil
	}
	rows := make([]Row, 0, e.window.Len())
	for i := e.window.Start; i <= e.window.End; i++ {
		item, footer, ok := e.Content(i)
		if !ok {
			break
		}
		row := Row{
			Index:  i,
			Offset: e.offsets.OffsetOf(i),
			Height: e.offsets.RowHeight(i),
			Item:   item,
			Footer: footer,
		}
		if item == nil {
			row.Measured = true
		} else {
			_, row.Measured = e.heights.Measured(i)
		}
		rows = append(rows, row)
	}
	return rows
}

// Report 回报 index 渲染后的真实高度。页脚与越界索引被忽略，不可信测量由高度表拒绝。
// 返回 true 表示宿主需要安排一帧。
func (e *Engine) Report(index int, height float64) bool {
	if e.closed || index < 0 || index >= len(e.items) {
		return false
	}
	wasDirty := e.dirty
	if !e.heights.Set(index, height) {
		return false
	}
	return !wasDirty
}
