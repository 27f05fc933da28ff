package virtual

import (
	"fmt"
	"sort"
)

// Window 是需要实例化的连续行区间，Start 与 End 都包含在内。
// End < Start 表示空窗口。
type Window struct {
	Start int
	End   int
}

// EmptyWindow 表示不渲染任何行。
var EmptyWindow = Window{Start: 0, End: -1}

// Empty 判断窗口是否为空。
func (w Window) Empty() bool {
	return w.End < w.Start
}

// Len 返回窗口内的行数。
func (w Window) Len() int {
	if w.Empty() {
		return 0
	}
	return w.End - w.Start + 1
}

// Contains 判断 index 是否在窗口内。
func (w Window) Contains(index int) bool {
	return !w.Empty() && index >= w.Start && index <= w.End
}

func (w Window) String() string {
	if w.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%d, %d]", w.Start, w.End)
}

// ComputeWindow 计算可见区间并向两端扩展 overscan 行，结果钳制到 [0, rows-1]。
//
// 行 i 的跨度为 [OffsetOf(i), OffsetOf(i+1))，只要与闭区间
// [scrollOffset, scrollOffset+viewportHeight] 相交就会被包含。
// 更大的 scrollOffset 不会让 Start 变小，更大的 viewportHeight 不会让 End 变小。
func ComputeWindow(index *OffsetIndex, rows int, scrollOffset, viewportHeight float64, overscan int) Window {
	if index == nil || rows <= 0 || viewportHeight <= 0 {
		return EmptyWindow
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if overscan < 0 {
		overscan = 0
	}
	bottom := scrollOffset + viewportHeight

	first := sort.Search(rows, func(i int) bool {
		return index.OffsetOf(i+1) > scrollOffset
	})
	if first >= rows {
		first = rows - 1
	}
	last := sort.Search(rows, func(i int) bool {
		return index.OffsetOf(i) > bottom
	}) - 1
	if last < first {
		last = first
	}

	return Window{
		Start: max(0, first-overscan),
		End:   min(rows-1, last+overscan),
	}
}
