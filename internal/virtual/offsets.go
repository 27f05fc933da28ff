package virtual

// OffsetIndex 由行高派生每行的起始偏移，用前缀缓存避免每次查询 O(n) 重算。
// 缓存只从第一个变化的索引开始向后丢弃，较小索引的偏移不会被重算。
//
// 行 [0, count) 是真实条目，行 count 是固定高度的合成页脚。
type OffsetIndex struct {
	heightOf     func(index int) float64
	footerHeight float64
	count        int
	// prefix[i] == OffsetOf(i)，len(prefix) 即已缓存的偏移数量。
	prefix []float64
}

// NewOffsetIndex 创建偏移索引。heightOf 通常是 HeightTable.Get。
func NewOffsetIndex(heightOf func(index int) float64, footerHeight float64) *OffsetIndex {
	if footerHeight < 0 {
		footerHeight = 0
	}
	return &OffsetIndex{heightOf: heightOf, footerHeight: footerHeight}
}

// Count 返回真实条目数量（不含页脚）。
func (o *OffsetIndex) Count() int {
	return o.count
}

// Rows 返回参与布局的总行数：非空序列时多一行页脚。
func (o *OffsetIndex) Rows() int {
	if o.count == 0 {
		return 0
	}
	return o.count + 1
}

// SetCount 更新条目数量。旧页脚所在索引之前的偏移保持有效。
func (o *OffsetIndex) SetCount(count int) {
	if count < 0 {
		count = 0
	}
	if count == o.count {
		return
	}
	from := min(o.count, count) + 1
	o.count = count
	o.InvalidateFrom(from)
}

// RowHeight 返回行高：页脚使用固定常量，其余读取高度表。
func (o *OffsetIndex) RowHeight(index int) float64 {
	if index == o.count {
		return o.footerHeight
	}
	return o.heightOf(index)
}

// OffsetOf 返回 index 起始位置的累计偏移，index 会被钳制到 [0, Rows()]。
func (o *OffsetIndex) OffsetOf(index int) float64 {
	if index <= 0 {
		return 0
	}
	if limit := o.count + 1; index > limit {
		index = limit
	}
	o.extend(index)
	return o.prefix[index]
}

// InvalidateFrom 丢弃 index 及之后的缓存偏移，index 之前的缓存保持不动。
func (o *OffsetIndex) InvalidateFrom(index int) {
	if index < 0 {
		index = 0
	}
	if index < len(o.prefix) {
		o.prefix = o.prefix[:index]
	}
}

// TotalSize 返回滚动轨道的总高度（含页脚）。
func (o *OffsetIndex) TotalSize() float64 {
	if o.count == 0 {
		return 0
	}
	return o.OffsetOf(o.count + 1)
}

// Cached 返回当前缓存的偏移数量，用于审计失效的局部性。
func (o *OffsetIndex) Cached() int {
	return len(o.prefix)
}

func (o *OffsetIndex) extend(index int) {
	if len(o.prefix) == 0 {
		o.prefix = append(o.prefix, 0)
	}
	for len(o.prefix) <= index {
		last := len(o.prefix) - 1
		o.prefix = append(o.prefix, o.prefix[last]+o.RowHeight(last))
	}
}
