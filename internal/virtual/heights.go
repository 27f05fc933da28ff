package virtual

import "math"

// HeightTable 缓存每个索引最后一次测量的高度，未测量的索引返回估算值。
// 只在单个 goroutine 中使用，不加锁。
type HeightTable struct {
	estimate   float64
	minHeight  float64
	heights    map[int]float64
	invalidate func(index int)
}

// NewHeightTable 创建高度表；invalidate 在存储值变化时被调用（通常是 OffsetIndex.InvalidateFrom）。
func NewHeightTable(estimate, minHeight float64, invalidate func(index int)) *HeightTable {
	return &HeightTable{
		estimate:   estimate,
		minHeight:  minHeight,
		heights:    map[int]float64{},
		invalidate: invalidate,
	}
}

// Get 返回测量值，缺失时返回估算值。
func (t *HeightTable) Get(index int) float64 {
	if h, ok := t.heights[index]; ok {
		return h
	}
	return t.estimate
}

// Measured 返回索引的测量值以及是否存在。
func (t *HeightTable) Measured(index int) (float64, bool) {
	h, ok := t.heights[index]
	return h, ok
}

// Set 写入一次测量。非有限值、非正值或低于最小可信高度的测量直接丢弃。
// 仅当存储值发生变化时返回 true 并向后失效偏移。
func (t *HeightTable) Set(index int, height float64) bool {
	if index < 0 || !t.plausible(height) {
		return false
	}
	if prev, ok := t.heights[index]; ok && prev == height {
		return false
	}
	t.heights[index] = height
	if t.invalidate != nil {
		t.invalidate(index)
	}
	return true
}

// ClearFrom 删除 index 及其之后的所有测量，并失效对应偏移。
func (t *HeightTable) ClearFrom(index int) {
	if index < 0 {
		index = 0
	}
	if index == 0 {
		clear(t.heights)
	} else {
		for i := range t.heights {
			if i >= index {
				delete(t.heights, i)
			}
		}
	}
	if t.invalidate != nil {
		t.invalidate(index)
	}
}

// Len 返回已测量的条目数。
func (t *HeightTable) Len() int {
	return len(t.heights)
}

func (t *HeightTable) plausible(height float64) bool {
	if math.IsNaN(height) || math.IsInf(height, 0) {
		return false
	}
	return height > 0 && height >= t.minHeight
}
