package virtual

// Surface 是宿主提供的承载面：可读取当前尺寸并订阅尺寸变化。
type Surface interface {
	Size() (width, height float64)
	// OnResize 注册回调并返回取消订阅函数。
	OnResize(fn func(width, height float64)) (cancel func())
}

// Viewport 是滚动位置与容器尺寸的快照。
type Viewport struct {
	ScrollOffset float64
	Width        float64
	Height       float64
}

// Attached 判断承载面是否已有可用尺寸。
func (v Viewport) Attached() bool {
	return v.Width > 0 && v.Height > 0
}

// DimensionObserver 持有 Viewport 状态，只被尺寸和滚动通知修改。
type DimensionObserver struct {
	state Viewport
}

// Resize 更新容器尺寸，负值按 0 处理。返回宽、高是否变化。
func (d *DimensionObserver) Resize(width, height float64) (widthChanged, heightChanged bool) {
	width = max(width, 0)
	height = max(height, 0)
	widthChanged = d.state.Width != width
	heightChanged = d.state.Height != height
	d.state.Width = width
	d.state.Height = height
	return widthChanged, heightChanged
}

// ScrollTo 将滚动偏移钳制到 [0, max(0, total-height)]，返回偏移是否变化。
func (d *DimensionObserver) ScrollTo(offset, total float64) bool {
	maxOffset := max(total-d.state.Height, 0)
	offset = min(max(offset, 0), maxOffset)
	if offset == d.state.ScrollOffset {
		return false
	}
	d.state.ScrollOffset = offset
	return true
}

// State 返回当前快照。
func (d *DimensionObserver) State() Viewport {
	return d.state
}

// Attached 判断容器是否已挂载且尺寸非零。
func (d *DimensionObserver) Attached() bool {
	return d.state.Attached()
}
