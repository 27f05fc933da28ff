package tui

// termSurface 把终端窗口尺寸变化适配为引擎的承载面。
type termSurface struct {
	width, height int
	listeners     map[int]func(width, height float64)
	next          int
}

func newTermSurface() *termSurface {
	return &termSurface{listeners: make(map[int]func(width, height float64))}
}

func (s *termSurface) Size() (float64, float64) {
	return float64(s.width), float64(s.height)
}

func (s *termSurface) OnResize(fn func(width, height float64)) func() {
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// set 更新尺寸并通知订阅者；尺寸未变时不通知。
func (s *termSurface) set(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	for _, fn := range s.listeners {
		fn(float64(width), float64(height))
	}
}
