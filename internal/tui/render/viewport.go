package render

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
)

// WindowViewport 包装 bubbles viewport，只承载当前窗口内实例化的行。
// 内容的第 0 行对应滚动轨道上的 top 偏移。
type WindowViewport struct {
	viewport.Model
	lastLines []string
	top       int
}

// NewWindowViewport 创建视口。
func NewWindowViewport(width, height int) WindowViewport {
	return WindowViewport{Model: viewport.New(width, height)}
}

// Resize 更新宽高，返回宽度是否变化。
func (v *WindowViewport) Resize(width, height int) bool {
	if v == nil {
		return false
	}
	widthChanged := v.Width != width
	v.Width = width
	v.Height = height
	if widthChanged {
		v.Invalidate()
	}
	return widthChanged
}

// Present 放置从 top 开始的窗口内容，并把视口对齐到轨道上的 scroll 偏移。
func (v *WindowViewport) Present(top int, lines []string, scroll int) {
	if v == nil {
		return
	}
	if top != v.top || !slices.Equal(lines, v.lastLines) {
		v.top = top
		v.lastLines = append([]string(nil), lines...)
		v.SetContent(strings.Join(lines, "\n"))
	}
	v.SetYOffset(max(scroll-top, 0))
}

// Top 返回内容首行在滚动轨道上的偏移。
func (v *WindowViewport) Top() int {
	return v.top
}

// Invalidate 清空已缓存的行，强制下次 Present 全量更新。
func (v *WindowViewport) Invalidate() {
	if v == nil {
		return
	}
	v.lastLines = nil
}
