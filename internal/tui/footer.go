package tui

import (
	"fmt"
	"time"

	"feedview/internal/tui/render"
	"feedview/internal/virtual"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// FooterOptions 控制页脚组件的初始化。
type FooterOptions struct {
	// Height 是页脚固定占用的行数，与引擎的 FooterHeight 一致。
	Height int
	Clock  func() time.Time
}

// FooterWidget 渲染列表末尾的合成行：加载中（spinner + 计时）、到底标记或空白。
type FooterWidget struct {
	height  int
	kind    virtual.FooterKind
	since   time.Time
	spinner string
	clock   func() time.Time
}

// NewFooterWidget 构造页脚组件，默认处于 FooterNone。
func NewFooterWidget(opts FooterOptions) *FooterWidget {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &FooterWidget{height: max(opts.Height, 0), clock: clock}
}

// SetKind 切换页脚状态，进入加载态时重置计时。
func (w *FooterWidget) SetKind(kind virtual.FooterKind) {
	if w == nil || w.kind == kind {
		return
	}
	if kind == virtual.FooterLoading {
		w.since = w.clock()
	}
	w.kind = kind
}

// Kind 返回当前状态。
func (w *FooterWidget) Kind() virtual.FooterKind {
	if w == nil {
		return virtual.FooterNone
	}
	return w.kind
}

// SetSpinnerFrame 更新加载态使用的 spinner 帧。
func (w *FooterWidget) SetSpinnerFrame(frame string) {
	if w == nil {
		return
	}
	w.spinner = frame
}

// ElapsedSeconds 返回本次加载已持续的秒数。
func (w *FooterWidget) ElapsedSeconds() uint64 {
	if w == nil || w.kind != virtual.FooterLoading {
		return 0
	}
	return uint64(w.clock().Sub(w.since).Seconds())
}

// DesiredHeight 满足 Renderable 接口，始终为固定高度。
func (w *FooterWidget) DesiredHeight(_ int) int {
	if w == nil {
		return 0
	}
	return w.height
}

// Render 绘制页脚，输出恰好 DesiredHeight 行。
func (w *FooterWidget) Render(area render.Rect, buf *render.Buffer) {
	if w == nil || buf == nil || w.height == 0 {
		return
	}
	lines := make([]render.Line, 0, w.height)
	if spans := w.spans(); len(spans) > 0 && area.Width > 0 {
		lines = append(lines, render.Line{Spans: clampSpans(spans, area.Width)})
	}
	for len(lines) < w.height {
		lines = append(lines, render.Line{})
	}
	buf.WriteLines(lines[:w.height]...)
}

func (w *FooterWidget) spans() []render.Span {
	faint := lipgloss.NewStyle().Faint(true)
	switch w.kind {
	case virtual.FooterLoading:
		frame := w.spinner
		if frame == "" {
			frame = "•"
		}
		return []render.Span{
			{Text: frame},
			{Text: " Loading more"},
			{Text: " "},
			{Text: fmt.Sprintf("(%s)", fmtElapsedCompact(w.ElapsedSeconds())), Style: faint},
		}
	case virtual.FooterEnd:
		return []render.Span{{Text: "· end of feed ·", Style: faint}}
	default:
		return nil
	}
}

// fmtElapsedCompact 将秒数格式化为友好字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		minutes := elapsedSecs / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dm %02ds", minutes, seconds)
	default:
		hours := elapsedSecs / 3600
		minutes := (elapsedSecs % 3600) / 60
		seconds := elapsedSecs % 60
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
}

func clampSpans(spans []render.Span, width int) []render.Span {
	if width <= 0 {
		return nil
	}
	remaining := width
	out := make([]render.Span, 0, len(spans))
	for _, sp := range spans {
		if remaining <= 0 {
			break
		}
		tw := runewidth.StringWidth(sp.Text)
		if tw <= remaining {
			out = append(out, sp)
			remaining -= tw
			continue
		}
		text := truncateToWidth(sp.Text, remaining)
		if text != "" {
			sp.Text = text
			out = append(out, sp)
			remaining = 0
		}
	}
	return out
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	w := 0
	out := make([]rune, 0, len(text))
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			break
		}
		out = append(out, r)
		w += rw
	}
	return string(out)
}
