package render

import (
	"fmt"
	"time"

	"feedview/internal/feed"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	authorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	linkStyle   = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#5FAFD7"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
)

// collapsedBodyLines 是折叠状态下正文最多显示的行数。
const collapsedBodyLines = 3

// Card 渲染一个 feed 内容块。卡片高度随宽度与折叠状态变化，末尾带一行分隔空行。
type Card struct {
	Block    feed.Block
	Expanded bool
	Focused  bool
	// Now 用于计算相对时间；零值时使用 time.Now。
	Now time.Time
}

// Render 写出卡片的所有行。
func (c Card) Render(area Rect, buf *Buffer) {
	buf.WriteLines(c.Lines(area.Width)...)
}

// DesiredHeight 返回给定宽度下的行数，与 Render 写出的行数一致。
func (c Card) DesiredHeight(width int) int {
	return len(c.Lines(width))
}

// Lines 按宽度生成卡片内容，首列为焦点标记。
func (c Card) Lines(width int) []Line {
	const gutter = 2
	inner := max(width-gutter, 1)

	buf := &Buffer{}
	c.content(inner).Render(Rect{Width: inner}, buf)
	mark := Span{Text: "  "}
	if c.Focused {
		mark = Span{Text: "▌ ", Style: focusStyle}
	}
	lines := make([]Line, 0, len(buf.Lines)+1)
	for _, line := range buf.Lines {
		lines = append(lines, Line{Spans: append([]Span{mark}, line.Spans...), Style: line.Style})
	}
	return append(lines, Line{})
}

func (c Card) content(width int) *ColumnRenderable {
	b := c.Block
	col := NewColumn()
	col.Push(StaticLines{c.header(width)})
	if b.Title != "" {
		col.Push(PlainTextRenderable{Text: b.Title, Style: titleStyle})
	}
	if b.Body != "" {
		body := PlainTextRenderable{Text: b.Body}
		if !c.Expanded {
			body.MaxLines = collapsedBodyLines
		}
		col.Push(body)
	}
	switch b.Kind {
	case feed.KindPoll:
		col.Push(pollOptions(b.Options))
	case feed.KindLink:
		if b.URL != "" {
			col.Push(PlainTextRenderable{Text: b.URL, Style: linkStyle})
		}
	case feed.KindImage:
		col.Push(NewInset(PlainTextRenderable{Text: "[image] " + b.URL, Style: dimStyle}, TLBR(0, 1, 0, 0)))
	}
	return col
}

func (c Card) header(width int) Line {
	author := Truncate(c.Block.Author, width)
	if author == "" {
		author = Truncate("anonymous", width)
	}
	meta := fmt.Sprintf(" · %s", c.Block.Kind)
	if !c.Block.CreatedAt.IsZero() {
		now := c.Now
		if now.IsZero() {
			now = time.Now()
		}
		meta += " · " + relativeAge(now.Sub(c.Block.CreatedAt))
	}
	return Line{Spans: []Span{
		{Text: author, Style: authorStyle},
		{Text: Truncate(meta, width-runewidth.StringWidth(author)), Style: metaStyle},
	}}
}

// pollOptions 渲染投票选项，续行与选项文本对齐。
type pollOptions []string

func (p pollOptions) Render(area Rect, buf *Buffer) {
	buf.WriteLines(p.lines(area.Width)...)
}

func (p pollOptions) DesiredHeight(width int) int {
	return len(p.lines(width))
}

func (p pollOptions) lines(width int) []Line {
	out := []Line{}
	for _, opt := range p {
		wrapped := wrapText(opt, max(width-2, 1))
		lines := make([]Line, 0, len(wrapped))
		for _, w := range wrapped {
			lines = append(lines, Line{Spans: []Span{{Text: w}}})
		}
		out = append(out, PrefixLines(lines, Span{Text: "○ ", Style: metaStyle}, Span{Text: "  "})...)
	}
	return out
}

func relativeAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
