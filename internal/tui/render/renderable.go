package render

import "github.com/charmbracelet/lipgloss"

// Renderable 统一的可渲染抽象。DesiredHeight 必须与 Render 实际写出的行数一致，
// 虚拟列表依赖它回报测量高度。
type Renderable interface {
	Render(area Rect, buf *Buffer)
	DesiredHeight(width int) int
}

// StaticLines 用于包装已准备好的行。
type StaticLines []Line

func (s StaticLines) Render(area Rect, buf *Buffer) {
	lines := []Line(s)
	if area.Height > 0 && len(lines) > area.Height {
		lines = lines[:area.Height]
	}
	buf.WriteLines(lines...)
}

func (s StaticLines) DesiredHeight(int) int {
	return len(s)
}

// ColumnRenderable 垂直堆叠子元素。
type ColumnRenderable struct {
	children []Renderable
}

// NewColumn 创建空列。
func NewColumn() *ColumnRenderable {
	return &ColumnRenderable{children: []Renderable{}}
}

// Push 添加子元素。
func (c *ColumnRenderable) Push(child Renderable) {
	if c == nil || child == nil {
		return
	}
	c.children = append(c.children, child)
}

// Render 依次渲染子元素。
func (c *ColumnRenderable) Render(area Rect, buf *Buffer) {
	if c == nil {
		return
	}
	y := area.Y
	for _, child := range c.children {
		height := child.DesiredHeight(area.Width)
		childArea := Rect{X: area.X, Y: y, Width: area.Width, Height: height}
		child.Render(childArea, buf)
		y += height
		if area.Height > 0 && y-area.Y >= area.Height {
			break
		}
	}
}

// DesiredHeight 返回所有子元素高度之和。
func (c *ColumnRenderable) DesiredHeight(width int) int {
	if c == nil {
		return 0
	}
	total := 0
	for _, child := range c.children {
		total += child.DesiredHeight(width)
	}
	return total
}

// InsetRenderable 为子元素应用内边距。左右内边距以空格填充，上下以空行填充。
type InsetRenderable struct {
	child  Renderable
	insets Insets
}

// NewInset 创建带内边距的 Renderable。
func NewInset(child Renderable, insets Insets) *InsetRenderable {
	return &InsetRenderable{child: child, insets: insets}
}

func (i *InsetRenderable) Render(area Rect, buf *Buffer) {
	if i == nil || i.child == nil {
		return
	}
	for range i.insets.Top {
		buf.WriteLine(Line{})
	}
	inner := &Buffer{}
	i.child.Render(area.Inset(i.insets), inner)
	pad := Span{Text: spaces(i.insets.Left)}
	for _, line := range inner.Lines {
		if i.insets.Left > 0 {
			line = Line{Spans: append([]Span{pad}, line.Spans...), Style: line.Style}
		}
		buf.WriteLine(line)
	}
	for range i.insets.Bottom {
		buf.WriteLine(Line{})
	}
}

func (i *InsetRenderable) DesiredHeight(width int) int {
	if i == nil || i.child == nil {
		return 0
	}
	childHeight := i.child.DesiredHeight(width - i.insets.Left - i.insets.Right)
	return childHeight + i.insets.Top + i.insets.Bottom
}

// PlainTextRenderable 渲染按宽度换行的文本。
type PlainTextRenderable struct {
	Text  string
	Style lipgloss.Style
	// MaxLines 大于 0 时截断多余行，最后一行以省略号结尾。
	MaxLines int
}

func (p PlainTextRenderable) Render(area Rect, buf *Buffer) {
	for _, line := range p.lines(area.Width) {
		buf.WriteLine(Line{Spans: []Span{{Text: line, Style: p.Style}}})
	}
}

func (p PlainTextRenderable) DesiredHeight(width int) int {
	return len(p.lines(width))
}

func (p PlainTextRenderable) lines(width int) []string {
	if width <= 0 {
		width = len(p.Text)
	}
	lines := wrapText(p.Text, width)
	if p.MaxLines > 0 && len(lines) > p.MaxLines {
		lines = lines[:p.MaxLines]
		last := lines[len(lines)-1]
		lines[len(lines)-1] = Truncate(last+" …", width)
	}
	return lines
}
