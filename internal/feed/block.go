package feed

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind 区分内容块的类型，决定卡片的渲染方式。
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindPoll  Kind = "poll"
	KindLink  Kind = "link"
)

// Block 是 feed 中的一个内容块。虚拟列表只使用 ID()。
type Block struct {
	BlockID   string    `toml:"id" json:"id"`
	Kind      Kind      `toml:"kind" json:"kind"`
	Author    string    `toml:"author" json:"author"`
	Title     string    `toml:"title" json:"title"`
	Body      string    `toml:"body" json:"body"`
	URL       string    `toml:"url" json:"url,omitempty"`
	Options   []string  `toml:"options" json:"options,omitempty"`
	CreatedAt time.Time `toml:"created_at" json:"created_at"`
}

// ID 实现 virtual.Item。
func (b Block) ID() string {
	return b.BlockID
}

// SearchText 返回参与模糊匹配的文本。
func (b Block) SearchText() string {
	parts := []string{b.Title, b.Author, b.Body}
	parts = append(parts, b.Options...)
	return strings.ToLower(strings.Join(parts, " "))
}

// normalize 补齐缺失的 id 与 kind。
func (b Block) normalize() Block {
	if strings.TrimSpace(b.BlockID) == "" {
		b.BlockID = uuid.NewString()
	}
	switch b.Kind {
	case KindText, KindImage, KindPoll, KindLink:
	default:
		switch {
		case len(b.Options) > 0:
			b.Kind = KindPoll
		case b.URL != "":
			b.Kind = KindLink
		default:
			b.Kind = KindText
		}
	}
	return b
}
