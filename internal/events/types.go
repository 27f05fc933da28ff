package events

import (
	"fmt"
	"time"
)

// Type 标识 feed 事件的种类。
type Type string

const (
	TypeWindowChanged Type = "window.changed"
	TypePageRequested Type = "page.requested"
	TypePageLoaded    Type = "page.loaded"
	TypePageFailed    Type = "page.failed"
	TypeSequenceReset Type = "sequence.reset"
	TypeLayoutReset   Type = "layout.reset"
)

// Event 是 EQ 中传递的一条事件。
type Event struct {
	Type    Type
	Epoch   uint64
	Time    time.Time
	Payload any
}

// WindowChanged 记录重算后的可见区间。
type WindowChanged struct {
	Start int
	End   int
}

// PageRequested 记录一次分页派发。
type PageRequested struct {
	Loaded int
}

// PageLoaded 记录一次成功加载。
type PageLoaded struct {
	Added   int
	Total   int
	HasMore bool
	Elapsed time.Duration
}

// PageFailed 记录一次失败的加载，错误以文本保存。
type PageFailed struct {
	Err     string
	Elapsed time.Duration
}

// SequenceReset 记录一次序列替换。
type SequenceReset struct {
	Query string
	Items int
}

// LayoutReset 记录从某个索引开始的测量丢弃。
type LayoutReset struct {
	From int
}

// New 构造带时间戳的事件。
func New(typ Type, epoch uint64, payload any) Event {
	return Event{Type: typ, Epoch: epoch, Time: time.Now(), Payload: payload}
}

func (e Event) String() string {
	return fmt.Sprintf("%s(epoch=%d)", e.Type, e.Epoch)
}
