package events

import "sync"

// Tally 按类型统计事件，供 simulate 汇总输出。
type Tally struct {
	mu     sync.Mutex
	counts map[Type]int
	last   map[Type]Event
	done   chan struct{}
}

// Watch 在独立 goroutine 中消费订阅通道，直到通道关闭。
func Watch(ch <-chan Event) *Tally {
	t := &Tally{
		counts: make(map[Type]int),
		last:   make(map[Type]Event),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		for ev := range ch {
			t.mu.Lock()
			t.counts[ev.Type]++
			t.last[ev.Type] = ev
			t.mu.Unlock()
		}
	}()
	return t
}

// Wait 阻塞到订阅通道关闭。
func (t *Tally) Wait() {
	<-t.done
}

// Count 返回某类事件的数量。
func (t *Tally) Count(typ Type) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[typ]
}

// Last 返回某类事件最近的一条。
func (t *Tally) Last(typ Type) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev, ok := t.last[typ]
	return ev, ok
}
