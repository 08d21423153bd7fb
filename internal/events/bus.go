package events

import "sync"

// DefaultBuffer 每个订阅者的缓冲大小。
const DefaultBuffer = 32

// Bus is a small pub-sub for transcript events.
// Publishing never blocks: when a subscriber falls behind, its oldest queued
// event is dropped so the latest whole-sequence snapshot still gets through.
type Bus struct {
	mu     sync.Mutex
	subs   []chan Event
	buffer int
	closed bool
}

func NewBus() *Bus {
	return &Bus{buffer: DefaultBuffer}
}

// NewBusWithBuffer 指定订阅者缓冲大小，小于 1 时取 1。
func NewBusWithBuffer(n int) *Bus {
	if n < 1 {
		n = 1
	}
	return &Bus{buffer: n}
}

func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	ch := make(chan Event, b.buffer)
	b.subs = append(b.subs, ch)
	return ch
}

func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		for {
			select {
			case ch <- evt:
			default:
				select {
				case dropped := <-ch:
					log.WithField("type", string(dropped.Type)).Debug("subscriber lagging; dropped oldest event")
				default:
				}
				continue
			}
			break
		}
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		close(ch)
	}
	b.closed = true
}
