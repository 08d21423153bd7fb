package events

import (
	"slices"
	"time"
)

// EventType 描述总线上分发的事件类型。
type EventType string

const (
	// EventTranscriptUpdated 携带一次完整的序列替换（不是增量）。
	EventTranscriptUpdated EventType = "transcript.updated"
	EventSourceCompleted   EventType = "source.completed"
	EventSourceFailed      EventType = "source.failed"
)

// Event 是总线上传递的唯一消息格式。
type Event struct {
	Type      EventType
	Source    string
	Segments  []string
	Err       error
	Timestamp time.Time
}

// Terminal 表示来源已经结束，之后不会再有更新。
func (e Event) Terminal() bool {
	return e.Type == EventSourceCompleted || e.Type == EventSourceFailed
}

// Updated 构造一条转写更新事件，segments 会被复制。
func Updated(source string, segments []string) Event {
	return Event{
		Type:      EventTranscriptUpdated,
		Source:    source,
		Segments:  slices.Clone(segments),
		Timestamp: time.Now(),
	}
}

// Finished 根据 err 构造完成或失败事件。
func Finished(source string, err error) Event {
	ev := Event{Type: EventSourceCompleted, Source: source, Timestamp: time.Now()}
	if err != nil {
		ev.Type = EventSourceFailed
		ev.Err = err
	}
	return ev
}
