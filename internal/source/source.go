// Package source produces transcript snapshots from different inputs and
// publishes them as whole-sequence replacements.
package source

import (
	"context"
	"errors"

	"echo-transcript/internal/events"
	"echo-transcript/internal/logger"
)

var log = logger.Named("source")

// Sink 接收完整的序列快照。实现不能持有传入的切片。
type Sink func(segments []string)

// Source 是一个转写来源。Run 阻塞直到来源耗尽、出错或 ctx 取消。
type Source interface {
	Name() string
	Run(ctx context.Context, sink Sink) error
}

// Run 在当前 goroutine 中执行 src，把快照发布到总线，并以完成/失败事件收尾。
// ctx 取消视为正常结束。
func Run(ctx context.Context, src Source, bus *events.Bus) error {
	name := src.Name()
	entry := log.WithField("source", name)
	entry.Info("source started")

	updates := 0
	err := src.Run(ctx, func(segments []string) {
		updates++
		bus.Publish(events.Updated(name, segments))
	})
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		entry.WithField("updates", updates).Warnf("source failed: %v", err)
	} else {
		entry.WithField("updates", updates).Info("source completed")
	}
	bus.Publish(events.Finished(name, err))
	return err
}

// Start 在新的 goroutine 中执行 Run。
func Start(ctx context.Context, src Source, bus *events.Bus) {
	go func() {
		_ = Run(ctx, src, bus)
	}()
}
