package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"echo-transcript/internal/animator"
	"echo-transcript/internal/events"
	"echo-transcript/internal/features"
	"echo-transcript/internal/session"
	"echo-transcript/internal/source"
)

func replayMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	var src sourceArgs
	var frames bool
	var save bool
	src.register(fs)
	fs.BoolVar(&frames, "frames", false, "Print every animation frame on its own line")
	fs.BoolVar(&save, "save", false, "Save the transcript to ~/.echo/transcripts when the source ends")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse replay args: %v", err)
	}

	cfg, err := loadConfig(root, &src)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if save {
		cfg.UI.Save = true
	}
	// stdout 输出帧，日志只写文件。
	defer setupLogFile(cfg.Log.Path)()

	store, err := session.NewDefault()
	if err != nil {
		log.Warnf("transcript store unavailable: %v", err)
		store = nil
	}
	transcriptSource, err := buildSource(cfg, store, os.Stdin)
	if err != nil {
		log.Fatalf("build source: %v", err)
	}
	set := features.Resolve(cfg.Features)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	segments, err := runReplay(ctx, transcriptSource, replayOptions{
		Delay:     cfg.RevealDelay(),
		Separator: cfg.Separator(),
		Frames:    frames,
		Instant:   set.Enabled(features.InstantReveal),
	}, os.Stdout)
	if shouldSave(cfg, set) {
		saveTranscript(store, transcriptSource.Name(), segments)
	}
	if err != nil {
		log.Fatalf("replay failed: %v", err)
	}
}

type replayOptions struct {
	Delay     time.Duration
	Separator string
	Frames    bool
	Instant   bool
	// Scheduler 为空时使用真实计时器。
	Scheduler animator.Scheduler
}

// runReplay 在终端外驱动动画：来源快照送入 Driver，帧写到 out。
// 来源结束后等待动画定格再返回最后一次观测到的序列。
func runReplay(ctx context.Context, src source.Source, opts replayOptions, out io.Writer) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &frameWriter{out: out, frames: opts.Frames}
	settled := make(chan struct{}, 1)
	delay := opts.Delay
	if opts.Instant {
		delay = time.Nanosecond
	}
	driver := animator.NewDriver(animator.DriverOptions{
		Separator: opts.Separator,
		Delay:     delay,
		Scheduler: opts.Scheduler,
		OnFrame:   w.write,
		OnSettled: func(string) {
			select {
			case settled <- struct{}{}:
			default:
			}
		},
	})
	defer driver.Close()

	bus := events.NewBus()
	defer bus.Close()
	sub := bus.Subscribe()
	source.Start(ctx, src, bus)

	var last []string
	var srcErr error
loop:
	for {
		select {
		case <-ctx.Done():
			w.finish()
			return last, nil
		case ev, ok := <-sub:
			if !ok {
				break loop
			}
			switch ev.Type {
			case events.EventTranscriptUpdated:
				last = ev.Segments
				driver.Update(ev.Segments)
			case events.EventSourceFailed:
				srcErr = ev.Err
				break loop
			case events.EventSourceCompleted:
				break loop
			}
		}
	}

	for driver.Animating() {
		select {
		case <-settled:
		case <-ctx.Done():
			w.finish()
			return last, nil
		}
	}
	w.finish()
	return last, srcErr
}

// frameWriter 把帧写成增量输出：新帧延续已写内容时只补写新增部分，
// 否则换行后重写整帧。Frames 模式下每帧独占一行。
type frameWriter struct {
	mu      sync.Mutex
	out     io.Writer
	frames  bool
	written string
	dirty   bool
}

func (w *frameWriter) write(frame string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frames {
		fmt.Fprintf(w.out, "%q\n", frame)
		return
	}
	if rest, ok := strings.CutPrefix(frame, w.written); ok {
		if rest != "" {
			io.WriteString(w.out, rest)
			w.dirty = true
		}
		w.written = frame
		return
	}
	if w.dirty {
		io.WriteString(w.out, "\n")
	}
	io.WriteString(w.out, frame)
	w.written = frame
	w.dirty = frame != ""
}

func (w *frameWriter) finish() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.frames && w.dirty {
		io.WriteString(w.out, "\n")
		w.dirty = false
	}
}
