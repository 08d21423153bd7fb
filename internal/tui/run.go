package tui

import (
	"context"
	"errors"

	"echo-transcript/internal/events"
	"echo-transcript/internal/source"

	tea "github.com/charmbracelet/bubbletea"
)

// Result 返回 TUI 运行后的必要信息。
type Result struct {
	Segments []string
	Output   string
	// SourceErr 是来源失败的原因，UI 本身正常退出时也可能非空。
	SourceErr error
}

// Run 启动来源并封装 Bubble Tea 入口，退出时取消来源并关闭总线。
func Run(ctx context.Context, src source.Source, opts Options) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := events.NewBus()
	defer bus.Close()
	opts.Events = bus.Subscribe()
	if opts.SourceName == "" {
		opts.SourceName = src.Name()
	}
	source.Start(ctx, src, bus)

	programOptions := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen(), tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(New(opts), programOptions...)
	m, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return Result{}, err
	}
	tuiModel, ok := m.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	log.WithField("segments", len(tuiModel.Segments())).Info("tui exited")
	return Result{
		Segments:  tuiModel.Segments(),
		Output:    tuiModel.Output(),
		SourceErr: tuiModel.Err(),
	}, nil
}
