package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// CommandSource 在伪终端中运行外部识别程序，并按行协议解析它的输出。
// 使用 pty 是为了让子进程保持行缓冲，逐行刷新识别结果。
type CommandSource struct {
	Command string
	Workdir string
	Env     []string
}

func (s *CommandSource) Name() string {
	return "command"
}

func (s *CommandSource) Run(ctx context.Context, sink Sink) error {
	if strings.TrimSpace(s.Command) == "" {
		return fmt.Errorf("empty command")
	}
	// 不加载 profile/rc，stdout 只承载识别结果。
	cmd := exec.CommandContext(ctx, "bash", "--noprofile", "--norc", "-c", s.Command)
	if s.Workdir != "" {
		cmd.Dir = s.Workdir
	}
	if len(s.Env) > 0 {
		cmd.Env = s.Env
	}
	// pty 只接管为 nil 的标准流，stderr 单独写日志。
	stderr := &stderrLog{}
	cmd.Stderr = stderr
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start pty: %w", err)
	}
	defer ptmx.Close()

	lines := &LineSource{Label: s.Name(), Reader: ptmx}
	readErr := lines.Run(ctx, sink)
	// 子进程退出后读取 pty 主端会得到 EIO，这是正常的结束信号。
	if readErr != nil && isPTYClosed(readErr) {
		readErr = nil
	}

	waitErr := cmd.Wait()
	stderr.flush()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if readErr != nil {
		return readErr
	}
	if waitErr != nil {
		return fmt.Errorf("command failed: %w", waitErr)
	}
	return nil
}

func isPTYClosed(err error) bool {
	return errors.Is(err, syscall.EIO)
}

// stderrLog 按行把子进程的 stderr 写进日志。
type stderrLog struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *stderrLog) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// 不完整的行放回缓冲区等待后续输出。
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(line)
	}
	return len(p), nil
}

func (w *stderrLog) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *stderrLog) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return
	}
	log.WithField("stream", "stderr").Warn(line)
}
