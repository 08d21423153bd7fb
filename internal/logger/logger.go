package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogEntry 暴露底层类型，调用方无需直接引用 logrus。
type LogEntry = logrus.Entry

// DefaultLogPath 默认日志文件路径。
const DefaultLogPath = "logs/echo-transcript.log"

var rootLogger = logrus.StandardLogger()

// Configure 启用 caller 并切换到 PlainFormatter。
func Configure() {
	l := root()
	l.SetReportCaller(true)
	l.SetFormatter(PlainFormatter{})
}

// SetupFile 把全局日志追加写入 logPath（空串使用 DefaultLogPath），
// 返回文件 closer 与实际路径。界面或帧输出占用终端时日志只能走文件。
func SetupFile(logPath string) (io.Closer, string, error) {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("open log file: %w", err)
	}
	root().SetOutput(f)
	return f, logPath, nil
}

// Discard 丢弃全局日志，日志文件不可用时避免输出混进终端画面。
func Discard() {
	root().SetOutput(io.Discard)
}

// SetLevel 解析 debug/info/warn/error 等级别，空串保持不变。
func SetLevel(level string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	root().SetLevel(lvl)
	return nil
}

// SetRoot 替换全局 logger，nil 恢复为标准 logger。
func SetRoot(l *logrus.Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	rootLogger = l
}

// Named 返回带 component 字段的入口。
func Named(component string) *LogEntry {
	entry := logrus.NewEntry(root())
	if component == "" {
		return entry
	}
	return entry.WithField("component", component)
}

func root() *logrus.Logger {
	if rootLogger == nil {
		rootLogger = logrus.StandardLogger()
	}
	return rootLogger
}

// PlainFormatter 输出单行文本：caller [time] [LEVEL] [component] message k=v...
type PlainFormatter struct{}

func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return nil, nil
	}
	var b strings.Builder
	if caller := callerOf(entry); caller != "" {
		b.WriteString(caller)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] [%s]", entry.Time.UTC().Format(time.RFC3339Nano), strings.ToUpper(entry.Level.String()))
	if component, _ := entry.Data["component"].(string); component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	for _, k := range fieldKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func callerOf(entry *logrus.Entry) string {
	if entry.HasCaller() {
		return fmt.Sprintf("%s:%d", shortenFilePath(entry.Caller.File), entry.Caller.Line)
	}
	caller, _ := entry.Data["caller"].(string)
	return caller
}

// fieldKeys 返回排序后的字段名，component 与 caller 已单独输出。
func fieldKeys(fields logrus.Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "component" && k != "caller" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func shortenFilePath(file string) string {
	file = filepath.ToSlash(file)
	for _, marker := range []string{"/internal/", "/cmd/"} {
		if idx := strings.Index(file, marker); idx != -1 {
			return file[idx+1:]
		}
	}
	if _, rest, ok := strings.Cut(file, "/echo-transcript/"); ok {
		return rest
	}
	return filepath.Base(file)
}
