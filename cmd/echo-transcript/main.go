package main

import (
	"os"

	"echo-transcript/internal/logger"
)

var log = logger.Named("cli")

func main() {
	logger.Configure()

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "watch":
			watchMain(root, rest[1:])
			return
		case "replay":
			replayMain(root, rest[1:])
			return
		case "sessions":
			sessionsMain(root, rest[1:])
			return
		case "features":
			featuresMain(root, rest[1:])
			return
		case "completion":
			completionMain(rest[1:])
			return
		}
	}

	watchMain(root, rest)
}

// setupLogFile 把日志写入文件；TUI 占用终端时 stdout/stderr 不能再写日志。
func setupLogFile(path string) func() {
	if path == "" {
		path = logger.DefaultLogPath
	}
	closer, resolved, err := logger.SetupFile(path)
	if err != nil {
		log.Warnf("failed to initialize log file (%s): %v", path, err)
		// 终端被界面或帧输出占用，丢弃后续日志。
		logger.Discard()
		return func() {}
	}
	log.WithField("path", resolved).Debug("logging to file")
	return func() { _ = closer.Close() }
}
