package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"echo-transcript/internal/features"
	"echo-transcript/internal/session"
	"echo-transcript/internal/tui"
)

func watchMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var src sourceArgs
	var save bool
	var noAltScreen bool
	var exitOnDone bool
	src.register(fs)
	fs.BoolVar(&save, "save", false, "Save the transcript to ~/.echo/transcripts on exit")
	fs.BoolVar(&noAltScreen, "no-alt-screen", false, "Render inline instead of using the alternate screen")
	fs.BoolVar(&exitOnDone, "exit-on-done", false, "Quit once the source ends and the animation settles")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse watch args: %v", err)
	}

	cfg, err := loadConfig(root, &src)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if save {
		cfg.UI.Save = true
	}
	if noAltScreen {
		cfg.UI.AltScreen = false
	}
	if err := checkInteractiveStdin(cfg, stdinIsTerminal()); err != nil {
		log.Fatalf("%v", err)
	}
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	result, err := tui.Run(ctx, transcriptSource, tui.Options{
		Delay:      cfg.RevealDelay(),
		Separator:  cfg.Separator(),
		Features:   set,
		ExitOnDone: exitOnDone,
		AltScreen:  cfg.UI.AltScreen,
	})
	if err != nil {
		log.Fatalf("program exit: %v", err)
	}
	if result.SourceErr != nil {
		fmt.Fprintf(os.Stderr, "source failed: %v\n", result.SourceErr)
	}
	if shouldSave(cfg, set) {
		saveTranscript(store, transcriptSource.Name(), result.Segments)
	}
	if result.SourceErr != nil {
		os.Exit(1)
	}
}
