package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"echo-transcript/internal/config"
	"echo-transcript/internal/features"
)

func featuresMain(root rootArgs, args []string) {
	var overrides stringSlice
	var cfgPath string
	fs := flag.NewFlagSet("features", flag.ExitOnError)
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.echo/transcript.toml)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse features args: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, prependOverrides(root.overrides, []string(overrides)))
	printFeatures(os.Stdout, features.Resolve(cfg.Features))
}

func printFeatures(out io.Writer, set features.Set) {
	for _, spec := range features.Specs {
		fmt.Fprintf(out, "%s\t%s\t%t\n", spec.Key, spec.Stage, set.Enabled(spec.Key))
	}
}
