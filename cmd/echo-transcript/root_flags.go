package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"echo-transcript/internal/features"
)

type rootArgs struct {
	overrides []string
}

func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("echo-transcript", flag.ContinueOnError)
	var overrides stringSlice
	var enable stringSlice
	var disable stringSlice
	fs.Var(&overrides, "c", "Override config value key=value (repeatable, applied before subcommand overrides)")
	fs.Var(&enable, "enable", "Enable a feature (repeatable). Equivalent to -c features.<name>=true")
	fs.Var(&disable, "disable", "Disable a feature (repeatable). Equivalent to -c features.<name>=false")
	fs.SetOutput(io.Discard)
	head, rest := splitRootArgs(args)
	if err := fs.Parse(head); err != nil {
		return rootArgs{}, nil, err
	}

	featureOverrides, err := buildFeatureOverrides(enable, disable)
	if err != nil {
		return rootArgs{}, nil, err
	}
	all := append([]string{}, overrides...)
	all = append(all, featureOverrides...)
	return rootArgs{overrides: all}, rest, nil
}

// splitRootArgs 取出开头的根参数，遇到其他参数即停止，其余原样交给子命令。
func splitRootArgs(args []string) ([]string, []string) {
	i := 0
	for i < len(args) {
		name := strings.TrimLeft(args[i], "-")
		if name == args[i] {
			break
		}
		key, _, hasValue := strings.Cut(name, "=")
		switch key {
		case "c", "enable", "disable":
		default:
			return args[:i], args[i:]
		}
		i++
		if !hasValue && i < len(args) {
			i++
		}
	}
	return args[:i], args[i:]
}

func prependOverrides(root []string, overrides []string) []string {
	merged := append([]string{}, root...)
	return append(merged, overrides...)
}

func buildFeatureOverrides(enable []string, disable []string) ([]string, error) {
	var overrides []string
	for _, key := range enable {
		if !features.IsKnown(key) {
			return nil, fmt.Errorf("unknown feature flag: %s", key)
		}
		overrides = append(overrides, fmt.Sprintf("features.%s=%t", key, true))
	}
	for _, key := range disable {
		if !features.IsKnown(key) {
			return nil, fmt.Errorf("unknown feature flag: %s", key)
		}
		overrides = append(overrides, fmt.Sprintf("features.%s=%t", key, false))
	}
	return overrides, nil
}
