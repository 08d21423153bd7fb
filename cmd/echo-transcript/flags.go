package main

import "strings"

// stringSlice 收集可重复的参数，例如多次 -c。
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// csvSlice 既可重复出现也接受逗号分隔，用于 --file a.wav,b.wav。
type csvSlice []string

func (s *csvSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *csvSlice) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			*s = append(*s, trimmed)
		}
	}
	return nil
}
