package search

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// AudioExtensions 是转写接口接受的音频格式。
var AudioExtensions = []string{".flac", ".m4a", ".mp3", ".mp4", ".mpeg", ".mpga", ".ogg", ".wav", ".webm"}

// FindFiles returns up to limit paths under root whose extension is in exts,
// sorted, skipping hidden and common vendor directories. An empty exts
// accepts every file. Returned paths are joined with root.
func FindFiles(root string, limit int, exts ...string) ([]string, error) {
	if limit <= 0 {
		limit = 200
	}
	accept := make(map[string]bool, len(exts))
	for _, ext := range exts {
		accept[strings.ToLower(ext)] = true
	}
	paths := make([]string, 0, 16)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if len(accept) > 0 && !accept[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)
		if len(paths) >= limit {
			return fs.SkipAll
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}
