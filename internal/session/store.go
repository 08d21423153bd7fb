package session

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"lukechampine.com/blake3"
)

// Record 是一份保存下来的转写。
type Record struct {
	ID          string    `json:"id"`
	Source      string    `json:"source,omitempty"`
	Segments    []string  `json:"segments"`
	Fingerprint string    `json:"fingerprint"`
	Updated     time.Time `json:"updated"`
}

// Text 返回以 sep 拼接的全文。
func (r Record) Text(sep string) string {
	return strings.Join(r.Segments, sep)
}

// Store 把转写以 JSON 文件保存在 Dir 下。
type Store struct {
	Dir string
}

// DefaultDir 返回 ~/.echo/transcripts。
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".echo", "transcripts"), nil
}

func NewDefault() (*Store, error) {
	d, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: d}, nil
}

// Fingerprint 计算分段内容的 blake3 摘要，段边界参与计算。
func Fingerprint(segments []string) string {
	h := blake3.New(32, nil)
	for _, seg := range segments {
		_, _ = h.Write([]byte(seg))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) ensureDir() error {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return errors.New("transcript store dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

// Save 写入一份转写并返回它的 ID。内容相同的转写复用已有记录。
func (s *Store) Save(source string, segments []string) (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", err
	}
	fp := Fingerprint(segments)
	id := ""
	if existing, err := s.findByFingerprint(fp); err == nil {
		id = existing.ID
	}
	if id == "" {
		id = uuid.NewString()
	}
	rec := Record{ID: id, Source: source, Segments: segments, Fingerprint: fp, Updated: time.Now()}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript %s: %w", id, err)
	}
	return id, nil
}

// Load 读取指定 ID 的记录；ID 必须是 Save 生成的 UUID，不能是路径。
func (s *Store) Load(id string) (Record, error) {
	var rec Record
	if s == nil || s.Dir == "" {
		return rec, errors.New("transcript store dir is empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return rec, fmt.Errorf("invalid transcript id %q", id)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, id+".json"))
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode transcript %s: %w", id, err)
	}
	return rec, nil
}

// Last 返回最近更新的记录。
func (s *Store) Last() (Record, error) {
	records, err := s.List()
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("no transcripts found")
	}
	return records[0], nil
}

func (s *Store) ListIDs() ([]string, error) {
	if s == nil || s.Dir == "" {
		return nil, errors.New("transcript store dir is empty")
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, trimExt(e.Name()))
	}
	return ids, nil
}

// List returns records, newest first. Unreadable files are skipped.
func (s *Store) List() ([]Record, error) {
	ids, err := s.ListIDs()
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, id := range ids {
		rec, err := s.Load(id)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Updated.After(records[j].Updated)
	})
	return records, nil
}

func (s *Store) findByFingerprint(fp string) (Record, error) {
	records, err := s.List()
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if rec.Fingerprint == fp {
			return rec, nil
		}
	}
	return Record{}, fs.ErrNotExist
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
