package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

const maxSearchResults = 8

type searchMatch struct {
	index      int
	text       string
	highlights []int
}

// searchState 是 "/" 打开的段落搜索框。
type searchState struct {
	active  bool
	input   textinput.Model
	matches []searchMatch
	cursor  int
}

func newSearchState() searchState {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "search transcript"
	input.CharLimit = 120
	return searchState{input: input}
}

func (s *searchState) open(segments []string) tea.Cmd {
	s.active = true
	s.input.SetValue("")
	s.cursor = 0
	s.matches = filterSegments(segments, "")
	return s.input.Focus()
}

func (s *searchState) close() {
	s.active = false
	s.input.Blur()
	s.input.SetValue("")
	s.matches = nil
	s.cursor = 0
}

func (s *searchState) update(msg tea.KeyMsg, segments []string) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.refresh(segments)
	return cmd
}

// refresh 在序列变化后重新计算匹配，并把光标限制在结果范围内。
func (s *searchState) refresh(segments []string) {
	if !s.active {
		return
	}
	s.matches = filterSegments(segments, s.input.Value())
	if s.cursor >= len(s.matches) {
		s.cursor = maxInt(0, len(s.matches)-1)
	}
}

func (s *searchState) move(delta int) {
	if len(s.matches) == 0 {
		return
	}
	s.cursor = (s.cursor + delta + len(s.matches)) % len(s.matches)
}

func (s *searchState) selected() (int, bool) {
	if s.cursor < 0 || s.cursor >= len(s.matches) {
		return 0, false
	}
	return s.matches[s.cursor].index, true
}

func (s *searchState) view() string {
	lines := []string{s.input.View()}
	if len(s.matches) == 0 {
		lines = append(lines, noticeStyle.Render("no matches"))
		return strings.Join(lines, "\n")
	}
	start := 0
	if s.cursor >= maxSearchResults {
		start = s.cursor - maxSearchResults + 1
	}
	end := min(len(s.matches), start+maxSearchResults)
	for i := start; i < end; i++ {
		m := s.matches[i]
		line := fmt.Sprintf("%3d  %s", m.index+1, highlight(m.text, m.highlights))
		if i == s.cursor {
			line = selectedStyle.Render("›") + line
		} else {
			line = " " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func filterSegments(segments []string, query string) []searchMatch {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		matches := make([]searchMatch, 0, len(segments))
		for i, seg := range segments {
			matches = append(matches, searchMatch{index: i, text: seg})
		}
		return matches
	}
	keys := make([]string, len(segments))
	for i, seg := range segments {
		keys[i] = strings.ToLower(seg)
	}
	results := fuzzy.Find(strings.ToLower(trimmed), keys)
	matches := make([]searchMatch, 0, len(results))
	for _, res := range results {
		matches = append(matches, searchMatch{
			index:      res.Index,
			text:       segments[res.Index],
			highlights: res.MatchedIndexes,
		})
	}
	return matches
}

// highlight 高亮 fuzzy 返回的字节下标。
func highlight(text string, idx []int) string {
	if len(idx) == 0 {
		return text
	}
	marked := make(map[int]bool, len(idx))
	for _, i := range idx {
		marked[i] = true
	}
	var b strings.Builder
	for i, r := range text {
		if marked[i] {
			b.WriteString(matchStyle.Render(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
