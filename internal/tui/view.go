package tui

import (
	"strings"

	"echo-transcript/internal/features"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight = 3 // 圆角边框 + 一行标题
	footerHeight = 2 // 状态行 + 提示行
)

var (
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85")).Italic(true)
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85"))
	matchStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB454"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
)

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1).
	BorderForeground(lipgloss.Color("#FFB454"))

func renderHeader(source string, width int) string {
	left := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Render("Echo Transcript")
	right := lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85")).Render("Source " + source)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7D56F4")).
		Padding(0, 1).
		Width(maxInt(20, width-2)).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().PaddingLeft(2).Render(right)))
}

func renderPane(body string, width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5E6472")).
		Padding(0, 1).
		Width(maxInt(20, width-2)).
		Render(body)
}

func renderHints(width int, set features.Set) string {
	hints := []string{"↑/↓ 滚动", "s 跳过动画"}
	if set.Enabled(features.Clipboard) {
		hints = append(hints, "y 复制")
	}
	if set.Enabled(features.Search) {
		hints = append(hints, "/ 搜索")
	}
	hints = append(hints, "q 退出")
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D7A85")).
		Padding(0, 1).
		Width(maxInt(20, width)).
		Render(strings.Join(hints, " • "))
}

// wrap 按宽度折行，保留原有换行。
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
