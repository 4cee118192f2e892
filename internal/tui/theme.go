package tui

import (
	"lua-console/internal/buffer"

	"github.com/charmbracelet/lipgloss"
)

// Theme 是控制台的“字体”：每种行各自的样式，以及窗口边框与按钮。
type Theme struct {
	Input  lipgloss.Style
	Result lipgloss.Style
	Error  lipgloss.Style
	Info   lipgloss.Style
	Title  lipgloss.Style
	Button lipgloss.Style
	Pane   lipgloss.Style
	Hint   lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Input:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")),
		Result: lipgloss.NewStyle(),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")),
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85")),
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Button: lipgloss.NewStyle().Foreground(lipgloss.Color("#1F1D2B")).Background(lipgloss.Color("#FFB454")).Padding(0, 1),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5E6472")).
			Padding(0, 1),
		Hint: lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7A85")).Padding(0, 1),
	}
}

func (t Theme) line(kind buffer.Kind) lipgloss.Style {
	switch kind {
	case buffer.KindUserInput, buffer.KindContinuation:
		return t.Input
	case buffer.KindError:
		return t.Error
	case buffer.KindInfo:
		return t.Info
	default:
		return t.Result
	}
}
