package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run 封装 Bubble Tea 入口，在界面退出后返回。
func Run(opts Options) error {
	if opts.Session == nil {
		return errors.New("tui: session is required")
	}
	programOptions := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if opts.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen())
	}
	if opts.Context != nil {
		programOptions = append(programOptions, tea.WithContext(opts.Context))
	}
	program := tea.NewProgram(New(opts), programOptions...)
	m, err := program.Run()
	if err != nil {
		// 收到中断信号退出不算错误。
		if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
			return nil
		}
		return err
	}
	if _, ok := m.(*Model); !ok {
		return errors.New("unexpected tui model")
	}
	return nil
}
