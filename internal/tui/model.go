package tui

import (
	"context"
	"fmt"
	"strings"

	"lua-console/internal/bindings"
	"lua-console/internal/console"
	"lua-console/internal/history"
	"lua-console/internal/logger"
	"lua-console/internal/repl"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	closeLabel      = "Close"
	defaultWidth    = 80
	defaultHeight   = 24
	minDrawHeight   = 3
	firstLinePrompt = "> "
	continuePrompt  = ">> "
)

type Options struct {
	Session *console.Session
	Context context.Context
	Theme   *Theme
	// CopyToClipboard 默认使用系统剪贴板，测试时替换。
	CopyToClipboard func(string) error
	AltScreen       bool
	Log             *logger.LogEntry
}

type Model struct {
	session *console.Session
	ctx     context.Context
	input   textinput.Model
	help    help.Model
	keys    keyMap
	theme   Theme
	copy    func(string) error
	log     *logger.LogEntry

	window     *console.Window
	width      int
	height     int
	status     string
	candidates []string
	err        error
}

func New(opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = firstLinePrompt
	ti.Placeholder = "Lua"
	ti.CharLimit = 0
	ti.Width = defaultWidth - 6
	ti.Focus()

	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cp := opts.CopyToClipboard
	if cp == nil {
		cp = clipboard.WriteAll
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("tui")
	}
	return &Model{
		session: opts.Session,
		ctx:     ctx,
		input:   ti,
		help:    help.New(),
		keys:    defaultKeys(),
		theme:   theme,
		copy:    cp,
		log:     log,
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

func (m *Model) Init() tea.Cmd {
	m.open()
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.MouseMsg:
		if m.window != nil && m.onCloseButton(msg) {
			m.close()
		}
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.session.Close()
			return m, tea.Quit
		}
		if m.window == nil {
			if key.Matches(msg, m.keys.Open) {
				m.open()
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Close):
			m.close()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			m.submit()
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.session.HandleKey(history.KeyUp, &m.input)
			m.input.CursorEnd()
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.session.HandleKey(history.KeyDown, &m.input)
			m.input.CursorEnd()
			return m, nil
		case key.Matches(msg, m.keys.Complete):
			m.completeInput()
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			m.copyLastResult()
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) open() {
	win, err := m.session.Open()
	if err != nil {
		m.err = err
		m.log.WithError(err).Warn("open console failed")
		return
	}
	m.err = nil
	m.window = win
	m.input.Focus()
}

func (m *Model) close() {
	m.session.Close()
	m.window = nil
	m.candidates = nil
	m.input.Blur()
}

func (m *Model) submit() {
	outcome := m.session.Submit(m.ctx, &m.input)
	m.candidates = nil
	m.status = ""
	if outcome == repl.OutcomeCancelled {
		m.status = "cancelled"
	}
	if m.session.Continuing() {
		m.input.Prompt = continuePrompt
	} else {
		m.input.Prompt = firstLinePrompt
	}
}

func (m *Model) completeInput() {
	text, candidates := complete(m.input.Value(), m.session.Names())
	m.input.SetValue(text)
	m.input.CursorEnd()
	m.candidates = candidates
}

func (m *Model) copyLastResult() {
	text, ok := m.session.LastResult()
	if !ok {
		m.status = "nothing to copy"
		return
	}
	if err := m.copy(text); err != nil {
		m.status = fmt.Sprintf("copy failed: %v", err)
		m.log.WithError(err).Warn("clipboard write failed")
		return
	}
	m.status = fmt.Sprintf("copied %d chars", len(text))
}

func (m *Model) resize(width, height int) {
	if width > 0 {
		m.width = width
	}
	if height > 0 {
		m.height = height
	}
	m.input.Width = maxInt(10, m.width-6)
	m.help.Width = m.width
}

// drawHeight 是输出区能容纳的行数：去掉标题栏、边框、输入行、状态行和帮助行。
func (m *Model) drawHeight() int {
	return maxInt(minDrawHeight, m.height-7)
}

func (m *Model) contentWidth() int {
	return maxInt(10, m.width-4)
}

func (m *Model) View() string {
	if m.window == nil {
		hint := "Console closed • ` or F1 to open • ctrl+c to quit"
		if m.err != nil {
			hint = fmt.Sprintf("%s • %v", hint, m.err)
		}
		return m.theme.Hint.Render(hint)
	}

	width := m.contentWidth()
	body := strings.Join(append(m.renderLines(width), m.input.View()), "\n")
	pane := m.theme.Pane
	if bg := m.stageBackground(); bg != nil {
		pane = pane.BorderForeground(bg)
	}
	pane = pane.Width(m.width - 2)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		pane.Render(body),
		m.theme.Hint.Render(m.statusLine()),
		m.help.View(m.keys),
	)
}

// renderLines 自下而上填充输出区，超宽的行按显示宽度截断。
func (m *Model) renderLines(width int) []string {
	rows := m.drawHeight()
	lines := make([]string, rows)
	for row, line := range m.session.Tail(rows) {
		text := runewidth.Truncate(line.Display(), width, "…")
		lines[rows-1-row] = m.theme.line(line.Kind).Render(text)
	}
	return lines
}

func (m *Model) renderTitle() string {
	title := m.theme.Title.Render(m.window.Title)
	buttons := make([]string, 0, len(m.window.Buttons))
	for _, b := range m.window.Buttons {
		buttons = append(buttons, m.theme.Button.Render(b))
	}
	right := strings.Join(buttons, " ")
	gap := maxInt(1, m.width-lipgloss.Width(title)-lipgloss.Width(right))
	return title + strings.Repeat(" ", gap) + right
}

// onCloseButton 判断鼠标是否点在标题栏右侧的 Close 按钮上。
func (m *Model) onCloseButton(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft || msg.Y != 0 {
		return false
	}
	w := lipgloss.Width(m.theme.Button.Render(closeLabel))
	return msg.X >= m.width-w && msg.X < m.width
}

func (m *Model) statusLine() string {
	parts := []string{}
	if m.session.Continuing() {
		parts = append(parts, "continuing…")
	}
	if len(m.candidates) > 0 {
		parts = append(parts, strings.Join(m.candidates, " "))
	}
	stage := m.session.Sandbox().Stage()
	if track := stage.Music(); track.Playing {
		parts = append(parts, "♪ "+track.Name)
	}
	if n := len(stage.Layers()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d bkg layers", n))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, " • ")
}

func (m *Model) stageBackground() lipgloss.TerminalColor {
	bg := m.session.Sandbox().Stage().Background()
	if bg == (bindings.Color{}) {
		return nil
	}
	return bg.Lipgloss()
}

// Open reports whether the console window is currently shown.
func (m *Model) Open() bool { return m.window != nil }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
