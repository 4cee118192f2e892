package console

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"lua-console/internal/buffer"
	"lua-console/internal/config"
	"lua-console/internal/history"
	"lua-console/internal/logger"
	"lua-console/internal/repl"
	"lua-console/internal/script"
)

type textInput struct {
	value string
}

func (f *textInput) Value() string     { return f.value }
func (f *textInput) SetValue(s string) { f.value = s }
func (f *textInput) Reset()            { f.value = "" }

type memoryScriptLog struct {
	prints []string
	warns  []string
}

func (m *memoryScriptLog) Print(text string) { m.prints = append(m.prints, text) }
func (m *memoryScriptLog) Warn(msg string)   { m.warns = append(m.warns, msg) }

func newSession(t *testing.T, mutate func(*Options)) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.AppName = "Test"
	cfg.AppVersion = "1.2.3"
	opts := Options{Config: cfg, Log: logger.Discard()}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func displayed(s *Session) []string {
	var out []string
	for _, line := range s.Buffer().Lines() {
		out = append(out, line.Display())
	}
	return out
}

func submit(t *testing.T, s *Session, text string) repl.Outcome {
	t.Helper()
	in := &textInput{value: text}
	outcome := s.Submit(context.Background(), in)
	if in.value != "" {
		t.Fatalf("input not cleared after submitting %q", text)
	}
	return outcome
}

func TestOpenShowsBannerOnce(t *testing.T) {
	s := newSession(t, nil)

	win, err := s.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if win.Title != WindowTitle || !slices.Equal(win.Buttons, []string{"Close"}) {
		t.Fatalf("window = %+v", win)
	}
	want := []string{"", "Welcome to the Lua console!", "Test v1.2.3", ""}
	if got := displayed(s); !slices.Equal(got, want) {
		t.Fatalf("banner = %q", got)
	}

	if _, err := s.Open(); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("second Open err = %v", err)
	}
	s.Close()
	if s.IsOpen() {
		t.Fatalf("still open after Close")
	}
	if _, err := s.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s.Buffer().Len() != len(want) {
		t.Fatalf("banner repeated: %q", displayed(s))
	}
}

func TestOpenRefusedWhileMenuOpen(t *testing.T) {
	s := newSession(t, nil)
	s.SetMenuOpen(true)
	if _, err := s.Open(); !errors.Is(err, ErrMenuOpen) {
		t.Fatalf("Open with menu err = %v", err)
	}
	if s.Sandbox().Ready() {
		t.Fatalf("refused open should not initialize the sandbox")
	}
	s.SetMenuOpen(false)
	if _, err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := newSession(t, nil)
	if _, err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	base := s.Buffer().Len()

	submit(t, s, "1+1")
	submit(t, s, "for i=1,3 do")
	if !s.Continuing() {
		t.Fatalf("expected continuation")
	}
	submit(t, s, "end")
	submit(t, s, ")")

	got := displayed(s)[base:]
	if len(got) != 6 {
		t.Fatalf("lines = %q", got)
	}
	want := []string{"> 1+1", "2", "> for i=1,3 do", ">> end", "> )"}
	if !slices.Equal(got[:5], want) {
		t.Fatalf("lines = %q, want prefix %q", got, want)
	}
	last, _ := s.Buffer().At(s.Buffer().Len() - 1)
	if last.Kind != buffer.KindError || s.Continuing() {
		t.Fatalf("last = %+v continuing=%v", last, s.Continuing())
	}
	if r, ok := s.LastResult(); !ok || r != "2" {
		t.Fatalf("LastResult = %q, %v", r, ok)
	}
}

func TestHistoryKeysRecallSubmissions(t *testing.T) {
	s := newSession(t, nil)
	if _, err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	submit(t, s, "x = 1")
	submit(t, s, "x + 1")

	in := &textInput{}
	if !s.HandleKey(history.KeyUp, in) || in.value != "x + 1" {
		t.Fatalf("Up = %q", in.value)
	}
	s.HandleKey(history.KeyUp, in)
	if in.value != "x = 1" {
		t.Fatalf("second Up = %q", in.value)
	}
	s.HandleKey(history.KeyUp, in)
	if in.value != "x = 1" {
		t.Fatalf("Up past oldest submission = %q", in.value)
	}
	s.HandleKey(history.KeyDown, in)
	if in.value != "x + 1" {
		t.Fatalf("Down = %q", in.value)
	}
	s.HandleKey(history.KeyDown, in)
	if in.value != "" {
		t.Fatalf("Down past newest = %q", in.value)
	}
	if s.HandleKey(history.KeyOther, in) {
		t.Fatalf("other key handled")
	}
}

func TestHistoryPersistsAcrossSessions(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history.jsonl"))
	first := newSession(t, func(o *Options) { o.History = store })
	if _, err := first.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	submit(t, first, "answer = 42")
	submit(t, first, "   ")
	submit(t, first, "do")
	submit(t, first, "end")

	second := newSession(t, func(o *Options) { o.History = store })
	if _, err := second.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	lines := second.Buffer().Lines()
	if lines[0] != buffer.UserInput("answer = 42") || lines[1] != buffer.UserInput("do") || lines[2] != buffer.Continuation("end") {
		t.Fatalf("restored lines = %v", lines)
	}
	in := &textInput{}
	for _, want := range []string{"end", "do", "answer = 42"} {
		second.HandleKey(history.KeyUp, in)
		if in.value != want {
			t.Fatalf("Up after restore = %q, want %q", in.value, want)
		}
	}

	disabled := newSession(t, func(o *Options) {
		o.History = store
		o.Config.RestoreHistory = false
	})
	if _, err := disabled.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if disabled.Buffer().Len() != 4 {
		t.Fatalf("restore disabled still restored: %q", displayed(disabled))
	}
}

func TestToolkitMessagesBecomeInfoLines(t *testing.T) {
	s := newSession(t, nil)
	s.AddMessage("ignored")
	if s.Buffer().Len() != 0 {
		t.Fatalf("AddMessage before init appended")
	}
	if _, err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	submit(t, s, "tk.msg('Note', 'hello')")
	last, _ := s.Buffer().At(s.Buffer().Len() - 1)
	if last != buffer.Info("Note: hello") {
		t.Fatalf("last = %+v", last)
	}

	submit(t, s, "tk.yesno('Q', 'ok?')")
	last, _ = s.Buffer().At(s.Buffer().Len() - 1)
	if last.Kind != buffer.KindError || !strings.Contains(last.Text, "console") {
		t.Fatalf("yesno from console = %+v", last)
	}
}

func TestHostPrintIsMirroredAndWarnIsLogOnly(t *testing.T) {
	slog := &memoryScriptLog{}
	s := newSession(t, func(o *Options) { o.ScriptLog = slog })
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	chunk, res := s.opts.Runtime.Compile("print('from host', 7)", "=host")
	if res.Status != script.CompileOK {
		t.Fatalf("compile: %s", res.Message)
	}
	values, err := s.opts.Runtime.Execute(context.Background(), chunk, nil)
	if err != nil {
		t.Fatalf("host print: %v", err)
	}
	s.opts.Runtime.Release(values...)
	last, _ := s.Buffer().At(s.Buffer().Len() - 1)
	if last != buffer.Result("from host   7") {
		t.Fatalf("host print line = %+v", last)
	}
	if !slices.Equal(slog.prints, []string{"from host", "7"}) {
		t.Fatalf("mirrored = %v", slog.prints)
	}

	submit(t, s, "print('console only')")
	if len(slog.prints) != 2 {
		t.Fatalf("console print was mirrored: %v", slog.prints)
	}

	before := s.Buffer().Len()
	submit(t, s, "warn('careful')")
	if s.Buffer().Len() != before+1 {
		t.Fatalf("warn wrote to the buffer: %q", displayed(s))
	}
	if !slices.Equal(slog.warns, []string{"careful"}) {
		t.Fatalf("warns = %v", slog.warns)
	}
}

func TestExitDestroysSandbox(t *testing.T) {
	s := newSession(t, nil)
	if _, err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	submit(t, s, "kept = 1")
	s.Close()
	if _, err := s.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	submit(t, s, "kept")
	if r, _ := s.LastResult(); r != "1" {
		t.Fatalf("state lost across close/open: %q", r)
	}

	s.Exit()
	if s.IsOpen() || s.Buffer().Len() != 0 || s.Sandbox().Ready() {
		t.Fatalf("Exit left state behind")
	}
	if _, err := s.Open(); err != nil {
		t.Fatalf("Open after Exit: %v", err)
	}
	submit(t, s, "kept")
	if r, _ := s.LastResult(); r != "nil" {
		t.Fatalf("sandbox survived Exit: %q", r)
	}
	if !slices.Contains(s.Names(), "camera") {
		t.Fatalf("Names missing camera")
	}
}

func TestTailIsNewestFirst(t *testing.T) {
	s := newSession(t, nil)
	if _, err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	submit(t, s, "'a'")
	var rows []string
	for row, line := range s.Tail(2) {
		rows = append(rows, line.Display())
		if row >= 2 {
			t.Fatalf("row %d outside viewport", row)
		}
	}
	if !slices.Equal(rows, []string{"a", "> 'a'"}) {
		t.Fatalf("tail = %q", rows)
	}
}
