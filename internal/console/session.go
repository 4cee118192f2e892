// Package console 把输出缓冲、REPL、沙箱与历史导航组合成一个控制台会话，
// 并负责 init/open/close/exit 的生命周期。
package console

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"lua-console/internal/bindings"
	"lua-console/internal/buffer"
	"lua-console/internal/config"
	"lua-console/internal/history"
	"lua-console/internal/logger"
	"lua-console/internal/repl"
	"lua-console/internal/sandbox"
	"lua-console/internal/script"
)

const WindowTitle = "Lua Console"

var (
	ErrMenuOpen    = errors.New("console cannot open while a menu is open")
	ErrAlreadyOpen = errors.New("console is already open")
)

// Input 是控制台输入框。
type Input interface {
	Value() string
	SetValue(string)
	Reset()
}

// Window 是打开中的控制台窗口句柄，绘制细节由前端决定。
type Window struct {
	Title   string
	Buttons []string
}

type Options struct {
	Runtime *script.Runtime
	Config  config.Config
	// History 为 nil 时不持久化提交历史。
	History   *history.Store
	ScriptLog logger.ScriptLog
	Stage     *bindings.Stage
	BinDir    string
	Log       *logger.LogEntry
}

// Session 是进程内唯一的控制台。缓冲与沙箱在多次打开关闭之间保留，
// 窗口句柄只在打开期间存在。
type Session struct {
	opts    Options
	rt      *script.Runtime
	buf     *buffer.Buffer
	printer *repl.Printer
	engine  *repl.Engine
	sandbox *sandbox.Sandbox
	nav     *history.Navigator
	log     *logger.LogEntry

	initialized bool
	bannerShown bool
	menuOpen    bool
	window      *Window
}

func New(opts Options) *Session {
	if opts.Runtime == nil {
		opts.Runtime = script.New()
	}
	if opts.ScriptLog == nil {
		opts.ScriptLog = logger.NoopScriptLog{}
	}
	if opts.Stage == nil {
		opts.Stage = bindings.NewStage()
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("console")
	}
	cfg := opts.Config
	if cfg.MaxInput <= 0 {
		cfg.MaxInput = config.DefaultMaxInput
	}
	opts.Config = cfg

	s := &Session{
		opts: opts,
		rt:   opts.Runtime,
		buf:  buffer.New(),
		log:  log,
	}
	s.printer = repl.NewPrinter(s.buf, cfg.MaxInput, opts.ScriptLog)
	s.nav = history.NewNavigator(s.buf)
	s.sandbox = sandbox.New(sandbox.Options{
		Runtime: s.rt,
		Stage:   opts.Stage,
		Toolkit: bindings.MessageOnly(func(title, text string) { s.AddMessage(title + ": " + text) }),
		Buffer:  s.buf,
		Print:   s.printer.Func(false),
		Warn:    s.printer.Warn,
		Roots:   cfg.ScriptRoots,
		BinDir:  opts.BinDir,
		Log:     log.WithField("component", "sandbox"),
	})
	s.engine = repl.NewEngine(repl.Options{
		Executor: s.rt,
		Buffer:   s.buf,
		Env:      s.sandbox.Env,
		MaxInput: cfg.MaxInput,
		Log:      log.WithField("component", "repl"),
	})
	return s
}

// Init 创建沙箱、安装宿主的镜像 print，并恢复持久化的提交历史。
// 重复调用是无害的。
func (s *Session) Init() error {
	if s.initialized {
		return nil
	}
	if _, err := s.sandbox.Create(); err != nil {
		return fmt.Errorf("init console: %w", err)
	}
	s.rt.SetGlobal("print", s.printer.Func(true))
	s.rt.SetGlobal("warn", s.printer.Warn)
	s.restoreHistory()
	s.initialized = true
	s.log.Info("console initialized")
	return nil
}

func (s *Session) restoreHistory() {
	if s.opts.History == nil || !s.opts.Config.RestoreHistory {
		return
	}
	entries, err := s.opts.History.Load(s.opts.Config.HistoryLimit)
	if err != nil {
		s.log.WithError(err).Warn("restore history failed")
		return
	}
	for _, e := range entries {
		s.buf.Append(e.Line())
	}
	s.log.Debugf("restored %d history lines", len(entries))
}

// Open 打开控制台窗口。菜单打开时或窗口已存在时拒绝；首次打开时写入欢迎横幅。
func (s *Session) Open() (*Window, error) {
	if s.menuOpen {
		return nil, ErrMenuOpen
	}
	if s.window != nil {
		return nil, ErrAlreadyOpen
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	if !s.bannerShown {
		s.bannerShown = true
		cfg := s.opts.Config
		s.buf.Append(buffer.Info(""))
		s.buf.Append(buffer.Info("Welcome to the Lua console!"))
		s.buf.Append(buffer.Info(fmt.Sprintf("%s v%s", cfg.AppName, cfg.AppVersion)))
		s.buf.Append(buffer.Info(""))
	}
	s.window = &Window{Title: WindowTitle, Buttons: []string{"Close"}}
	return s.window, nil
}

// Close 关闭窗口；缓冲、沙箱与未完成的语句都会保留。
func (s *Session) Close() {
	s.window = nil
}

func (s *Session) IsOpen() bool { return s.window != nil }

// Exit 销毁沙箱并清空缓冲，用于进程退出或显式重置。
func (s *Session) Exit() {
	s.window = nil
	s.sandbox.Destroy()
	s.engine.Reset()
	s.buf.Clear()
	s.initialized = false
	s.log.Info("console exited")
}

// SetMenuOpen 记录宿主是否有阻塞式菜单打开。
func (s *Session) SetMenuOpen(open bool) { s.menuOpen = open }

// Submit 把输入框中的一行交给 REPL，然后清空输入框并记录历史。
func (s *Session) Submit(ctx context.Context, in Input) repl.Outcome {
	raw := in.Value()
	cont := s.Continuing()
	outcome := s.engine.Submit(ctx, raw)
	in.Reset()
	if s.opts.History != nil {
		if err := s.opts.History.Append(raw, cont); err != nil {
			s.log.WithError(err).Warn("append history failed")
		}
	}
	return outcome
}

// HandleKey 把方向键交给历史导航，返回 false 表示按键未被处理。
func (s *Session) HandleKey(key history.Key, in Input) bool {
	return s.nav.Handle(key, in)
}

// AddMessage 以提示行的形式写入缓冲；控制台尚未初始化时忽略。
func (s *Session) AddMessage(text string) {
	if !s.initialized {
		return
	}
	s.buf.Append(buffer.Info(text))
}

// Tail 返回需要绘制的最近若干行，最新一行在最下。
func (s *Session) Tail(viewportHeight int) iter.Seq2[int, buffer.Line] {
	return s.buf.Tail(viewportHeight, s.opts.Config.LineHeight)
}

func (s *Session) Buffer() *buffer.Buffer { return s.buf }

func (s *Session) Sandbox() *sandbox.Sandbox { return s.sandbox }

// Continuing reports whether a statement is waiting for more lines.
func (s *Session) Continuing() bool { return !s.engine.FirstLine() }

// Names 返回沙箱中可见的全局名。
func (s *Session) Names() []string { return s.sandbox.Names() }

// LastResult 返回缓冲中最近的一行结果输出。
func (s *Session) LastResult() (string, bool) {
	for i := s.buf.Len() - 1; i >= 0; i-- {
		line, _ := s.buf.At(i)
		if line.Kind == buffer.KindResult {
			return line.Text, true
		}
	}
	return "", false
}
