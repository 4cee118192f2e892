package sandbox

import (
	"fmt"

	"lua-console/internal/bindings"
	"lua-console/internal/buffer"
	"lua-console/internal/logger"
	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

type Options struct {
	Runtime *script.Runtime
	Stage   *bindings.Stage
	Toolkit bindings.Toolkit
	// Buffer 是 cli 模块读取的控制台缓冲。
	Buffer *buffer.Buffer
	// Print 是控制台专用的 print，只写缓冲。
	Print lua.Function
	Warn  lua.Function
	// Roots 限制 script() 可以加载的目录；为空表示不限制。
	Roots  []string
	BinDir string
	Log    *logger.LogEntry
}

// Sandbox 持有控制台的隔离环境，按需创建，可以销毁后重建。
type Sandbox struct {
	opts Options
	env  *script.Env
	log  *logger.LogEntry
}

func New(opts Options) *Sandbox {
	if opts.Stage == nil {
		opts.Stage = bindings.NewStage()
	}
	if opts.Toolkit == nil {
		opts.Toolkit = bindings.MessageOnly(func(string, string) {})
	}
	if opts.Buffer == nil {
		opts.Buffer = buffer.New()
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("sandbox")
	}
	return &Sandbox{opts: opts, log: log}
}

// Create 创建隔离环境并加载全部能力模块。环境已存在时什么也不做，
// 返回 created=false 且没有错误。
func (s *Sandbox) Create() (bool, error) {
	if s.env != nil {
		s.log.Debug("sandbox already initialized")
		return false, nil
	}
	rt := s.opts.Runtime
	env := rt.NewEnv()

	steps := []struct {
		name string
		load func() error
	}{
		{"tex", func() error { return bindings.LoadTex(rt, env, s.opts.Stage) }},
		{"col", func() error { return bindings.LoadCol(rt, env) }},
		{"bkg", func() error { return bindings.LoadBackground(rt, env, s.opts.Stage) }},
		{"register", func() error { rt.Register(env); return nil }},
		{"camera", func() error { return bindings.LoadCamera(rt, env, s.opts.Stage) }},
		{"tk", func() error { return bindings.LoadTk(rt, env, s.opts.Toolkit) }},
		{"cli", func() error { return bindings.LoadCLI(rt, env, s.opts.Buffer) }},
		{"music", func() error { return bindings.LoadMusic(rt, env, s.opts.Stage) }},
		{"console", func() error { return rt.Define(env, "", s.consoleFuncs(env)) }},
	}
	for _, step := range steps {
		if err := step.load(); err != nil {
			rt.CloseEnv(env)
			s.opts.Stage.DropCamera(env.ID())
			return false, fmt.Errorf("create sandbox (%s): %w", step.name, err)
		}
	}
	s.env = env
	s.log.WithField("env", env.ID()).Info("sandbox created")
	return true, nil
}

// Destroy 释放环境及其绑定。之后的 Create 会得到全新的环境。
func (s *Sandbox) Destroy() {
	if s.env == nil {
		return
	}
	id := s.env.ID()
	s.opts.Runtime.CloseEnv(s.env)
	s.opts.Stage.DropCamera(id)
	s.env = nil
	s.log.WithField("env", id).Info("sandbox destroyed")
}

// Env 返回当前环境；尚未创建时为 nil。
func (s *Sandbox) Env() *script.Env { return s.env }

func (s *Sandbox) Ready() bool { return s.env != nil }

func (s *Sandbox) Stage() *bindings.Stage { return s.opts.Stage }

// Names 返回环境中可见的全局名，供补全使用。
func (s *Sandbox) Names() []string {
	if s.env == nil {
		return nil
	}
	return s.opts.Runtime.Names(s.env)
}

func (s *Sandbox) consoleFuncs(env *script.Env) []lua.RegistryFunction {
	fns := []lua.RegistryFunction{
		{Name: "script", Function: func(l *lua.State) int { return s.runScript(l, env) }},
	}
	if s.opts.Print != nil {
		fns = append(fns, lua.RegistryFunction{Name: "print", Function: s.opts.Print})
	}
	if s.opts.Warn != nil {
		fns = append(fns, lua.RegistryFunction{Name: "warn", Function: s.opts.Warn})
	}
	return fns
}

// runScript 实现 script(path)：在控制台环境中执行文件并返回它的全部结果。
func (s *Sandbox) runScript(l *lua.State, env *script.Env) int {
	name := lua.CheckString(l, 1)
	path, err := ResolveScript(name, s.opts.Roots, s.opts.BinDir)
	if err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	base := l.Top()
	if err := lua.LoadFile(l, path, "t"); err != nil {
		l.Error()
	}
	if err := s.opts.Runtime.PushEnv(env); err != nil {
		lua.Errorf(l, "%s", err.Error())
	}
	if _, ok := lua.SetUpValue(l, -2, 1); !ok {
		l.Pop(1)
	}
	s.log.WithField("path", path).Debug("running script")
	l.Call(0, lua.MultipleReturns)
	return l.Top() - base
}
