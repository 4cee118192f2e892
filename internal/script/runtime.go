package script

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Shopify/go-lua"
)

var (
	ErrUnknownEnv    = errors.New("unknown script environment")
	ErrChunkReleased = errors.New("chunk already executed or discarded")
)

// CompileStatus 是编译结果的结构化分类，REPL 不需要再去匹配错误文本。
type CompileStatus int

const (
	CompileOK CompileStatus = iota
	// CompileIncomplete 表示语法错误恰好发生在输入末尾，即语句还没写完。
	CompileIncomplete
	CompileSyntaxError
)

func (s CompileStatus) String() string {
	switch s {
	case CompileOK:
		return "ok"
	case CompileIncomplete:
		return "incomplete"
	default:
		return "syntax-error"
	}
}

type CompileResult struct {
	Status  CompileStatus
	Message string
}

// ExecError 是脚本执行期间抛出的错误，Message 为 Lua 错误对象的文本。
type ExecError struct {
	Message string
}

func (e *ExecError) Error() string { return e.Message }

// Chunk 是已编译但未执行的代码单元。
type Chunk struct {
	key string
}

// Value 引用一个暂存在 registry 中的 Lua 值，用完需要 Release。
type Value struct {
	key string
}

// Runtime 封装单个 Lua 虚拟机。主全局表代表宿主应用的脚本环境；
// 控制台等调用方通过 NewEnv 获得隔离环境。
//
// Runtime 不是并发安全的，所有调用都应发生在 UI 事件循环所在的 goroutine。
type Runtime struct {
	l    *lua.State
	ctx  context.Context
	envs map[string]*Env
	seq  int
}

func New() *Runtime {
	l := lua.NewState()
	lua.OpenLibraries(l)
	return &Runtime{l: l, envs: map[string]*Env{}}
}

// State 暴露底层虚拟机，供能力模块注册元表与函数。
func (r *Runtime) State() *lua.State {
	return r.l
}

// Context 返回当前正在执行的调用所携带的 ctx；空闲时为 Background。
func (r *Runtime) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// SetGlobal 在主全局表中注册 Go 函数（例如宿主的 print 覆盖）。
func (r *Runtime) SetGlobal(name string, fn lua.Function) {
	r.l.Register(name, fn)
}

// Compile 编译 src 但不执行。
func (r *Runtime) Compile(src, name string) (*Chunk, CompileResult) {
	l := r.l
	base := l.Top()
	defer l.SetTop(base)

	if err := lua.LoadBuffer(l, src, name, "t"); err != nil {
		msg := r.message(-1, err)
		if errors.Is(err, lua.SyntaxError) && atEndOfInput(msg) {
			return nil, CompileResult{Status: CompileIncomplete, Message: msg}
		}
		return nil, CompileResult{Status: CompileSyntaxError, Message: msg}
	}
	return &Chunk{key: r.stash(-1)}, CompileResult{Status: CompileOK}
}

// Discard 丢弃未执行的 chunk。
func (r *Runtime) Discard(chunk *Chunk) {
	if chunk == nil || chunk.key == "" {
		return
	}
	r.unstash(chunk.key)
	chunk.key = ""
}

// Execute 把 chunk 的 _ENV 绑定到 env（nil 表示主全局表）后执行，返回全部结果。
// chunk 执行后即失效。执行期间 Context() 返回 ctx，返回前恢复。
func (r *Runtime) Execute(ctx context.Context, chunk *Chunk, env *Env) ([]Value, error) {
	if chunk == nil || chunk.key == "" {
		return nil, ErrChunkReleased
	}
	defer r.enter(ctx)()

	l := r.l
	base := l.Top()
	defer l.SetTop(base)

	l.Field(lua.RegistryIndex, chunk.key)
	r.Discard(chunk)
	if l.TypeOf(-1) != lua.TypeFunction {
		return nil, ErrChunkReleased
	}
	if env != nil {
		if err := r.PushEnv(env); err != nil {
			return nil, err
		}
		if _, ok := lua.SetUpValue(l, -2, 1); !ok {
			l.Pop(1)
		}
	}
	handler := base + 1
	l.PushGoFunction(errorHandler)
	l.Insert(handler)
	if err := l.ProtectedCall(0, lua.MultipleReturns, handler); err != nil {
		return nil, &ExecError{Message: r.message(-1, err)}
	}
	values := make([]Value, 0, l.Top()-handler)
	for i := handler + 1; i <= l.Top(); i++ {
		values = append(values, Value{key: r.stash(i)})
	}
	return values, nil
}

// Call 以 args 调用 env 中名为 name 的函数，忽略返回值。
func (r *Runtime) Call(ctx context.Context, env *Env, name string, args []Value) error {
	defer r.enter(ctx)()

	l := r.l
	base := l.Top()
	defer l.SetTop(base)

	if err := r.PushEnv(env); err != nil {
		return err
	}
	l.PushGoFunction(errorHandler)
	handler := l.Top()
	l.Field(-2, name)
	for _, v := range args {
		r.pushValue(v)
	}
	if err := l.ProtectedCall(len(args), 0, handler); err != nil {
		return &ExecError{Message: r.message(-1, err)}
	}
	return nil
}

// ToDisplay 按 tostring 的规则把 v 转成显示文本（会调用 __tostring）。
func (r *Runtime) ToDisplay(v Value) (string, error) {
	l := r.l
	base := l.Top()
	defer l.SetTop(base)

	var out string
	l.PushGoFunction(errorHandler)
	l.PushGoFunction(func(l *lua.State) int {
		out, _ = lua.ToStringMeta(l, 1)
		return 0
	})
	r.pushValue(v)
	if err := l.ProtectedCall(1, 0, base+1); err != nil {
		return "", &ExecError{Message: r.message(-1, err)}
	}
	return out, nil
}

// Release 释放 Execute 返回的值。
func (r *Runtime) Release(values ...Value) {
	for _, v := range values {
		if v.key != "" {
			r.unstash(v.key)
		}
	}
}

func (r *Runtime) enter(ctx context.Context) func() {
	prev := r.ctx
	r.ctx = ctx
	return func() { r.ctx = prev }
}

func (r *Runtime) pushValue(v Value) {
	r.l.Field(lua.RegistryIndex, v.key)
}

func (r *Runtime) stash(idx int) string {
	idx = r.l.AbsIndex(idx)
	r.seq++
	key := "lua-console.ref." + strconv.Itoa(r.seq)
	r.l.PushValue(idx)
	r.l.SetField(lua.RegistryIndex, key)
	return key
}

func (r *Runtime) unstash(key string) {
	r.l.PushNil()
	r.l.SetField(lua.RegistryIndex, key)
}

func (r *Runtime) message(idx int, err error) string {
	if s, ok := r.l.ToString(idx); ok {
		return s
	}
	if err != nil {
		return err.Error()
	}
	return "(error object is not a string)"
}

// errorHandler 是 ProtectedCall 的消息处理函数：非字符串的错误对象按
// __tostring 或 "(error object is a X value)" 转成文本。
func errorHandler(l *lua.State) int {
	switch l.TypeOf(1) {
	case lua.TypeString, lua.TypeNumber:
		l.SetTop(1)
	default:
		if !lua.CallMeta(l, 1, "__tostring") || l.TypeOf(-1) != lua.TypeString {
			l.PushString(fmt.Sprintf("(error object is a %s value)", lua.TypeNameOf(l, 1)))
		}
	}
	return 1
}

// atEndOfInput 判断解析器是否在 <eof> 处报错。
func atEndOfInput(msg string) bool {
	msg = strings.TrimRight(strings.TrimSpace(msg), "'\"")
	return strings.HasSuffix(msg, "<eof>")
}
