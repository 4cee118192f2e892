package repl

import (
	"context"
	"errors"
	"fmt"

	"lua-console/internal/buffer"
	"lua-console/internal/logger"
	"lua-console/internal/script"
)

// ResultPrintError 是打印返回值本身失败时写入缓冲的固定文本。
const ResultPrintError = "Error printing results."

// Outcome 描述一次 Submit 的结局。
type Outcome int

const (
	OutcomeExecuted Outcome = iota
	// OutcomeIncomplete 表示语句尚未结束，正在等待续行。
	OutcomeIncomplete
	OutcomeCompileError
	OutcomeRuntimeError
	OutcomeResultPrintError
	// OutcomeRejected 表示累积的语句超过长度上限而被丢弃。
	OutcomeRejected
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeCompileError:
		return "compile-error"
	case OutcomeRuntimeError:
		return "runtime-error"
	case OutcomeResultPrintError:
		return "result-print-error"
	case OutcomeRejected:
		return "rejected"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Executor 是 REPL 依赖的脚本运行时能力。*script.Runtime 满足该接口；
// 需要异步或可取消的执行时替换这里即可，状态机不受影响。
type Executor interface {
	Compile(src, name string) (*script.Chunk, script.CompileResult)
	Discard(chunk *script.Chunk)
	Execute(ctx context.Context, chunk *script.Chunk, env *script.Env) ([]script.Value, error)
	Call(ctx context.Context, env *script.Env, name string, args []script.Value) error
	Release(values ...script.Value)
}

type Options struct {
	Executor Executor
	Buffer   *buffer.Buffer
	// Env 返回执行所用的隔离环境；返回 nil 表示环境尚未创建。
	Env       func() *script.Env
	MaxInput  int
	ChunkName string
	Log       *logger.LogEntry
}

// Engine 负责“累积 → 编译 → 执行 → 输出”的循环。
//
// firstLine 为 true 表示没有待续的语句。只有 Incomplete 会让它保持 false，
// 其余任何结局都会把它复位。
type Engine struct {
	exec      Executor
	buf       *buffer.Buffer
	env       func() *script.Env
	maxInput  int
	chunkName string
	log       *logger.LogEntry

	firstLine bool
	fragment  string
}

func NewEngine(opts Options) *Engine {
	maxInput := opts.MaxInput
	if maxInput <= 0 {
		maxInput = 1024
	}
	name := opts.ChunkName
	if name == "" {
		name = "=console"
	}
	log := opts.Log
	if log == nil {
		log = logger.Named("repl")
	}
	env := opts.Env
	if env == nil {
		env = func() *script.Env { return nil }
	}
	return &Engine{
		exec:      opts.Executor,
		buf:       opts.Buffer,
		env:       env,
		maxInput:  maxInput,
		chunkName: name,
		log:       log,
		firstLine: true,
	}
}

// FirstLine reports whether no statement is pending continuation.
func (e *Engine) FirstLine() bool { return e.firstLine }

// Fragment returns the source accumulated so far for a pending statement.
func (e *Engine) Fragment() string { return e.fragment }

// Reset 丢弃未完成的语句。
func (e *Engine) Reset() {
	e.firstLine = true
	e.fragment = ""
}

// Submit 处理一行用户输入。它从不返回错误：所有失败都以文本形式写入缓冲。
// 执行期间 ctx 被标记为来自控制台。
func (e *Engine) Submit(ctx context.Context, raw string) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	src := raw
	if e.firstLine {
		e.buf.Append(buffer.UserInput(raw))
	} else {
		e.buf.Append(buffer.Continuation(raw))
		src = e.fragment + "\n" + raw
	}

	outcome := e.run(script.WithConsole(ctx), src)
	e.log.WithField("type", outcome.String()).Debugf("submitted %d bytes", len(src))
	return outcome
}

func (e *Engine) run(ctx context.Context, src string) Outcome {
	if len(src) > e.maxInput {
		e.Reset()
		e.buf.Append(buffer.Error(fmt.Sprintf("input exceeds %d characters; statement discarded", e.maxInput)))
		return OutcomeRejected
	}

	chunk, res := e.compile(src)
	switch res.Status {
	case script.CompileIncomplete:
		e.firstLine = false
		e.fragment = src
		return OutcomeIncomplete
	case script.CompileSyntaxError:
		e.Reset()
		e.buf.Append(buffer.Error(res.Message))
		return OutcomeCompileError
	}
	e.Reset()

	if err := ctx.Err(); err != nil {
		e.exec.Discard(chunk)
		e.buf.Append(buffer.Error("execution cancelled: " + err.Error()))
		return OutcomeCancelled
	}
	env := e.env()
	if env == nil {
		e.exec.Discard(chunk)
		e.buf.Append(buffer.Error("console environment is not initialized"))
		return OutcomeRuntimeError
	}

	values, err := e.exec.Execute(ctx, chunk, env)
	if err != nil {
		e.buf.Append(buffer.Error(errorText(err)))
		return OutcomeRuntimeError
	}
	defer e.exec.Release(values...)
	if len(values) == 0 {
		return OutcomeExecuted
	}
	if err := e.exec.Call(ctx, env, "print", values); err != nil {
		e.log.WithError(err).Warn("printing results failed")
		e.buf.Append(buffer.Error(ResultPrintError))
		return OutcomeResultPrintError
	}
	return OutcomeExecuted
}

// compile 先尝试把片段当作表达式（"return " + src），失败再按语句编译，
// 这样输入 1+1 会直接打印 2。分类总是以语句形式的结果为准。
func (e *Engine) compile(src string) (*script.Chunk, script.CompileResult) {
	if chunk, res := e.exec.Compile("return "+src, e.chunkName); res.Status == script.CompileOK {
		return chunk, res
	}
	return e.exec.Compile(src, e.chunkName)
}

func errorText(err error) string {
	var execErr *script.ExecError
	if errors.As(err, &execErr) {
		return execErr.Message
	}
	return err.Error()
}
