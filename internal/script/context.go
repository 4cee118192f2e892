package script

import "context"

type consoleKey struct{}

// WithConsole 标记 ctx 来自控制台提交。能力模块通过 FromConsole 判断调用来源。
func WithConsole(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, consoleKey{}, true)
}

// FromConsole reports whether ctx was marked by WithConsole.
func FromConsole(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(consoleKey{}).(bool)
	return v
}
