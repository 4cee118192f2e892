package bindings

import (
	"lua-console/internal/buffer"
	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

// LoadCLI 注册 cli 模块，让脚本读取控制台自己的输出缓冲。
//
//	cli.lines() -> n
//	cli.history([n]) -> { text, ... }  最近 n 条用户输入，旧的在前
func LoadCLI(rt *script.Runtime, env *script.Env, buf *buffer.Buffer) error {
	return define(rt, env, "cli", []lua.RegistryFunction{
		{Name: "lines", Function: func(l *lua.State) int {
			l.PushInteger(buf.Len())
			return 1
		}},
		{Name: "history", Function: func(l *lua.State) int {
			n := lua.OptInteger(l, 1, 10)
			var picked []string
			for i := buf.Len() - 1; i >= 0 && len(picked) < n; i-- {
				line, _ := buf.At(i)
				if line.Kind == buffer.KindUserInput {
					picked = append(picked, line.Text)
				}
			}
			l.CreateTable(len(picked), 0)
			for i := range picked {
				l.PushString(picked[len(picked)-1-i])
				l.RawSetInt(-2, i+1)
			}
			return 1
		}},
	})
}
