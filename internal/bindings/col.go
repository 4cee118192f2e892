package bindings

import (
	"fmt"
	"math"
	"strings"

	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
	"github.com/charmbracelet/lipgloss"
)

const colMeta = "lua-console.col"

// Color 是 0..1 范围的 RGBA。
type Color struct {
	R, G, B, A float64
}

var namedColors = map[string]Color{
	"white":  {1, 1, 1, 1},
	"black":  {0, 0, 0, 1},
	"red":    {1, 0, 0, 1},
	"green":  {0, 1, 0, 1},
	"blue":   {0, 0, 1, 1},
	"yellow": {1, 1, 0, 1},
	"grey":   {0.5, 0.5, 0.5, 1},
}

// Hex 返回 "#rrggbb"，alpha 不参与。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

// Lipgloss 把颜色转成终端样式可用的颜色。
func (c Color) Lipgloss() lipgloss.TerminalColor {
	if c == (Color{}) {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(c.Hex())
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func pushColor(l *lua.State, c Color) {
	ptr := c
	l.PushUserData(&ptr)
	lua.SetMetaTableNamed(l, colMeta)
}

func checkColor(l *lua.State, idx int) Color {
	return *lua.CheckUserData(l, idx, colMeta).(*Color)
}

// LoadCol 注册 col 模块：col.new(r, g, b [, a]) 或 col.new(name)。
func LoadCol(rt *script.Runtime, env *script.Env) error {
	registerType(rt.State(), colMeta, []lua.RegistryFunction{
		{Name: "rgba", Function: func(l *lua.State) int {
			c := checkColor(l, 1)
			l.PushNumber(c.R)
			l.PushNumber(c.G)
			l.PushNumber(c.B)
			l.PushNumber(c.A)
			return 4
		}},
		{Name: "hex", Function: func(l *lua.State) int {
			l.PushString(checkColor(l, 1).Hex())
			return 1
		}},
	}, func(l *lua.State) string {
		return "col(" + checkColor(l, 1).Hex() + ")"
	})

	return define(rt, env, "col", []lua.RegistryFunction{
		{Name: "new", Function: func(l *lua.State) int {
			if l.TypeOf(1) == lua.TypeString {
				name := strings.ToLower(lua.CheckString(l, 1))
				c, ok := namedColors[name]
				if !ok {
					lua.ArgumentError(l, 1, "unknown color "+name)
				}
				pushColor(l, c)
				return 1
			}
			pushColor(l, Color{
				R: lua.CheckNumber(l, 1),
				G: lua.CheckNumber(l, 2),
				B: lua.CheckNumber(l, 3),
				A: lua.OptNumber(l, 4, 1),
			})
			return 1
		}},
	})
}
