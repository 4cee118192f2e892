package bindings

import (
	"fmt"

	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

const texMeta = "lua-console.tex"

func checkTexture(l *lua.State, idx int) *Texture {
	return lua.CheckUserData(l, idx, texMeta).(*Texture)
}

// LoadTex 注册 tex 模块：tex.open(name [, sx, sy]) 返回贴图对象，
// 对象方法 dim() 返回精灵网格，name() 返回名字。
func LoadTex(rt *script.Runtime, env *script.Env, stage *Stage) error {
	registerType(rt.State(), texMeta, []lua.RegistryFunction{
		{Name: "dim", Function: func(l *lua.State) int {
			tex := checkTexture(l, 1)
			l.PushInteger(tex.SX)
			l.PushInteger(tex.SY)
			return 2
		}},
		{Name: "name", Function: func(l *lua.State) int {
			l.PushString(checkTexture(l, 1).Name)
			return 1
		}},
	}, func(l *lua.State) string {
		tex := checkTexture(l, 1)
		return fmt.Sprintf("tex(%s %dx%d)", tex.Name, tex.SX, tex.SY)
	})

	return define(rt, env, "tex", []lua.RegistryFunction{
		{Name: "open", Function: func(l *lua.State) int {
			name := lua.CheckString(l, 1)
			sx := lua.OptInteger(l, 2, 1)
			sy := lua.OptInteger(l, 3, 1)
			tex, err := stage.OpenTexture(name, sx, sy)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushUserData(tex)
			lua.SetMetaTableNamed(l, texMeta)
			return 1
		}},
	})
}
