package bindings

import (
	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

// LoadBackground 注册 bkg 模块。
//
//	bkg.image(tex, x, y [, move [, front]]) -> id
//	bkg.clear()
//	bkg.color(col)
func LoadBackground(rt *script.Runtime, env *script.Env, stage *Stage) error {
	return define(rt, env, "bkg", []lua.RegistryFunction{
		{Name: "image", Function: func(l *lua.State) int {
			tex := checkTexture(l, 1)
			id, err := stage.AddLayer(Layer{
				Texture: tex.Name,
				X:       lua.CheckNumber(l, 2),
				Y:       lua.CheckNumber(l, 3),
				Move:    lua.OptNumber(l, 4, 1),
				Front:   l.ToBoolean(5),
			})
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushInteger(id)
			return 1
		}},
		{Name: "clear", Function: func(*lua.State) int {
			stage.ClearLayers()
			return 0
		}},
		{Name: "color", Function: func(l *lua.State) int {
			stage.SetBackground(checkColor(l, 1))
			return 0
		}},
	})
}
