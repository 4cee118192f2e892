package bindings

import (
	"fmt"

	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

// LoadCamera 注册 camera 模块。相机按环境区分，所以 env 必须已经登记在
// 运行时的查找表里。
//
//	camera.set(x, y)
//	camera.get() -> x, y
//	camera.zoom([z]) -> z
func LoadCamera(rt *script.Runtime, env *script.Env, stage *Stage) error {
	if _, ok := rt.Lookup(env.ID()); !ok {
		return fmt.Errorf("load camera: %w", ErrEnvNotRegistered)
	}
	id := env.ID()
	return define(rt, env, "camera", []lua.RegistryFunction{
		{Name: "set", Function: func(l *lua.State) int {
			cam := stage.Camera(id)
			cam.X = lua.CheckNumber(l, 1)
			cam.Y = lua.CheckNumber(l, 2)
			return 0
		}},
		{Name: "get", Function: func(l *lua.State) int {
			cam := stage.Camera(id)
			l.PushNumber(cam.X)
			l.PushNumber(cam.Y)
			return 2
		}},
		{Name: "zoom", Function: func(l *lua.State) int {
			cam := stage.Camera(id)
			if !l.IsNoneOrNil(1) {
				z := lua.CheckNumber(l, 1)
				if z <= 0 {
					lua.ArgumentError(l, 1, "zoom must be positive")
				}
				cam.Zoom = z
			}
			l.PushNumber(cam.Zoom)
			return 1
		}},
	})
}
