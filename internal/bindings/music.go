package bindings

import (
	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

// LoadMusic 注册 music 模块。
//
//	music.load(name)
//	music.play()
//	music.stop()
//	music.isPlaying() -> bool
//	music.current() -> name | nil
//	music.volume([v]) -> v
func LoadMusic(rt *script.Runtime, env *script.Env, stage *Stage) error {
	return define(rt, env, "music", []lua.RegistryFunction{
		{Name: "load", Function: func(l *lua.State) int {
			t := stage.track()
			t.Name = lua.CheckString(l, 1)
			t.Playing = false
			return 0
		}},
		{Name: "play", Function: func(l *lua.State) int {
			t := stage.track()
			if t.Name == "" {
				lua.Errorf(l, "no music loaded")
			}
			t.Playing = true
			return 0
		}},
		{Name: "stop", Function: func(*lua.State) int {
			stage.track().Playing = false
			return 0
		}},
		{Name: "isPlaying", Function: func(l *lua.State) int {
			l.PushBoolean(stage.track().Playing)
			return 1
		}},
		{Name: "current", Function: func(l *lua.State) int {
			name := stage.track().Name
			if name == "" {
				l.PushNil()
				return 1
			}
			l.PushString(name)
			return 1
		}},
		{Name: "volume", Function: func(l *lua.State) int {
			t := stage.track()
			if !l.IsNoneOrNil(1) {
				v := lua.CheckNumber(l, 1)
				if v < 0 || v > 1 {
					lua.ArgumentError(l, 1, "volume must be within [0, 1]")
				}
				t.Volume = v
			}
			l.PushNumber(t.Volume)
			return 1
		}},
	})
}
