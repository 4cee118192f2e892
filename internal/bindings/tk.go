package bindings

import (
	"errors"

	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

var ErrNoDialogs = errors.New("dialogs are not available")

// Toolkit 是 tk 模块背后的宿主界面。
type Toolkit interface {
	Message(title, text string)
	YesNo(title, text string) (bool, error)
	// Input 返回用户输入；ok 为 false 表示取消。
	Input(title, prompt string, limit int) (text string, ok bool, err error)
}

// MessageOnly 只支持 tk.msg 的 Toolkit，对话框一律返回 ErrNoDialogs。
type MessageOnly func(title, text string)

func (f MessageOnly) Message(title, text string) { f(title, text) }

func (MessageOnly) YesNo(string, string) (bool, error) { return false, ErrNoDialogs }

func (MessageOnly) Input(string, string, int) (string, bool, error) {
	return "", false, ErrNoDialogs
}

// LoadTk 注册 tk 模块。阻塞式对话框（yesno、input）在控制台里执行时会被拒绝：
// 控制台的执行发生在界面循环内部，弹出模态框会让界面卡死。
//
//	tk.msg(title, text)
//	tk.yesno(title, text) -> bool
//	tk.input(title, max, prompt) -> string | nil
func LoadTk(rt *script.Runtime, env *script.Env, tk Toolkit) error {
	refuse := func(l *lua.State, name string) {
		if script.FromConsole(rt.Context()) {
			lua.Errorf(l, "tk.%s cannot be used from the console", name)
		}
	}
	return define(rt, env, "tk", []lua.RegistryFunction{
		{Name: "msg", Function: func(l *lua.State) int {
			tk.Message(lua.CheckString(l, 1), lua.CheckString(l, 2))
			return 0
		}},
		{Name: "yesno", Function: func(l *lua.State) int {
			title, text := lua.CheckString(l, 1), lua.CheckString(l, 2)
			refuse(l, "yesno")
			yes, err := tk.YesNo(title, text)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			l.PushBoolean(yes)
			return 1
		}},
		{Name: "input", Function: func(l *lua.State) int {
			title := lua.CheckString(l, 1)
			limit := lua.CheckInteger(l, 2)
			prompt := lua.CheckString(l, 3)
			refuse(l, "input")
			text, ok, err := tk.Input(title, prompt, limit)
			if err != nil {
				lua.Errorf(l, "%s", err.Error())
			}
			if !ok {
				l.PushNil()
				return 1
			}
			l.PushString(text)
			return 1
		}},
	})
}
