package script

import (
	"sort"

	"github.com/Shopify/go-lua"
	"github.com/google/uuid"
)

// safeGlobals 是隔离环境可以透过 __index 读到的基础库子集。
// 其中的库表（math、string 等）每个环境各拷贝一份。
var safeGlobals = []string{
	"_VERSION",
	"assert",
	"bit32",
	"error",
	"getmetatable",
	"ipairs",
	"math",
	"next",
	"pairs",
	"pcall",
	"rawequal",
	"rawget",
	"rawlen",
	"rawset",
	"select",
	"setmetatable",
	"string",
	"table",
	"tonumber",
	"tostring",
	"type",
	"xpcall",
}

// Env 是与主全局表隔离的一组绑定。写入只落在 Env 自己的表里。
type Env struct {
	id  string
	key string
}

// ID 是 Env 在运行时查找表中的键。
func (e *Env) ID() string {
	if e == nil {
		return ""
	}
	return e.id
}

// NewEnv 创建一个新的隔离环境。新环境尚未登记，需要按身份查找它的绑定
// （例如 camera）必须在 Register 之后加载。
func (r *Runtime) NewEnv() *Env {
	id := uuid.NewString()
	env := &Env{id: id, key: "lua-console.env." + id}

	l := r.l
	base := l.Top()
	defer l.SetTop(base)

	l.NewTable()
	l.NewTable()
	r.pushBase()
	l.SetField(-2, "__index")
	l.SetMetaTable(-2)
	l.PushValue(-1)
	l.SetField(-2, "_G")
	l.SetField(lua.RegistryIndex, env.key)
	return env
}

// Register 把 env 放进按身份索引的查找表。
func (r *Runtime) Register(env *Env) {
	if env == nil {
		return
	}
	r.envs[env.id] = env
}

// Lookup 按 ID 查找已登记的环境。
func (r *Runtime) Lookup(id string) (*Env, bool) {
	env, ok := r.envs[id]
	return env, ok
}

// CloseEnv 注销并释放环境，之后对它的任何使用都会返回 ErrUnknownEnv。
func (r *Runtime) CloseEnv(env *Env) {
	if env == nil {
		return
	}
	delete(r.envs, env.id)
	r.l.PushNil()
	r.l.SetField(lua.RegistryIndex, env.key)
}

// PushEnv 把 env 的表压栈。
func (r *Runtime) PushEnv(env *Env) error {
	if env == nil {
		return ErrUnknownEnv
	}
	r.l.Field(lua.RegistryIndex, env.key)
	if r.l.TypeOf(-1) != lua.TypeTable {
		r.l.Pop(1)
		return ErrUnknownEnv
	}
	return nil
}

// Define 在 env 中注册函数。name 为空时直接写入 env，否则写入名为 name 的子表。
// env 为 nil 时写入主全局表。
func (r *Runtime) Define(env *Env, name string, fns []lua.RegistryFunction) error {
	l := r.l
	base := l.Top()
	defer l.SetTop(base)
	if env == nil {
		l.PushGlobalTable()
	} else if err := r.PushEnv(env); err != nil {
		return err
	}
	if name == "" {
		lua.SetFunctions(l, fns, 0)
		return nil
	}
	l.NewTable()
	lua.SetFunctions(l, fns, 0)
	l.SetField(-2, name)
	return nil
}

// Names 返回 env 中可见的全局名（含基础库），用于补全。
func (r *Runtime) Names(env *Env) []string {
	l := r.l
	base := l.Top()
	defer l.SetTop(base)

	if err := r.PushEnv(env); err != nil {
		return nil
	}
	seen := map[string]struct{}{}
	collect := func() {
		l.PushNil()
		for l.Next(-2) {
			if l.TypeOf(-2) == lua.TypeString {
				if k, ok := l.ToString(-2); ok {
					seen[k] = struct{}{}
				}
			}
			l.Pop(1)
		}
	}
	collect()
	if l.MetaTable(-1) {
		l.Field(-1, "__index")
		if l.IsTable(-1) {
			collect()
		}
	}

	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// pushBase 压入一张新的基础表。库表做浅拷贝，环境里的写入碰不到宿主的库，
// 也不会留给下一个环境。
func (r *Runtime) pushBase() {
	l := r.l
	l.NewTable()
	for _, name := range safeGlobals {
		l.Global(name)
		if l.IsTable(-1) {
			copyTable(l)
		}
		l.SetField(-2, name)
	}
	l.PushGoFunction(getMetatable)
	l.SetField(-2, "getmetatable")
}

// getMetatable 同基础库的 getmetatable，但字符串的元表是所有环境共享的，不交出去。
func getMetatable(l *lua.State) int {
	lua.CheckAny(l, 1)
	if l.TypeOf(1) == lua.TypeString || !l.MetaTable(1) {
		l.PushNil()
		return 1
	}
	lua.MetaField(l, 1, "__metatable")
	return 1
}

// copyTable 把栈顶的表替换成它的浅拷贝。
func copyTable(l *lua.State) {
	src := l.AbsIndex(-1)
	l.NewTable()
	l.PushNil()
	for l.Next(src) {
		l.PushValue(-2)
		l.Insert(-2)
		l.RawSet(-4)
	}
	l.Remove(src)
}
