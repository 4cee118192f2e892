// Package bindings 提供控制台环境可用的能力模块：tex、col、bkg、camera、
// tk、cli、music。渲染不在本程序范围内，这些模块操作的是宿主的 Stage 状态，
// 前端按帧读取它。
package bindings

import (
	"errors"
	"fmt"
	"strings"

	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

var (
	ErrEnvNotRegistered = errors.New("environment must be registered before loading camera")
	ErrNoTexture        = errors.New("unknown texture")
)

// Texture 是一张已“打开”的贴图，按 sx*sy 切分成精灵。
type Texture struct {
	Name string
	SX   int
	SY   int
}

// Layer 是一层背景。
type Layer struct {
	ID      int
	Texture string
	X, Y    float64
	Move    float64
	Front   bool
}

// Camera 是某个环境的视角。
type Camera struct {
	X, Y float64
	Zoom float64
}

// Track 是音乐播放状态。
type Track struct {
	Name    string
	Playing bool
	Volume  float64
}

// Stage 保存能力模块共享的宿主状态。与 Runtime 一样只在 UI goroutine 上使用。
type Stage struct {
	textures   map[string]*Texture
	layers     []Layer
	nextLayer  int
	background Color
	cameras    map[string]*Camera
	music      Track
}

func NewStage() *Stage {
	return &Stage{
		textures: map[string]*Texture{},
		cameras:  map[string]*Camera{},
		music:    Track{Volume: 1},
	}
}

// OpenTexture 返回同名贴图；首次打开时记录切分参数。
func (s *Stage) OpenTexture(name string, sx, sy int) (*Texture, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrNoTexture)
	}
	if sx <= 0 || sy <= 0 {
		return nil, fmt.Errorf("invalid sprite grid %dx%d", sx, sy)
	}
	if tex, ok := s.textures[name]; ok {
		return tex, nil
	}
	tex := &Texture{Name: name, SX: sx, SY: sy}
	s.textures[name] = tex
	return tex, nil
}

func (s *Stage) Textures() int { return len(s.textures) }

func (s *Stage) AddLayer(layer Layer) (int, error) {
	if _, ok := s.textures[layer.Texture]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoTexture, layer.Texture)
	}
	s.nextLayer++
	layer.ID = s.nextLayer
	s.layers = append(s.layers, layer)
	return layer.ID, nil
}

func (s *Stage) Layers() []Layer {
	return append([]Layer(nil), s.layers...)
}

func (s *Stage) ClearLayers() {
	s.layers = nil
}

func (s *Stage) SetBackground(c Color) { s.background = c }

func (s *Stage) Background() Color { return s.background }

// Camera 返回 id 对应环境的相机，不存在时创建。
func (s *Stage) Camera(id string) *Camera {
	cam, ok := s.cameras[id]
	if !ok {
		cam = &Camera{Zoom: 1}
		s.cameras[id] = cam
	}
	return cam
}

// DropCamera 在环境销毁时释放它的相机。
func (s *Stage) DropCamera(id string) {
	delete(s.cameras, id)
}

func (s *Stage) Music() Track { return s.music }

func (s *Stage) track() *Track { return &s.music }

// define 是各模块共用的注册入口。
func define(rt *script.Runtime, env *script.Env, name string, fns []lua.RegistryFunction) error {
	if err := rt.Define(env, name, fns); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// registerType 创建名为 name 的元表：方法表作为 __index，tostring 非空时设置 __tostring。
func registerType(l *lua.State, name string, methods []lua.RegistryFunction, tostring func(*lua.State) string) {
	if !lua.NewMetaTable(l, name) {
		l.Pop(1)
		return
	}
	l.NewTable()
	lua.SetFunctions(l, methods, 0)
	l.SetField(-2, "__index")
	if tostring != nil {
		l.PushGoFunction(func(l *lua.State) int {
			l.PushString(tostring(l))
			return 1
		})
		l.SetField(-2, "__tostring")
	}
	l.Pop(1)
}
