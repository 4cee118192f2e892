package sandbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"lua-console/internal/logger"
	"lua-console/internal/script"

	"github.com/Shopify/go-lua"
)

func newSandbox(t *testing.T, opts Options) (*Sandbox, *script.Runtime) {
	t.Helper()
	if opts.Runtime == nil {
		opts.Runtime = script.New()
	}
	opts.Log = logger.Discard()
	return New(opts), opts.Runtime
}

func exec(t *testing.T, rt *script.Runtime, env *script.Env, src string) ([]string, error) {
	t.Helper()
	chunk, res := rt.Compile(src, "=test")
	if res.Status != script.CompileOK {
		t.Fatalf("compile %q: %s", src, res.Message)
	}
	values, err := rt.Execute(context.Background(), chunk, env)
	if err != nil {
		return nil, err
	}
	defer rt.Release(values...)
	var out []string
	for _, v := range values {
		s, _ := rt.ToDisplay(v)
		out = append(out, s)
	}
	return out, nil
}

func TestCreateIsIdempotent(t *testing.T) {
	sb, rt := newSandbox(t, Options{})

	created, err := sb.Create()
	if err != nil || !created {
		t.Fatalf("first Create = %v, %v", created, err)
	}
	env := sb.Env()
	if _, err := exec(t, rt, env, "marker = 42; camera.set(1, 2)"); err != nil {
		t.Fatalf("exec: %v", err)
	}

	created, err = sb.Create()
	if err != nil || created {
		t.Fatalf("second Create = %v, %v", created, err)
	}
	if sb.Env() != env {
		t.Fatalf("second Create replaced the environment")
	}
	out, err := exec(t, rt, env, "return marker, camera.get()")
	if err != nil || strings.Join(out, ",") != "42,1,2" {
		t.Fatalf("state after second Create = %v, %v", out, err)
	}
}

func TestCreateLoadsCapabilities(t *testing.T) {
	sb, rt := newSandbox(t, Options{
		Print: func(*lua.State) int { return 0 },
		Warn:  func(*lua.State) int { return 0 },
	})
	if _, err := sb.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, name := range []string{"tex", "col", "bkg", "camera", "tk", "cli", "music", "print", "script", "warn"} {
		if !slices.Contains(rt.Names(sb.Env()), name) {
			t.Fatalf("sandbox missing %q", name)
		}
	}
	for _, name := range []string{"io", "os", "require", "dofile", "load"} {
		if slices.Contains(rt.Names(sb.Env()), name) {
			t.Fatalf("sandbox exposes %q", name)
		}
	}
	if _, ok := rt.Lookup(sb.Env().ID()); !ok {
		t.Fatalf("sandbox env is not registered")
	}
	names := strings.Join(sb.Names(), ",")
	if !strings.Contains(names, "camera") || !strings.Contains(names, "pairs") {
		t.Fatalf("Names = %s", names)
	}
}

func TestDestroyThenCreateIsFresh(t *testing.T) {
	sb, rt := newSandbox(t, Options{})
	if _, err := sb.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	old := sb.Env()
	if _, err := exec(t, rt, old, "marker = 1; camera.set(5, 5); getmetatable(_G).__index.leaked = 42; math.leaked = 7"); err != nil {
		t.Fatalf("exec: %v", err)
	}

	sb.Destroy()
	if sb.Ready() || sb.Names() != nil {
		t.Fatalf("sandbox still ready after Destroy")
	}
	if _, ok := rt.Lookup(old.ID()); ok {
		t.Fatalf("old env still registered")
	}
	if err := rt.PushEnv(old); !errors.Is(err, script.ErrUnknownEnv) {
		t.Fatalf("old env still usable: %v", err)
	}
	sb.Destroy()

	created, err := sb.Create()
	if err != nil || !created {
		t.Fatalf("Create after Destroy = %v, %v", created, err)
	}
	out, err := exec(t, rt, sb.Env(), "return marker, camera.get(), leaked, math.leaked")
	if err != nil || strings.Join(out, ",") != "nil,0,0,nil,nil" {
		t.Fatalf("fresh env state = %v, %v", out, err)
	}
}

func TestScriptRunsFileInSandbox(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "setup.lua")
	if err := os.WriteFile(path, []byte("loaded = true\nreturn 1 + 1, type(io)"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sb, rt := newSandbox(t, Options{Roots: []string{dir}})
	if _, err := sb.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}

	out, err := exec(t, rt, sb.Env(), "return script('setup.lua')")
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if strings.Join(out, ",") != "2,nil" {
		t.Fatalf("script results = %v", out)
	}
	if !slices.Contains(rt.Names(sb.Env()), "loaded") {
		t.Fatalf("script globals did not land in the sandbox")
	}

	if _, err := exec(t, rt, sb.Env(), "script('missing.lua')"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("missing script err = %v", err)
	}
}

func TestScriptSyntaxErrorRaises(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("x = = 1"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sb, rt := newSandbox(t, Options{BinDir: dir})
	if _, err := sb.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := exec(t, rt, sb.Env(), "script('bad.lua')"); err == nil {
		t.Fatalf("expected syntax error from script")
	}
}
