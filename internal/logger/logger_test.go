package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestPlainFormatter_TypePrefixAndFieldSkipping(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	cases := []struct {
		name    string
		data    logrus.Fields
		message string
		want    string
	}{
		{
			name: "with type",
			data: logrus.Fields{
				"component": "repl",
				"type":      "incomplete",
				"caller":    "x.go:1",
				"bytes":     12,
				"lines":     2,
			},
			message: "waiting for continuation",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] [repl] [type=incomplete] waiting for continuation bytes=12 lines=2\n",
		},
		{
			name: "env id shortened",
			data: logrus.Fields{
				"component": "sandbox",
				"caller":    "x.go:1",
				"env":       "0f8c2a1e-9d5b-4c1e-a3f0-6b7d2e8c9a10",
			},
			message: "sandbox created",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] [sandbox] [env=0f8c2a1e] sandbox created\n",
		},
		{
			name: "without type",
			data: logrus.Fields{
				"component": "console",
				"caller":    "x.go:1",
				"foo":       "bar",
			},
			message: "hello",
			want:    "x.go:1 [2025-01-02T03:04:05Z] [INFO] [console] hello foo=bar\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Logger:  logrus.New(),
				Time:    ts,
				Level:   logrus.InfoLevel,
				Message: tc.message,
				Data:    tc.data,
			}
			out, err := (PlainFormatter{}).Format(entry)
			if err != nil {
				t.Fatalf("Format() error: %v", err)
			}
			got := string(out)
			if got != tc.want {
				t.Fatalf("unexpected format:\nwant: %q\ngot:  %q", tc.want, got)
			}
			if _, ok := tc.data["type"]; ok {
				if strings.Count(got, "type=incomplete") != 1 {
					t.Fatalf("expected type to appear only once in output, got: %q", got)
				}
			}
		})
	}
}

func TestScriptLogWritesPrintAndWarning(t *testing.T) {
	var out bytes.Buffer
	l := logrus.New()
	l.SetOutput(&out)
	l.SetFormatter(PlainFormatter{})

	log := NewScriptLog(logrus.NewEntry(l).WithField("component", "lua"))
	log.Print("line one\nline two")
	log.Warn("low fuel")

	got := out.String()
	if !strings.Contains(got, `[lua] line one\nline two`) {
		t.Fatalf("print not mirrored: %q", got)
	}
	if !strings.Contains(got, "[WARNING] [lua] Warning: low fuel") {
		t.Fatalf("warning missing: %q", got)
	}
}

func TestSetupComponentFileWritesOwnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lua.log")
	entry, closer, resolved, err := SetupComponentFile("lua", path)
	if err != nil {
		t.Fatalf("SetupComponentFile: %v", err)
	}
	if !filepath.IsAbs(resolved) {
		t.Fatalf("resolved path %q is not absolute", resolved)
	}
	entry.Info("hello from lua")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "[lua] hello from lua") {
		t.Fatalf("log content = %q", data)
	}
}
