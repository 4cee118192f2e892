package main

import (
	"flag"
	"io"
	"strings"
)

type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type csvSlice []string

func (s *csvSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *csvSlice) Set(v string) error {
	parts := strings.Split(v, ",")
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			*s = append(*s, trimmed)
		}
	}
	return nil
}

type consoleArgs struct {
	cfgPath         string
	configOverrides stringSlice
	exec            stringSlice
	roots           csvSlice
	headless        bool
	noHistory       bool
	writeConfig     bool
}

func parseArgs(args []string, output io.Writer) (consoleArgs, error) {
	fs := flag.NewFlagSet("lua-console", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	var parsed consoleArgs
	fs.StringVar(&parsed.cfgPath, "config", "", "Path to config file (default ~/.lua-console/config.toml)")
	fs.Var(&parsed.configOverrides, "c", "Override config value key=value (repeatable)")
	fs.Var(&parsed.exec, "e", "Run a Lua chunk in the console environment and exit (repeatable)")
	fs.Var(&parsed.roots, "roots", "Directories script() may load from (comma separated or repeatable)")
	fs.BoolVar(&parsed.headless, "headless", false, "Read Lua lines from stdin instead of starting the TUI")
	fs.BoolVar(&parsed.noHistory, "no-history", false, "Do not read or write the submission history file")
	fs.BoolVar(&parsed.writeConfig, "write-config", false, "Write the effective config (file, env and -c overrides) back to the config file and exit")
	if err := fs.Parse(args); err != nil {
		return consoleArgs{}, err
	}
	// 剩余参数当作要执行的脚本文件。
	for _, path := range fs.Args() {
		parsed.exec = append(parsed.exec, "script("+quoteLua(path)+")")
	}
	return parsed, nil
}

func (a consoleArgs) interactive() bool {
	return !a.headless && len(a.exec) == 0
}

// quoteLua 生成 Lua 长字符串字面量，避免转义问题。
func quoteLua(s string) string {
	level := ""
	for strings.Contains(s, "]"+level+"]") {
		level += "="
	}
	return "[" + level + "[" + s + "]" + level + "]"
}
