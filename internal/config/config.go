package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// DefaultMaxInput 是单条语句（含续行）允许累积的最大字符数。
const DefaultMaxInput = 1024

// Config 是持久化配置的结构；环境变量 LUA_CONSOLE_* 覆盖文件中的值。
type Config struct {
	MaxInput       int      `toml:"max_input" env:"LUA_CONSOLE_MAX_INPUT"`
	HistoryPath    string   `toml:"history_path" env:"LUA_CONSOLE_HISTORY_PATH"`
	RestoreHistory bool     `toml:"restore_history" env:"LUA_CONSOLE_RESTORE_HISTORY"`
	HistoryLimit   int      `toml:"history_limit" env:"LUA_CONSOLE_HISTORY_LIMIT"`
	ScriptRoots    []string `toml:"script_roots" env:"LUA_CONSOLE_SCRIPT_ROOTS" envSeparator:":"`
	LogPath        string   `toml:"log_path" env:"LUA_CONSOLE_LOG_PATH"`
	ScriptLogPath  string   `toml:"script_log_path" env:"LUA_CONSOLE_SCRIPT_LOG_PATH"`
	AppName        string   `toml:"app_name" env:"LUA_CONSOLE_APP_NAME"`
	AppVersion     string   `toml:"app_version" env:"LUA_CONSOLE_APP_VERSION"`
	LineHeight     int      `toml:"line_height" env:"LUA_CONSOLE_LINE_HEIGHT"`
	AltScreen      bool     `toml:"alt_screen" env:"LUA_CONSOLE_ALT_SCREEN"`
	Source         string   `toml:"-"`
}

func Default() Config {
	return Config{
		MaxInput:       DefaultMaxInput,
		RestoreHistory: true,
		HistoryLimit:   500,
		LogPath:        "logs/lua-console.log",
		ScriptLogPath:  "logs/lua.log",
		AppName:        "Lua Console",
		AppVersion:     "0.1.0",
		LineHeight:     1,
		AltScreen:      true,
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lua-console", "config.toml")
}

// DefaultHistoryPath 是提交历史的默认保存位置。
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lua-console", "history.jsonl")
}

// Load 读取 path（为空时使用 DefaultPath），再应用环境变量覆盖。
// 文件不存在不是错误。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	if c.MaxInput <= 0 {
		c.MaxInput = DefaultMaxInput
	}
	if c.LineHeight <= 0 {
		c.LineHeight = 1
	}
	if c.HistoryLimit < 0 {
		c.HistoryLimit = 0
	}
	if c.HistoryPath == "" {
		c.HistoryPath = DefaultHistoryPath()
	}
	return c
}
