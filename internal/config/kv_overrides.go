package config

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "max_input", "max-input":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.MaxInput = n
			}
		case "history_path", "history":
			cfg.HistoryPath = val
		case "restore_history":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.RestoreHistory = b
			}
		case "history_limit":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.HistoryLimit = n
			}
		case "script_roots", "roots":
			cfg.ScriptRoots = filepath.SplitList(val)
		case "log_path":
			cfg.LogPath = val
		case "script_log_path":
			cfg.ScriptLogPath = val
		case "app_name":
			cfg.AppName = val
		case "app_version":
			cfg.AppVersion = val
		case "line_height":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.LineHeight = n
			}
		case "alt_screen":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.AltScreen = b
			}
		}
	}
	return cfg
}
