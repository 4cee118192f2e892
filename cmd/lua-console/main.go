package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"lua-console/internal/config"
	"lua-console/internal/console"
	"lua-console/internal/history"
	"lua-console/internal/logger"
	"lua-console/internal/script"
	"lua-console/internal/tui"

	"github.com/mattn/go-isatty"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	logger.Configure()

	args, err := parseArgs(argv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(args.cfgPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, []string(args.configOverrides))
	cfg.ScriptRoots = append(cfg.ScriptRoots, args.roots...)

	if args.writeConfig {
		if err := config.Save(cfg.Source, cfg); err != nil {
			logger.Warnf("failed to write config: %v", err)
			return 1
		}
		logger.Infof("config written to %s", cfg.Source)
		return 0
	}

	if logFile, _, err := logger.SetupFile(cfg.LogPath); err != nil {
		logger.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}
	scriptLog := logger.NewScriptLog(nil)
	if entry, closer, path, err := logger.SetupComponentFile("lua", cfg.ScriptLogPath); err != nil {
		logger.Warnf("failed to initialize script log (%s): %v", cfg.ScriptLogPath, err)
	} else {
		scriptLog = logger.NewScriptLog(entry)
		defer closer.Close()
		logger.Infof("script log: %s", path)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *history.Store
	if !args.noHistory && args.interactive() && cfg.HistoryPath != "" {
		store = history.NewStore(cfg.HistoryPath)
	}
	session := console.New(console.Options{
		Runtime:   script.New(),
		Config:    cfg,
		History:   store,
		ScriptLog: scriptLog,
		BinDir:    binDir(),
		Log:       logger.Named("console"),
	})
	defer session.Exit()
	logger.Infof("lua-console starting (config %s)", cfg.Source)

	if !args.interactive() {
		var stdin io.Reader
		if args.headless {
			stdin = os.Stdin
		}
		// 终端里敲的行已经可见，只回显管道输入。
		fd := os.Stdin.Fd()
		echo := !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
		failed, err := runHeadless(ctx, session, []string(args.exec), stdin, echo, os.Stdout)
		if err != nil {
			logger.Warnf("headless run: %v", err)
			return 1
		}
		if failed {
			return 1
		}
		return 0
	}

	if err := tui.Run(tui.Options{
		Session:   session,
		Context:   ctx,
		AltScreen: cfg.AltScreen,
		Log:       logger.Named("tui"),
	}); err != nil {
		logger.Warnf("tui exited with error: %v", err)
		return 1
	}
	return 0
}

// binDir 是 script() 的后备查找目录。
func binDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}
