package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogEntry 是各组件持有的日志入口。
type LogEntry = logrus.Entry

const (
	DefaultLogPath = "logs/lua-console.log"
	// DefaultScriptLogPath 收 print 镜像与 warn。
	DefaultScriptLogPath = "logs/lua.log"
)

// envIDLen 是日志里显示的环境 id 前缀长度。
const envIDLen = 8

var rootLogger = logrus.StandardLogger()

func Configure() {
	rootLogger.SetReportCaller(true)
	rootLogger.SetFormatter(PlainFormatter{})
}

// SetupFile 把主日志写到 logPath（空则用 DefaultLogPath）。
func SetupFile(logPath string) (io.Closer, string, error) {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	f, resolved, err := openLogFile(logPath)
	if err != nil {
		return nil, "", err
	}
	rootLogger.SetOutput(f)
	return f, resolved, nil
}

// SetupComponentFile 为 component 单开一个日志文件，级别跟随主日志。
func SetupComponentFile(component, logPath string) (*LogEntry, io.Closer, string, error) {
	if logPath == "" {
		logPath = DefaultScriptLogPath
	}
	f, resolved, err := openLogFile(logPath)
	if err != nil {
		return nil, nil, "", err
	}
	l := logrus.New()
	l.SetLevel(rootLogger.GetLevel())
	l.SetReportCaller(true)
	l.SetFormatter(PlainFormatter{})
	l.SetOutput(f)
	return withComponent(logrus.NewEntry(l), component), f, resolved, nil
}

func Named(component string) *LogEntry {
	return withComponent(logrus.NewEntry(rootLogger), component)
}

// Discard returns an entry that drops everything; handy in tests.
func Discard() *LogEntry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func Infof(format string, args ...any)  { rootLogger.Infof(format, args...) }
func Warnf(format string, args ...any)  { rootLogger.Warnf(format, args...) }
func Fatalf(format string, args ...any) { rootLogger.Fatalf(format, args...) }

func withComponent(entry *LogEntry, component string) *LogEntry {
	if component == "" {
		return entry
	}
	return entry.WithField("component", component)
}

// PlainFormatter 输出一行：caller [ts] [LEVEL] [component] [env=xxxxxxxx] [type=x] msg k=v。
type PlainFormatter struct{}

func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return []byte{}, nil
	}
	var b strings.Builder
	if caller := formatCaller(entry); caller != "" {
		b.WriteString(caller)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] [%s]", entry.Time.UTC().Format(time.RFC3339Nano), strings.ToUpper(entry.Level.String()))
	if val, ok := entry.Data["component"].(string); ok && val != "" {
		fmt.Fprintf(&b, " [%s]", val)
	}
	if val, ok := entry.Data["env"].(string); ok && val != "" {
		if len(val) > envIDLen {
			val = val[:envIDLen]
		}
		fmt.Fprintf(&b, " [env=%s]", val)
	}
	if val, ok := entry.Data["type"]; ok {
		fmt.Fprintf(&b, " [type=%v]", val)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	if fields := formatFields(entry.Data); fields != "" {
		b.WriteByte(' ')
		b.WriteString(fields)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func formatCaller(entry *logrus.Entry) string {
	if entry.HasCaller() && entry.Caller != nil {
		return fmt.Sprintf("%s:%d", shortenFilePath(entry.Caller.File), entry.Caller.Line)
	}
	if caller, ok := entry.Data["caller"].(string); ok {
		return caller
	}
	return ""
}

// formatFields 按键名排序输出其余字段；已经单独渲染的键跳过。
func formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		switch k {
		case "component", "caller", "type", "env":
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return strings.Join(parts, " ")
}

func shortenFilePath(file string) string {
	file = filepath.ToSlash(file)
	for _, marker := range []string{"/internal/", "/cmd/"} {
		if idx := strings.Index(file, marker); idx != -1 {
			return file[idx+1:]
		}
	}
	return filepath.Base(file)
}

// openLogFile 以追加方式打开日志，返回文件与绝对路径（取不到时原样返回）。
func openLogFile(logPath string) (*os.File, string, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("open log file: %w", err)
	}
	if abs, err := filepath.Abs(logPath); err == nil {
		logPath = abs
	}
	return f, logPath, nil
}
