package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// ScriptLog 是脚本侧的“程序日志”：镜像 print 的输出和 warn 的告警。
// 控制台缓冲之外的第二通道，相当于原生程序的 stderr。
type ScriptLog interface {
	Print(text string)
	Warn(msg string)
}

// StdScriptLog 使用 logrus 输出脚本日志。
type StdScriptLog struct {
	entry *logrus.Entry
}

// NewScriptLog 构造写入 entry 的脚本日志；entry 为 nil 时使用全局 logger。
func NewScriptLog(entry *LogEntry) *StdScriptLog {
	if entry == nil {
		entry = Named("lua")
	}
	return &StdScriptLog{entry: entry}
}

// Print 记录一段被 print 镜像的文本。
func (l *StdScriptLog) Print(text string) {
	if l == nil || l.entry == nil {
		return
	}
	l.entry.Info(sanitize(text))
}

// Warn 记录 "Warning: <msg>"。
func (l *StdScriptLog) Warn(msg string) {
	if l == nil || l.entry == nil {
		return
	}
	l.entry.Warn("Warning: " + sanitize(msg))
}

// NoopScriptLog 忽略所有输出。
type NoopScriptLog struct{}

func (NoopScriptLog) Print(string) {}
func (NoopScriptLog) Warn(string)  {}

func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return text
}
