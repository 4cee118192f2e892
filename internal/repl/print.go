package repl

import (
	"strings"
	"unicode/utf8"

	"lua-console/internal/buffer"
	"lua-console/internal/logger"

	"github.com/Shopify/go-lua"
)

// printSeparator 连接同一次 print 调用中相邻的值。
const printSeparator = "   "

// Printer 实现控制台的 print/warn。
//
// 控制台专用的 print 只写缓冲；镜像版本（宿主全局 print 的覆盖）额外把每个
// 值写进脚本日志。warn 只写脚本日志，从不进入缓冲。
type Printer struct {
	buf     *buffer.Buffer
	maxLine int
	log     logger.ScriptLog
}

func NewPrinter(buf *buffer.Buffer, maxLine int, log logger.ScriptLog) *Printer {
	if maxLine <= 0 {
		maxLine = 1024
	}
	if log == nil {
		log = logger.NoopScriptLog{}
	}
	return &Printer{buf: buf, maxLine: maxLine, log: log}
}

// Print 把 values 以三个空格连接成行写入缓冲，行长达到上限时换行。
// 没有任何值时不写入。
func (p *Printer) Print(values []string, mirror bool) {
	if p == nil || p.buf == nil {
		return
	}
	var line strings.Builder
	pending := false
	for i, s := range values {
		if mirror {
			p.log.Print(s)
		}
		if i > 0 {
			line.WriteString(printSeparator)
		}
		line.WriteString(s)
		pending = true
		for line.Len() >= p.maxLine {
			head, rest := splitAt(line.String(), p.maxLine)
			p.buf.Append(buffer.Result(head))
			line.Reset()
			line.WriteString(rest)
			pending = rest != ""
		}
	}
	if pending {
		p.buf.Append(buffer.Result(line.String()))
	}
}

// Func 返回可注册进 Lua 的 print。参数按 tostring 规则转换。
func (p *Printer) Func(mirror bool) lua.Function {
	return func(l *lua.State) int {
		n := l.Top()
		values := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			s, _ := lua.ToStringMeta(l, i)
			l.Pop(1)
			values = append(values, s)
		}
		p.Print(values, mirror)
		return 0
	}
}

// Warn 是 Lua 侧的 warn(msg)。
func (p *Printer) Warn(l *lua.State) int {
	msg := lua.CheckString(l, 1)
	p.log.Warn(msg)
	return 0
}

// splitAt 在不超过 n 字节且不切断 UTF-8 字符的位置拆分 s。
func splitAt(s string, n int) (string, string) {
	if len(s) <= n {
		return s, ""
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		cut = n
	}
	return s[:cut], s[cut:]
}
