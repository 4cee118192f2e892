package repl

import (
	"fmt"
	"io"
	"os"

	"lua-console/internal/buffer"
)

// Scrollback 把缓冲中新增的行按顺序写入终端（或任意 io.Writer），
// 供无界面模式使用。它只负责输出策略，不持有行本身。
type Scrollback struct {
	w    io.Writer
	next int
	// Echo 为 false 时跳过用户输入行（终端已经显示过用户敲的内容）。
	Echo bool
}

func NewScrollback(w io.Writer) *Scrollback {
	if w == nil {
		w = os.Stdout
	}
	return &Scrollback{w: w, Echo: true}
}

// Skip 把当前已有的行视为已写出。
func (s *Scrollback) Skip(buf *buffer.Buffer) {
	if s == nil || buf == nil {
		return
	}
	s.next = buf.Len()
}

// Flush 写出上次 Flush 之后追加的所有行，返回写出的行数。
func (s *Scrollback) Flush(buf *buffer.Buffer) (int, error) {
	if s == nil || buf == nil {
		return 0, nil
	}
	if s.next > buf.Len() {
		// 缓冲被清空过。
		s.next = 0
	}
	written := 0
	for ; s.next < buf.Len(); s.next++ {
		line, _ := buf.At(s.next)
		if !s.Echo && line.UserMarked() {
			continue
		}
		if _, err := fmt.Fprintln(s.w, line.Display()); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
