package buffer

import "iter"

// Buffer 是控制台的滚动缓冲：只追加、顺序稳定，直到 Clear 为止。
//
// cursor 是历史浏览位置，始终满足 -1 <= cursor < Len()；每次 Append 都会把它
// 移到新行上，因此提交新输入会自动结束历史浏览。
type Buffer struct {
	lines  []Line
	cursor int
}

func New() *Buffer {
	return &Buffer{cursor: -1}
}

// Append 追加一行并返回其下标。
func (b *Buffer) Append(line Line) int {
	b.lines = append(b.lines, line)
	b.cursor = len(b.lines) - 1
	return b.cursor
}

func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}

func (b *Buffer) At(i int) (Line, bool) {
	if b == nil || i < 0 || i >= len(b.lines) {
		return Line{}, false
	}
	return b.lines[i], true
}

// Lines returns a copy of every stored line.
func (b *Buffer) Lines() []Line {
	if b == nil {
		return nil
	}
	return append([]Line(nil), b.lines...)
}

func (b *Buffer) Cursor() int {
	if b == nil {
		return -1
	}
	return b.cursor
}

// SetCursor 设置历史位置，越界时收敛到 [-1, Len())。
func (b *Buffer) SetCursor(i int) {
	if i < -1 {
		i = -1
	}
	if i >= len(b.lines) {
		i = len(b.lines) - 1
	}
	b.cursor = i
}

// Clear 释放所有行，仅用于会话销毁。
func (b *Buffer) Clear() {
	b.lines = nil
	b.cursor = -1
}

// Tail 按从下到上的顺序产出能放进视口的最新若干行，row 为距底部的行号
// （0 为最底行）。纯读取，可重复迭代。
func (b *Buffer) Tail(viewportHeight, lineHeight int) iter.Seq2[int, Line] {
	return func(yield func(int, Line) bool) {
		if b == nil || viewportHeight <= 0 {
			return
		}
		if lineHeight <= 0 {
			lineHeight = 1
		}
		rows := viewportHeight / lineHeight
		for row := 0; row < rows; row++ {
			i := len(b.lines) - 1 - row
			if i < 0 {
				return
			}
			if !yield(row, b.lines[i]) {
				return
			}
		}
	}
}
