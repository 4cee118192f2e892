package history

import "lua-console/internal/buffer"

type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
)

// Input 是导航器需要的输入框能力。
type Input interface {
	SetValue(string)
	Reset()
}

// Navigator 在输出缓冲的用户输入行之间上下移动，游标就是缓冲自己的游标。
//
// 每次 Append 都会把游标移到最新一行，此时视为“未浏览”：Up 从游标本身
// 开始向前找。导航过后（且缓冲没有再增长）Up 从游标的上一行开始找。
type Navigator struct {
	buf    *buffer.Buffer
	active bool
	seen   int
}

func NewNavigator(buf *buffer.Buffer) *Navigator {
	return &Navigator{buf: buf}
}

// Browsing reports whether the cursor currently points at a recalled line.
func (n *Navigator) Browsing() bool {
	return n.active && n.seen == n.buf.Len()
}

// Handle 处理一个按键，返回 false 表示按键应交给输入框默认处理。
func (n *Navigator) Handle(key Key, in Input) bool {
	switch key {
	case KeyUp:
		return n.Up(in)
	case KeyDown:
		return n.Down(in)
	default:
		return false
	}
}

// Up 回到上一条用户输入。到达最早一条后不再移动，也不回绕。
func (n *Navigator) Up(in Input) bool {
	start := n.buf.Cursor()
	if n.Browsing() {
		start--
	}
	for i := start; i >= 0; i-- {
		if n.recall(i, in) {
			return true
		}
	}
	return true
}

// Down 前进到下一条用户输入；越过最新一条时清空输入框。
func (n *Navigator) Down(in Input) bool {
	last := n.buf.Len() - 1
	cur := n.buf.Cursor()
	if !n.Browsing() || cur >= last {
		n.active = false
		in.Reset()
		return true
	}
	for i := cur + 1; i <= last; i++ {
		if n.recall(i, in) {
			return true
		}
	}
	n.buf.SetCursor(last)
	n.active = false
	in.Reset()
	return true
}

func (n *Navigator) recall(i int, in Input) bool {
	line, ok := n.buf.At(i)
	if !ok || !line.UserMarked() {
		return false
	}
	n.buf.SetCursor(i)
	n.active = true
	n.seen = n.buf.Len()
	in.SetValue(line.Text)
	return true
}
