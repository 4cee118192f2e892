package buffer

// Kind 标记一行输出的来源。只有用户输入的行会被历史导航召回。
type Kind int

const (
	KindInfo Kind = iota
	KindUserInput
	KindContinuation
	KindResult
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindUserInput:
		return "input"
	case KindContinuation:
		return "continuation"
	case KindResult:
		return "result"
	case KindError:
		return "error"
	default:
		return "info"
	}
}

// Line 是追加后不可变的一行控制台输出。
type Line struct {
	Kind Kind
	Text string
}

func UserInput(text string) Line    { return Line{Kind: KindUserInput, Text: text} }
func Continuation(text string) Line { return Line{Kind: KindContinuation, Text: text} }
func Result(text string) Line       { return Line{Kind: KindResult, Text: text} }
func Error(text string) Line        { return Line{Kind: KindError, Text: text} }
func Info(text string) Line         { return Line{Kind: KindInfo, Text: text} }

// UserMarked reports whether the line echoes text the user typed.
func (l Line) UserMarked() bool {
	return l.Kind == KindUserInput || l.Kind == KindContinuation
}

// Display 返回带输入提示符的显示文本。
func (l Line) Display() string {
	switch l.Kind {
	case KindUserInput:
		return "> " + l.Text
	case KindContinuation:
		return ">> " + l.Text
	default:
		return l.Text
	}
}
