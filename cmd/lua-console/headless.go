package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"lua-console/internal/console"
	"lua-console/internal/repl"
)

// lineInput 是无界面模式下的输入框。
type lineInput struct {
	value string
}

func (l *lineInput) Value() string     { return l.value }
func (l *lineInput) SetValue(s string) { l.value = s }
func (l *lineInput) Reset()            { l.value = "" }

// runHeadless 依次提交 chunks，再（当 stdin 非 nil 时）逐行读取 stdin，
// 每次提交后把新产生的行写到 out。echoStdin 为 false 时不回显 stdin 的输入行。
// 返回值表示最后一次提交是否失败。
func runHeadless(ctx context.Context, session *console.Session, chunks []string, stdin io.Reader, echoStdin bool, out io.Writer) (bool, error) {
	if _, err := session.Open(); err != nil {
		return true, fmt.Errorf("open console: %w", err)
	}
	defer session.Close()

	sb := repl.NewScrollback(out)
	// 横幅只在交互界面显示。
	sb.Skip(session.Buffer())

	failed := false
	submit := func(text string) error {
		outcome := session.Submit(ctx, &lineInput{value: text})
		switch outcome {
		case repl.OutcomeCompileError, repl.OutcomeRuntimeError, repl.OutcomeResultPrintError, repl.OutcomeRejected, repl.OutcomeCancelled:
			failed = true
		case repl.OutcomeExecuted:
			failed = false
		}
		_, err := sb.Flush(session.Buffer())
		return err
	}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		if err := submit(chunk); err != nil {
			return true, err
		}
	}
	if stdin == nil {
		return failed, nil
	}

	sb.Echo = echoStdin
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		if err := submit(scanner.Text()); err != nil {
			return true, err
		}
	}
	if err := scanner.Err(); err != nil {
		return true, fmt.Errorf("read stdin: %w", err)
	}
	if session.Continuing() {
		fmt.Fprintln(out, "unfinished statement at end of input")
		return true, nil
	}
	return failed, nil
}
