package buffer

import "testing"

func TestAppendKeepsOrderAndMovesCursor(t *testing.T) {
	b := New()
	if b.Cursor() != -1 {
		t.Fatalf("cursor on empty buffer = %d, want -1", b.Cursor())
	}
	texts := []string{"one", "", "three"}
	for i, text := range texts {
		before := b.Len()
		idx := b.Append(Result(text))
		if b.Len() != before+1 {
			t.Fatalf("Len after append = %d, want %d", b.Len(), before+1)
		}
		if idx != i || b.Cursor() != i {
			t.Fatalf("append %d: idx=%d cursor=%d", i, idx, b.Cursor())
		}
	}
	for i, text := range texts {
		line, ok := b.At(i)
		if !ok || line.Text != text {
			t.Fatalf("At(%d) = %q,%v want %q", i, line.Text, ok, text)
		}
	}
}

func TestSetCursorClamps(t *testing.T) {
	b := New()
	b.Append(Info("a"))
	b.Append(Info("b"))

	b.SetCursor(10)
	if b.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", b.Cursor())
	}
	b.SetCursor(-5)
	if b.Cursor() != -1 {
		t.Fatalf("cursor = %d, want -1", b.Cursor())
	}
}

func TestTailYieldsNewestFirstWithinViewport(t *testing.T) {
	b := New()
	for _, s := range []string{"a", "b", "c", "d"} {
		b.Append(Result(s))
	}

	var got []string
	var rows []int
	for row, line := range b.Tail(6, 2) {
		rows = append(rows, row)
		got = append(got, line.Text)
	}
	want := []string{"d", "c", "b"}
	if len(got) != len(want) {
		t.Fatalf("Tail = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] || rows[i] != i {
			t.Fatalf("Tail[%d] = (%d,%q), want (%d,%q)", i, rows[i], got[i], i, want[i])
		}
	}

	// 可重复迭代且不修改缓冲。
	n := 0
	for range b.Tail(100, 1) {
		n++
	}
	if n != 4 || b.Len() != 4 || b.Cursor() != 3 {
		t.Fatalf("second pass n=%d len=%d cursor=%d", n, b.Len(), b.Cursor())
	}
}

func TestClear(t *testing.T) {
	b := New()
	b.Append(Info("x"))
	b.Clear()
	if b.Len() != 0 || b.Cursor() != -1 {
		t.Fatalf("after Clear len=%d cursor=%d", b.Len(), b.Cursor())
	}
}

func TestDisplayPrefixes(t *testing.T) {
	cases := map[Line]string{
		UserInput("1+1"):    "> 1+1",
		Continuation("end"): ">> end",
		Result("2"):         "2",
		Error("oops"):       "oops",
	}
	for line, want := range cases {
		if got := line.Display(); got != want {
			t.Fatalf("Display(%v) = %q, want %q", line, got, want)
		}
	}
	if !UserInput("x").UserMarked() || !Continuation("x").UserMarked() || Result("x").UserMarked() {
		t.Fatalf("UserMarked classification is wrong")
	}
}
