package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lua-console/internal/buffer"
)

var (
	ErrNoPath   = errors.New("history store path is empty")
	ErrNilStore = errors.New("history store is nil")
)

// Entry 是一条提交记录。Cont 表示这一行是某条未完成语句的续行。
type Entry struct {
	Text string    `json:"text"`
	Cont bool      `json:"cont,omitempty"`
	TS   time.Time `json:"ts"`
}

// Line 把记录还原成缓冲里的输入行。
func (e Entry) Line() buffer.Line {
	if e.Cont {
		return buffer.Continuation(e.Text)
	}
	return buffer.UserInput(e.Text)
}

// Store 是 JSONL 格式的提交历史，每行一个 Entry。
type Store struct {
	Path string
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

func (s *Store) check() error {
	if s == nil {
		return ErrNilStore
	}
	if strings.TrimSpace(s.Path) == "" {
		return ErrNoPath
	}
	return nil
}

// Append 追加一行。空白行不记录，缩进原样保留。
func (s *Store) Append(text string, cont bool) error {
	if err := s.check(); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	data, err := json.Marshal(Entry{Text: text, Cont: cont, TS: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	_, err = f.Write(append(data, '\n'))
	return err
}

// Load 返回最近 limit 条记录（limit <= 0 表示全部），旧的在前。
// 坏行跳过；文件不存在不是错误。
func (s *Store) Load(limit int) ([]Entry, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	// 只保留末尾 limit 条，文件再长也不会整个留在内存里。
	var ring []Entry
	next := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e Entry
		if json.Unmarshal(scanner.Bytes(), &e) != nil || strings.TrimSpace(e.Text) == "" {
			continue
		}
		if limit <= 0 || len(ring) < limit {
			ring = append(ring, e)
			continue
		}
		ring[next] = e
		next = (next + 1) % limit
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return append(ring[next:], ring[:next]...), nil
}
