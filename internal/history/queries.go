package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ErrEmptyPath 表示存储路径未设置。
var ErrEmptyPath = errors.New("query history path is empty")

// Entry 是一条搜索记录，按 JSON Lines 追加保存。
type Entry struct {
	Query string    `json:"query"`
	TS    time.Time `json:"ts"`
}

// Store 保存 feed 搜索的历史查询。
type Store struct {
	Path string
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".feedview", "queries.jsonl"), nil
}

func NewDefault() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return &Store{Path: path}, nil
}

// Append 记录一次查询，空白查询被忽略。
func (s *Store) Append(query string) error {
	if s == nil || strings.TrimSpace(s.Path) == "" {
		return ErrEmptyPath
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(Entry{Query: query, TS: time.Now()})
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// Recent 返回最近的 limit 条不重复查询，最新的在前。文件不存在时返回空。
func (s *Store) Recent(limit int) ([]string, error) {
	if s == nil || strings.TrimSpace(s.Path) == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var all []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		if q := strings.TrimSpace(e.Query); q != "" {
			all = append(all, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out := []string{}
	for i := len(all) - 1; i >= 0; i-- {
		if slices.Contains(out, all[i]) {
			continue
		}
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
