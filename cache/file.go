package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeKeyRe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

type persistedEntry struct {
	Version int    `json:"version"`
	Key     string `json:"key"`
	Entry   Entry  `json:"entry"`
}

// FileStore 每个键一个 JSON 文件
type FileStore struct {
	dir string
}

// NewFileStore 创建文件缓存，目录不存在时自动创建
func NewFileStore(dir string) (*FileStore, error) {
	d := strings.TrimSpace(dir)
	if d == "" {
		return nil, fmt.Errorf("cache dir is empty")
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: d}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, unsafeKeyRe.ReplaceAllString(key, "_")+".json")
}

func (s *FileStore) Get(_ context.Context, key string) (Entry, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return Entry{}, false, nil
	}

	var v persistedEntry
	if err := json.Unmarshal(b, &v); err != nil {
		return Entry{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v.Entry, true, nil
}

func (s *FileStore) Set(_ context.Context, key string, e Entry) error {
	b, err := json.MarshalIndent(persistedEntry{Version: 1, Key: key, Entry: e}, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	// 先写临时文件再改名
	tmp, err := os.CreateTemp(s.dir, ".cache-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(b); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path(key))
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
