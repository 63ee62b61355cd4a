package cache

import (
	"context"
	"sync"

	"econdash/model"
)

// Memory 进程内缓存
type Memory struct {
	mu    sync.RWMutex
	items map[string]Entry
}

// NewMemory 创建进程内缓存
func NewMemory() *Memory {
	return &Memory{items: make(map[string]Entry)}
}

func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[key]
	if !ok {
		return Entry{}, false, nil
	}
	return Entry{Data: model.Clone(e.Data), Timestamp: e.Timestamp}, true, nil
}

func (m *Memory) Set(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = Entry{Data: model.Clone(e.Data), Timestamp: e.Timestamp}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Len 条目数量
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
