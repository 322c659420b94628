package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fiscalxml/processor/internal/model"
)

// Memory is an in-process store used by tests and dry runs.
type Memory struct {
	mu          sync.RWMutex
	docs        map[string]*model.Document // keyed by id
	byHash      map[string]string
	byAccessKey map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:        make(map[string]*model.Document),
		byHash:      make(map[string]string),
		byAccessKey: make(map[string]string),
	}
}

func (m *Memory) Insert(_ context.Context, doc *model.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byHash[doc.ContentHash]; ok {
		return "", model.ErrDuplicate
	}
	if doc.AccessKey != "" {
		if _, ok := m.byAccessKey[doc.AccessKey]; ok {
			return "", model.ErrDuplicate
		}
	}

	id := uuid.NewString()
	m.docs[id] = doc
	m.byHash[doc.ContentHash] = id
	if doc.AccessKey != "" {
		m.byAccessKey[doc.AccessKey] = id
	}
	return id, nil
}

func (m *Memory) ExistsHash(_ context.Context, hash string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byHash[hash]
	return ok, nil
}

func (m *Memory) ExistsAccessKey(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byAccessKey[key]
	return ok, nil
}

func (m *Memory) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{ByType: make(map[model.DocumentType]int64)}
	for _, doc := range m.docs {
		stats.Documents++
		stats.Items += int64(len(doc.Items))
		stats.ByType[doc.Type]++
		stats.TotalValue = stats.TotalValue.Add(doc.Totals.Grand)
	}
	return stats, nil
}

func (m *Memory) Close() error { return nil }
