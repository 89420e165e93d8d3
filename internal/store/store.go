// Package store keeps the latest text of each document so a restarted
// authority can seed new sessions. Edit history is not stored.
package store

import (
	"context"
	"sync"
)

type Store interface {
	// Load returns the stored text; ok is false for an unknown document.
	Load(ctx context.Context, docId string) (text string, ok bool, err error)
	Save(ctx context.Context, docId, text string) error
	Close(ctx context.Context) error
}

type Memory struct {
	docs map[string]string
	sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]string)}
}

func (m *Memory) Load(_ context.Context, docId string) (string, bool, error) {
	m.RLock()
	defer m.RUnlock()
	text, ok := m.docs[docId]
	return text, ok, nil
}

func (m *Memory) Save(_ context.Context, docId, text string) error {
	m.Lock()
	m.docs[docId] = text
	m.Unlock()
	return nil
}

func (m *Memory) Close(context.Context) error {
	return nil
}
