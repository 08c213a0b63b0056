package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/dataready/internal/interview"
)

// Memory is an in-process SessionRepo. Sessions are deep-copied on the way
// in and out so callers never share state with the map.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
	updated  map[string]time.Time
}

// NewMemory returns an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]*interview.Session),
		updated:  make(map[string]time.Time),
	}
}

func (m *Memory) Save(_ context.Context, s *interview.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	m.updated[s.ID] = time.Now()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*interview.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return s.Clone(), nil
}

func (m *Memory) List(_ context.Context, opts ListOpts) ([]SessionSummary, error) {
	m.mu.RLock()
	out := make([]SessionSummary, 0, len(m.sessions))
	for id, s := range m.sessions {
		if opts.State != "" && s.State != opts.State {
			continue
		}
		out = append(out, summarize(s, m.updated[id]))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	delete(m.sessions, id)
	delete(m.updated, id)
	return nil
}
