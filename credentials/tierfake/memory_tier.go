package tierfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/viteviteapp/credentials"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
)

var _ credentials.Tier = (*MemoryTier)(nil)

// MemoryTier keeps credential fields in a map. It backs the ephemeral tier
// (values live as long as the process) and stands in for durable tiers in tests.
type MemoryTier struct {
	name     string
	durable  bool
	values   map[string]string
	replaces int
	failing  bool
	lock     sync.RWMutex
}

func NewMemoryTier(name string, durable bool) *MemoryTier {
	return &MemoryTier{
		name:    name,
		durable: durable,
		values:  make(map[string]string),
	}
}

func (m *MemoryTier) Name() string {
	return m.name
}

func (m *MemoryTier) Durable() bool {
	return m.durable
}

func (m *MemoryTier) Load(_ context.Context) (map[string]string, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.failing {
		return nil, m.unavailable()
	}
	values := make(map[string]string, len(m.values))
	for k, v := range m.values {
		values[k] = v
	}
	return values, nil
}

func (m *MemoryTier) Replace(_ context.Context, values map[string]string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.failing {
		return m.unavailable()
	}
	m.values = make(map[string]string, len(values))
	for k, v := range values {
		m.values[k] = v
	}
	m.replaces++
	return nil
}

func (m *MemoryTier) Clear(_ context.Context) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.failing {
		return m.unavailable()
	}
	m.values = make(map[string]string)
	return nil
}

// SetFailing makes every operation report an unavailable medium
func (m *MemoryTier) SetFailing(failing bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.failing = failing
}

// Replaces counts successful Replace calls
func (m *MemoryTier) Replaces() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.replaces
}

// Len returns the number of stored fields
func (m *MemoryTier) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.values)
}

func (m *MemoryTier) unavailable() error {
	return fmt.Errorf("%s tier: %w", m.name, apperrors.ErrStorageUnavailable)
}
