// Package keyring stores the CLI session blob in the operating system
// keyring, with an in-memory implementation for tests.
package keyring

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when the requested key is absent.
var ErrNotFound = errors.New("key not found in keyring")

// serviceName namespaces BaseKit entries in the OS keyring.
const serviceName = "basekit"

// KeySession holds the cached session as a JSON blob.
const KeySession = "basekit-session"

// Store is the minimal secret-storage contract the CLI needs.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// System stores entries in the OS keyring.
type System struct{}

// NewSystem returns a Store backed by the OS keyring.
func NewSystem() *System {
	return &System{}
}

func (s *System) Set(key, value string) error {
	if err := keyring.Set(serviceName, key, value); err != nil {
		return fmt.Errorf("error storing keyring entry: %w", err)
	}
	return nil
}

func (s *System) Get(key string) (string, error) {
	value, err := keyring.Get(serviceName, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("error reading keyring entry: %w", err)
	}
	return value, nil
}

func (s *System) Delete(key string) error {
	err := keyring.Delete(serviceName, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("error deleting keyring entry: %w", err)
	}
	return nil
}

// Memory is an in-memory Store for tests.
type Memory struct {
	mu    sync.RWMutex
	store map[string]string
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{store: make(map[string]string)}
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.store[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}
