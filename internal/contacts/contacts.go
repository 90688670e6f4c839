// Package contacts provides the contact directory consumed by name
// resolution: a flat list of display names, loadable from YAML or supplied
// inline.
package contacts

import (
	"context"
	"strings"
	"sync"
)

// Directory enumerates candidate contact display names. Implementations
// must be safe for concurrent use.
type Directory interface {
	// Names returns every known display name. The returned slice is owned
	// by the caller. An empty slice is valid and means free-form names are
	// accepted downstream.
	Names(ctx context.Context) ([]string, error)
}

// Static is an in-memory [Directory]. The zero value is an empty directory.
type Static struct {
	mu    sync.RWMutex
	names []string
}

// Compile-time assertion that Static satisfies the Directory interface.
var _ Directory = (*Static)(nil)

// NewStatic returns a Static directory seeded with names. Blank entries are
// dropped and surrounding whitespace is trimmed.
func NewStatic(names []string) *Static {
	s := &Static{}
	s.Replace(names)
	return s
}

// Names implements [Directory].
func (s *Static) Names(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out, nil
}

// Replace swaps the full name list, e.g. after a directory re-sync.
func (s *Static) Replace(names []string) {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if t := strings.TrimSpace(n); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	s.mu.Lock()
	s.names = cleaned
	s.mu.Unlock()
}
