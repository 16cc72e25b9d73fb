package hotswap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ZenLiuCN/sdutils"
)

var ErrNotRegistered = errors.New("module not registered")

// Loader is a [sdutils.Loader] over providers registered by name.
type Loader struct {
	mu        sync.RWMutex
	providers map[string]sdutils.Provider
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{providers: make(map[string]sdutils.Provider)}
}

// Register p under name, replacing any previous provider.
func (l *Loader) Register(name string, p sdutils.Provider) *Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.providers[name] = p
	return l
}

// Acquire implements [sdutils.Loader].
func (l *Loader) Acquire(name string) (sdutils.Provider, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return p, nil
}
