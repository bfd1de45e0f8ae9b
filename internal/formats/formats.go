// Package formats maintains the registry of input format handlers.
//
// Each handler knows how to detect and parse one source format into the
// canonical model. Handlers register themselves from their package init,
// so importing a handler package is what makes its format available; the
// CLI and API import every shipped handler.
package formats

import (
	"sort"
	"sync"

	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
)

// Handler detects and parses one source format.
type Handler interface {
	// Name is the short format identifier (e.g., "ged", "gedcomx").
	Name() string

	// Detect reports whether the buffer looks like this format. Detection
	// is a cheap structural sniff, not a full parse.
	Detect(data []byte) bool

	// Parse converts the buffer into the canonical model.
	Parse(data []byte) (*gedcom.ParseResult, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Handler{}
	order    []string // registration order, used for detection priority
)

// Register adds a handler to the registry. Later registrations with the
// same name replace earlier ones.
func Register(h Handler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[h.Name()]; !exists {
		order = append(order, h.Name())
	}
	registry[h.Name()] = h
}

// Lookup returns the handler registered under name.
func Lookup(name string) (Handler, error) {
	mu.RLock()
	defer mu.RUnlock()
	h, ok := registry[name]
	if !ok {
		return nil, errors.NewUnsupported("format", name)
	}
	return h, nil
}

// DetectHandler returns the first registered handler whose Detect accepts
// the buffer, in registration order.
func DetectHandler(data []byte) (Handler, error) {
	mu.RLock()
	defer mu.RUnlock()
	for _, name := range order {
		if h := registry[name]; h.Detect(data) {
			return h, nil
		}
	}
	return nil, errors.NewUnsupported("format", "no handler recognizes this input")
}

// Names lists the registered format names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
