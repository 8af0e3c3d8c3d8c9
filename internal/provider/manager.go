package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/akarpov/wordgrab/internal/request"
)

// Manager owns one adapter per configured platform and routes requests to
// them. The adapter map is populated once in NewManager and read-only
// afterwards, so concurrent Dispatch calls need no locking.
type Manager struct {
	adapters map[string]Adapter
}

// NewManager builds an adapter for every platform in creds that has a
// registered constructor and is not excluded. Platforms without a
// registered adapter type are skipped silently: callers may hold
// credentials for platforms this build does not implement.
//
// Construction is fail-soft: a platform whose constructor fails is omitted
// from the manager and its *InitError is returned for the caller to report.
// The manager itself is always usable.
func NewManager(creds map[string]Credentials, exclude []string) (*Manager, []error) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}

	m := &Manager{adapters: make(map[string]Adapter, len(creds))}
	var errs []error

	// Deterministic construction order keeps init error reporting stable.
	names := make([]string, 0, len(creds))
	for name := range creds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fn, ok := registry[name]
		if !ok {
			continue
		}
		if _, skip := excluded[name]; skip {
			continue
		}
		adapter, err := fn(creds[name])
		if err != nil {
			errs = append(errs, &InitError{Platform: name, Err: err})
			continue
		}
		m.adapters[name] = adapter
	}

	return m, errs
}

// Dispatch validates the descriptor, resolves the target adapter, and
// delegates the fetch. All source-type and sort-mode checks happen inside
// the adapter so adapters stay independently testable.
func (m *Manager) Dispatch(ctx context.Context, req request.Request) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	adapter, ok := m.adapters[req.Platform]
	if !ok {
		return nil, fmt.Errorf("%q: %w", req.Platform, ErrUnknownPlatform)
	}
	return adapter.Fetch(ctx, req)
}

// Adapter returns the live adapter for a platform, if one was built.
func (m *Manager) Adapter(platform string) (Adapter, bool) {
	a, ok := m.adapters[platform]
	return a, ok
}

// Platforms returns the names of the adapters this manager holds, sorted.
func (m *Manager) Platforms() []string {
	names := make([]string, 0, len(m.adapters))
	for name := range m.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
