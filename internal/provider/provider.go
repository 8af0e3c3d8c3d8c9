// Package provider implements the platform adapters and the manager that
// routes word-list requests to them. Each adapter owns one external
// platform's client handle, declares the source types and sort modes it
// supports, and turns raw platform items into a flat, order-preserving
// word list.
package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/akarpov/wordgrab/internal/request"
)

// Credentials is one platform's opaque credential bundle, passed verbatim
// to the adapter constructor. Adapters document the keys they expect.
type Credentials map[string]string

// Adapter fetches word lists from one external platform.
type Adapter interface {
	// Platform returns the adapter's registry key ("reddit", "twitter").
	Platform() string

	// SourceTypes returns the source types this adapter can fetch, sorted.
	SourceTypes() []string

	// SortModes returns the sort modes this adapter accepts, sorted. Empty
	// means the platform has no caller-selectable ordering.
	SortModes() []string

	// Fetch resolves the request to a fetch routine, pages through the
	// platform up to req.MaxItems raw items, and returns the flattened
	// word list. The result is never nil.
	Fetch(ctx context.Context, req request.Request) ([]string, error)
}

// fetchFunc is one source type's retrieval routine.
type fetchFunc func(ctx context.Context, req request.Request) ([]string, error)

// dispatcher holds an adapter's capability set and its static source-type
// dispatch table, built once at construction.
type dispatcher struct {
	platform  string
	handlers  map[string]fetchFunc
	sortModes map[string]struct{}
	sortable  map[string]struct{} // source types where a sort mode is meaningful
}

func (d *dispatcher) sourceTypes() []string {
	types := make([]string, 0, len(d.handlers))
	for st := range d.handlers {
		types = append(types, st)
	}
	sort.Strings(types)
	return types
}

func (d *dispatcher) sortModeList() []string {
	modes := make([]string, 0, len(d.sortModes))
	for m := range d.sortModes {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// fetch validates the request against the capability set and invokes the
// matching routine. Validation happens before any network call.
func (d *dispatcher) fetch(ctx context.Context, req request.Request) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	handler, ok := d.handlers[req.SourceType]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", d.platform, req.SourceType, ErrUnsupportedSourceType)
	}

	if req.Sort != "" {
		if _, meaningful := d.sortable[req.SourceType]; meaningful {
			if _, ok := d.sortModes[req.Sort]; !ok {
				return nil, fmt.Errorf("%s: %q: %w", d.platform, req.Sort, ErrUnsupportedSortMode)
			}
		}
		// Sort is ignored for source types that have no ordering.
	}

	if req.MaxItems == 0 {
		return []string{}, nil
	}

	words, err := handler(ctx, req)
	if err != nil {
		return nil, err
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

// cancelErr translates a context failure into the adapter error taxonomy.
func cancelErr(ctx context.Context) error {
	return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
}
