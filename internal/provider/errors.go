package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPlatform means the request names a platform no adapter was
	// built for.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrUnsupportedSourceType means the adapter has no fetch routine for
	// the requested source type.
	ErrUnsupportedSourceType = errors.New("unsupported source type")

	// ErrUnsupportedSortMode means the request carries a sort mode the
	// adapter does not declare, for a source type where ordering matters.
	ErrUnsupportedSortMode = errors.New("unsupported sort mode")

	// ErrCancelled means the fetch was aborted by the caller's context.
	ErrCancelled = errors.New("fetch cancelled")
)

// InitError wraps an adapter construction failure. The manager omits the
// failed platform and returns the error for the caller to report.
type InitError struct {
	Platform string
	Err      error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Platform, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// FetchError wraps a provider-side failure that survived retries. Raw
// provider errors never cross the adapter boundary without this wrapper.
type FetchError struct {
	Platform string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s: %v", e.Platform, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
