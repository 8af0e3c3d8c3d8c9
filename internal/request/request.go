// Package request defines the descriptor that callers hand to the provider
// manager: which platform to query, what kind of source within it, and how
// much to fetch.
package request

import (
	"errors"
	"fmt"
	"time"
)

// Window is an inclusive time bound on fetched items. A zero End means no
// upper bound.
type Window struct {
	Start time.Time
	End   time.Time
}

// Request describes a single word-list fetch. It is constructed once and
// passed by value; adapters must never mutate it.
type Request struct {
	Platform    string         // provider identifier, lowercase ("reddit", "twitter")
	SourceType  string         // provider-specific origin kind ("subreddit", "hashtag", ...)
	SourceValue string         // identifier within the source type (subreddit name, username, post id)
	MaxItems    int            // upper bound on raw items consumed; 0 means fetch nothing
	Window      *Window        // optional inclusive time bound
	Sort        string         // provider-specific ordering, empty for provider default
	Options     map[string]any // adapter-specific flags; unknown keys are ignored
}

// Validate checks the adapter-independent parts of the descriptor. Source
// type and sort mode membership are the adapter's business and are checked
// at dispatch time.
func (r Request) Validate() error {
	if r.Platform == "" {
		return errors.New("platform is required")
	}
	if r.SourceType == "" {
		return errors.New("source type is required")
	}
	if r.SourceValue == "" {
		return errors.New("source value is required")
	}
	if r.MaxItems < 0 {
		return fmt.Errorf("max items must be >= 0, got %d", r.MaxItems)
	}
	if r.Window != nil && !r.Window.End.IsZero() && r.Window.End.Before(r.Window.Start) {
		return fmt.Errorf("time window end %s is before start %s",
			r.Window.End.Format(time.RFC3339), r.Window.Start.Format(time.RFC3339))
	}
	return nil
}

// BoolOption reads a boolean flag from Options. Missing keys and values of
// other types read as false.
func (r Request) BoolOption(key string) bool {
	v, ok := r.Options[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// InWindow reports whether ts falls inside the request's time window.
// Requests without a window accept everything.
func (r Request) InWindow(ts time.Time) bool {
	if r.Window == nil {
		return true
	}
	if ts.Before(r.Window.Start) {
		return false
	}
	if !r.Window.End.IsZero() && ts.After(r.Window.End) {
		return false
	}
	return true
}
