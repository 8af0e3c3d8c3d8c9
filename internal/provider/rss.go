package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/akarpov/wordgrab/internal/request"
)

const (
	rssPlatform = "rss"
	rssTimeout  = 30 * time.Second
)

func init() {
	register(rssPlatform, newRSS)
}

// rssAdapter flattens RSS/Atom feed entries. The source value is the feed
// URL. Credential bundle keys:
//
//	user_agent (optional) — sent with feed requests
//
// Feeds have no caller-selectable ordering; entries arrive in document
// order. The time window is applied client-side on the published time.
type rssAdapter struct {
	d      dispatcher
	parser *gofeed.Parser
}

func newRSS(creds Credentials) (Adapter, error) {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{
		Timeout:   rssTimeout,
		Transport: &uaTransport{base: http.DefaultTransport, userAgent: creds["user_agent"]},
	}

	r := &rssAdapter{parser: parser}
	r.d = dispatcher{
		platform: rssPlatform,
		handlers: map[string]fetchFunc{
			"feed": r.fromFeed,
		},
		sortModes: map[string]struct{}{},
		sortable:  map[string]struct{}{},
	}
	return r, nil
}

func (r *rssAdapter) Platform() string      { return rssPlatform }
func (r *rssAdapter) SourceTypes() []string { return r.d.sourceTypes() }
func (r *rssAdapter) SortModes() []string   { return r.d.sortModeList() }

func (r *rssAdapter) Fetch(ctx context.Context, req request.Request) ([]string, error) {
	return r.d.fetch(ctx, req)
}

func (r *rssAdapter) fromFeed(ctx context.Context, req request.Request) ([]string, error) {
	var feed *gofeed.Feed
	err := withRetry(ctx, func() error {
		var parseErr error
		feed, parseErr = r.parser.ParseURLWithContext(req.SourceValue, ctx)
		return parseErr
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelErr(ctx)
		}
		return nil, &FetchError{Platform: rssPlatform, Err: err}
	}

	wc := newWordCollector(req.MaxItems)
	for _, item := range feed.Items {
		if !req.InWindow(entryTime(item)) {
			continue
		}
		if !wc.add(entryText(item)) {
			break
		}
	}
	return wc.result(), nil
}

func entryTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

func entryText(item *gofeed.Item) string {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	body = stripHTML(body)
	if item.Title != "" && body != "" {
		return item.Title + " " + body
	}
	if item.Title != "" {
		return item.Title
	}
	return body
}

// uaTransport injects a User-Agent header into every feed request.
type uaTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
