package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akarpov/wordgrab/internal/request"
)

const (
	redditPlatform    = "reddit"
	redditBaseURL     = "https://www.reddit.com"
	redditTimeout     = 30 * time.Second
	redditPageSize    = 100
	redditMoreChunk   = 100
	redditDefaultSort = "new"
)

func init() {
	register(redditPlatform, newReddit)
}

// redditAdapter fetches submissions and comments via Reddit's public JSON
// listing endpoints. Credential bundle keys:
//
//	user_agent (required) — identifies the client to Reddit
type redditAdapter struct {
	d         dispatcher
	client    *http.Client
	baseURL   string
	userAgent string
}

func newReddit(creds Credentials) (Adapter, error) {
	ua := strings.TrimSpace(creds["user_agent"])
	if ua == "" {
		return nil, errors.New("reddit: user_agent is required")
	}

	r := &redditAdapter{
		client:    &http.Client{Timeout: redditTimeout},
		baseURL:   redditBaseURL,
		userAgent: ua,
	}
	r.d = dispatcher{
		platform: redditPlatform,
		handlers: map[string]fetchFunc{
			"subreddit": r.fromSubreddit,
			"user":      r.fromUser,
			"post":      r.fromPost,
		},
		sortModes: map[string]struct{}{
			"top":           {},
			"new":           {},
			"controversial": {},
		},
		sortable: map[string]struct{}{
			"subreddit": {},
			"user":      {},
		},
	}
	return r, nil
}

func (r *redditAdapter) Platform() string      { return redditPlatform }
func (r *redditAdapter) SourceTypes() []string { return r.d.sourceTypes() }
func (r *redditAdapter) SortModes() []string   { return r.d.sortModeList() }

func (r *redditAdapter) Fetch(ctx context.Context, req request.Request) ([]string, error) {
	return r.d.fetch(ctx, req)
}

// fromSubreddit pages through a subreddit listing, flattening submission
// titles and self text.
func (r *redditAdapter) fromSubreddit(ctx context.Context, req request.Request) ([]string, error) {
	sortMode := req.Sort
	if sortMode == "" {
		sortMode = redditDefaultSort
	}
	path := fmt.Sprintf("/r/%s/%s.json", url.PathEscape(req.SourceValue), sortMode)
	return r.pageSubmissions(ctx, req, path, nil)
}

// fromUser pages through a user's own submission history. Sort applies to
// that history, not a global feed.
func (r *redditAdapter) fromUser(ctx context.Context, req request.Request) ([]string, error) {
	path := fmt.Sprintf("/user/%s/submitted.json", url.PathEscape(req.SourceValue))
	extra := url.Values{}
	if req.Sort != "" {
		extra.Set("sort", req.Sort)
	}
	return r.pageSubmissions(ctx, req, path, extra)
}

func (r *redditAdapter) pageSubmissions(ctx context.Context, req request.Request, path string, extra url.Values) ([]string, error) {
	wc := newWordCollector(req.MaxItems)
	after := ""

	for {
		if ctx.Err() != nil {
			return nil, cancelErr(ctx)
		}

		q := url.Values{}
		for k, vs := range extra {
			q[k] = vs
		}
		q.Set("limit", fmt.Sprint(redditPageSize))
		if after != "" {
			q.Set("after", after)
		}

		var listing redditListing
		if err := r.getJSON(ctx, path+"?"+q.Encode(), &listing); err != nil {
			return nil, &FetchError{Platform: redditPlatform, Err: err}
		}

		if len(listing.Data.Children) == 0 {
			break
		}
		for _, child := range listing.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			var post redditSubmission
			if err := json.Unmarshal(child.Data, &post); err != nil {
				return nil, &FetchError{Platform: redditPlatform, Err: fmt.Errorf("decode submission: %w", err)}
			}
			if !req.InWindow(time.Unix(int64(post.CreatedUTC), 0).UTC()) {
				continue
			}
			if !wc.add(submissionText(post)) {
				return wc.result(), nil
			}
		}

		after = listing.Data.After
		if after == "" {
			break
		}
	}

	return wc.result(), nil
}

// fromPost flattens one thread. By default only the thread's top-level
// comments are consumed; the expand_replies option walks the full tree and
// resolves "load more" placeholders recursively, which is unbounded work
// and therefore checked against ctx at every hop.
func (r *redditAdapter) fromPost(ctx context.Context, req request.Request) ([]string, error) {
	wc := newWordCollector(req.MaxItems)
	expand := req.BoolOption("expand_replies")

	path := fmt.Sprintf("/comments/%s.json?limit=500", url.PathEscape(req.SourceValue))
	var listings []redditListing
	if err := r.getJSON(ctx, path, &listings); err != nil {
		return nil, &FetchError{Platform: redditPlatform, Err: err}
	}
	if len(listings) < 2 {
		return nil, &FetchError{Platform: redditPlatform, Err: fmt.Errorf("post %s: unexpected response shape", req.SourceValue)}
	}

	// The first listing holds the submission itself.
	for _, child := range listings[0].Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var post redditSubmission
		if err := json.Unmarshal(child.Data, &post); err != nil {
			return nil, &FetchError{Platform: redditPlatform, Err: fmt.Errorf("decode submission: %w", err)}
		}
		if req.InWindow(time.Unix(int64(post.CreatedUTC), 0).UTC()) && !wc.add(submissionText(post)) {
			return wc.result(), nil
		}
	}

	if err := r.walkComments(ctx, req, wc, listings[1].Data.Children, expand); err != nil {
		return nil, err
	}
	return wc.result(), nil
}

// walkComments consumes a comment forest in arrival order.
func (r *redditAdapter) walkComments(ctx context.Context, req request.Request, wc *wordCollector, things []redditThing, expand bool) error {
	for _, thing := range things {
		if ctx.Err() != nil {
			return cancelErr(ctx)
		}
		if wc.full() {
			return nil
		}

		switch thing.Kind {
		case "t1":
			var c redditComment
			if err := json.Unmarshal(thing.Data, &c); err != nil {
				return &FetchError{Platform: redditPlatform, Err: fmt.Errorf("decode comment: %w", err)}
			}
			if req.InWindow(time.Unix(int64(c.CreatedUTC), 0).UTC()) {
				wc.add(c.Body)
			}
			if expand && len(c.Replies) > 0 && c.Replies[0] == '{' {
				var replies redditListing
				if err := json.Unmarshal(c.Replies, &replies); err != nil {
					return &FetchError{Platform: redditPlatform, Err: fmt.Errorf("decode replies: %w", err)}
				}
				if err := r.walkComments(ctx, req, wc, replies.Data.Children, expand); err != nil {
					return err
				}
			}
		case "more":
			if !expand {
				continue
			}
			var more redditMore
			if err := json.Unmarshal(thing.Data, &more); err != nil {
				return &FetchError{Platform: redditPlatform, Err: fmt.Errorf("decode more: %w", err)}
			}
			if err := r.expandMore(ctx, req, wc, more.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

// expandMore resolves "load more comments" placeholders through the
// morechildren endpoint, in chunks the API accepts.
func (r *redditAdapter) expandMore(ctx context.Context, req request.Request, wc *wordCollector, ids []string) error {
	for len(ids) > 0 && !wc.full() {
		if ctx.Err() != nil {
			return cancelErr(ctx)
		}

		chunk := ids
		if len(chunk) > redditMoreChunk {
			chunk = chunk[:redditMoreChunk]
		}
		ids = ids[len(chunk):]

		q := url.Values{}
		q.Set("api_type", "json")
		q.Set("link_id", "t3_"+req.SourceValue)
		q.Set("children", strings.Join(chunk, ","))

		var resp redditMoreChildren
		if err := r.getJSON(ctx, "/api/morechildren.json?"+q.Encode(), &resp); err != nil {
			return &FetchError{Platform: redditPlatform, Err: err}
		}
		if err := r.walkComments(ctx, req, wc, resp.JSON.Data.Things, true); err != nil {
			return err
		}
	}
	return nil
}

// getJSON performs one GET against the Reddit API with retry on transient
// faults and decodes the body into out.
func (r *redditAdapter) getJSON(ctx context.Context, path string, out any) error {
	return withRetry(ctx, func() error {
		reqURL := r.baseURL + path
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("User-Agent", r.userAgent)

		resp, err := r.client.Do(httpReq)
		if err != nil {
			return fmt.Errorf("get %s: %w", path, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return &httpStatusError{status: resp.StatusCode, url: path}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	})
}

func submissionText(post redditSubmission) string {
	if strings.TrimSpace(post.Selftext) != "" {
		return post.Title + "\n\n" + post.Selftext
	}
	return post.Title
}

type redditListing struct {
	Data struct {
		After    string        `json:"after"`
		Children []redditThing `json:"children"`
	} `json:"data"`
}

type redditThing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type redditSubmission struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

type redditComment struct {
	ID         string          `json:"id"`
	Body       string          `json:"body"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"` // nested listing, or "" when absent
}

type redditMore struct {
	Children []string `json:"children"`
}

type redditMoreChildren struct {
	JSON struct {
		Data struct {
			Things []redditThing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}
