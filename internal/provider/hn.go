package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/akarpov/wordgrab/internal/request"
)

const (
	hnPlatform   = "hn"
	hnBaseURL    = "https://hacker-news.firebaseio.com/v0"
	hnTimeout    = 30 * time.Second
	hnMaxWorkers = 5
)

func init() {
	register(hnPlatform, newHN)
}

// hnAdapter fetches stories and comments from the Hacker News Firebase API.
// The API is public; the credential bundle may be empty (its presence in
// config is what enables the platform). The time window is applied
// client-side on each item's timestamp.
type hnAdapter struct {
	d       dispatcher
	client  *http.Client
	baseURL string
}

func newHN(Credentials) (Adapter, error) {
	h := &hnAdapter{
		client:  &http.Client{Timeout: hnTimeout},
		baseURL: hnBaseURL,
	}
	h.d = dispatcher{
		platform: hnPlatform,
		handlers: map[string]fetchFunc{
			"front": h.fromFront,
			"user":  h.fromUser,
			"post":  h.fromPost,
		},
		sortModes: map[string]struct{}{
			"top":  {},
			"new":  {},
			"best": {},
		},
		sortable: map[string]struct{}{
			"front": {},
		},
	}
	return h, nil
}

func (h *hnAdapter) Platform() string      { return hnPlatform }
func (h *hnAdapter) SourceTypes() []string { return h.d.sourceTypes() }
func (h *hnAdapter) SortModes() []string   { return h.d.sortModeList() }

func (h *hnAdapter) Fetch(ctx context.Context, req request.Request) ([]string, error) {
	return h.d.fetch(ctx, req)
}

// fromFront flattens front-page story titles. Sort selects the listing:
// top (default), new, or best.
func (h *hnAdapter) fromFront(ctx context.Context, req request.Request) ([]string, error) {
	listing := "topstories"
	switch req.Sort {
	case "new":
		listing = "newstories"
	case "best":
		listing = "beststories"
	}

	var ids []int
	if err := h.getJSON(ctx, "/"+listing+".json", &ids); err != nil {
		return nil, &FetchError{Platform: hnPlatform, Err: err}
	}
	return h.flattenItems(ctx, req, ids)
}

// fromUser flattens a user's submitted stories and comments, newest first
// as the API returns them.
func (h *hnAdapter) fromUser(ctx context.Context, req request.Request) ([]string, error) {
	var user hnUser
	if err := h.getJSON(ctx, "/user/"+req.SourceValue+".json", &user); err != nil {
		return nil, &FetchError{Platform: hnPlatform, Err: err}
	}
	return h.flattenItems(ctx, req, user.Submitted)
}

// flattenItems hydrates ids concurrently in listing order and flattens
// their text. Deleted, dead, and out-of-window items do not consume cap
// slots: hydration proceeds in batches sized to the remaining capacity and
// pulls further ids until the cap is met or the listing runs out.
func (h *hnAdapter) flattenItems(ctx context.Context, req request.Request, ids []int) ([]string, error) {
	wc := newWordCollector(req.MaxItems)

	for len(ids) > 0 && !wc.full() {
		if ctx.Err() != nil {
			return nil, cancelErr(ctx)
		}

		n := req.MaxItems - wc.items
		if n > len(ids) {
			n = len(ids)
		}
		batch := ids[:n]
		ids = ids[n:]

		items, err := h.hydrate(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item == nil || item.Deleted || item.Dead {
				continue
			}
			if !req.InWindow(time.Unix(item.Time, 0).UTC()) {
				continue
			}
			if !wc.add(itemText(item)) {
				break
			}
		}
	}
	return wc.result(), nil
}

// hydrate fetches items through a bounded worker pool, preserving listing
// order in the returned slice.
func (h *hnAdapter) hydrate(ctx context.Context, ids []int) ([]*hnItem, error) {
	items := make([]*hnItem, len(ids))
	errs := make([]error, len(ids))
	jobs := make(chan int, len(ids))

	workers := hnMaxWorkers
	if len(ids) < workers {
		workers = len(ids)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					errs[i] = cancelErr(ctx)
					continue
				}
				item, err := h.fetchItem(ctx, ids[i])
				items[i], errs[i] = item, err
			}
		}()
	}

	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			if ctx.Err() != nil {
				return nil, cancelErr(ctx)
			}
			return nil, &FetchError{Platform: hnPlatform, Err: err}
		}
	}
	return items, nil
}

// fromPost flattens one story and its comment tree. Without expand_replies
// only the story's direct comments are consumed; with it the whole tree is
// walked, which is unbounded work and checked against ctx at every item.
func (h *hnAdapter) fromPost(ctx context.Context, req request.Request) ([]string, error) {
	id, err := strconv.Atoi(req.SourceValue)
	if err != nil {
		return nil, &FetchError{Platform: hnPlatform, Err: fmt.Errorf("post id %q: %w", req.SourceValue, err)}
	}

	root, err := h.fetchItem(ctx, id)
	if err != nil {
		return nil, &FetchError{Platform: hnPlatform, Err: err}
	}

	wc := newWordCollector(req.MaxItems)
	if !root.Deleted && !root.Dead &&
		req.InWindow(time.Unix(root.Time, 0).UTC()) && !wc.add(itemText(root)) {
		return wc.result(), nil
	}

	expand := req.BoolOption("expand_replies")
	if err := h.walkKids(ctx, req, wc, root.Kids, expand); err != nil {
		return nil, err
	}
	return wc.result(), nil
}

func (h *hnAdapter) walkKids(ctx context.Context, req request.Request, wc *wordCollector, kids []int, expand bool) error {
	for _, id := range kids {
		if wc.full() {
			return nil
		}
		if ctx.Err() != nil {
			return cancelErr(ctx)
		}

		item, err := h.fetchItem(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return cancelErr(ctx)
			}
			return &FetchError{Platform: hnPlatform, Err: err}
		}
		if item.Deleted || item.Dead {
			continue
		}
		if req.InWindow(time.Unix(item.Time, 0).UTC()) {
			wc.add(itemText(item))
		}
		if expand && len(item.Kids) > 0 {
			if err := h.walkKids(ctx, req, wc, item.Kids, expand); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *hnAdapter) fetchItem(ctx context.Context, id int) (*hnItem, error) {
	var item hnItem
	if err := h.getJSON(ctx, fmt.Sprintf("/item/%d.json", id), &item); err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	return &item, nil
}

func (h *hnAdapter) getJSON(ctx context.Context, path string, out any) error {
	return withRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := h.client.Do(req)
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

// itemText picks the designated text field: title for stories, HTML-stripped
// body for comments.
func itemText(item *hnItem) string {
	if item.Title != "" {
		return item.Title
	}
	return stripHTML(item.Text)
}

type hnItem struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Time    int64  `json:"time"`
	Kids    []int  `json:"kids"`
	Deleted bool   `json:"deleted"`
	Dead    bool   `json:"dead"`
}

type hnUser struct {
	ID        string `json:"id"`
	Submitted []int  `json:"submitted"`
}
