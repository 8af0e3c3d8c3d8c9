package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/akarpov/wordgrab/internal/request"
)

const (
	twitterPlatform = "twitter"
	twitterBaseURL  = "https://api.twitter.com"
	twitterTimeout  = 30 * time.Second

	// Recent search accepts 10..100 results per page.
	twitterMinPage = 10
	twitterMaxPage = 100
)

func init() {
	register(twitterPlatform, newTwitter)
}

// twitterAdapter fetches tweets through the v2 recent-search endpoint.
// Credential bundle keys:
//
//	bearer_token (required) — app-only bearer token
//
// Twitter exposes no caller-selectable ordering on these source types, so
// the adapter declares an empty sort-mode set and ignores Sort entirely.
// Time windows are filtered server-side via start_time/end_time.
type twitterAdapter struct {
	d      dispatcher
	client *resty.Client
}

func newTwitter(creds Credentials) (Adapter, error) {
	token := strings.TrimSpace(creds["bearer_token"])
	if token == "" {
		return nil, errors.New("twitter: bearer_token is required")
	}

	client := resty.New()
	client.SetBaseURL(twitterBaseURL)
	client.SetAuthToken(token)
	client.SetTimeout(twitterTimeout)

	t := &twitterAdapter{client: client}
	t.d = dispatcher{
		platform: twitterPlatform,
		handlers: map[string]fetchFunc{
			"user":    t.fromUser,
			"hashtag": t.fromHashtag,
		},
		sortModes: map[string]struct{}{},
		sortable:  map[string]struct{}{},
	}
	return t, nil
}

func (t *twitterAdapter) Platform() string      { return twitterPlatform }
func (t *twitterAdapter) SourceTypes() []string { return t.d.sourceTypes() }
func (t *twitterAdapter) SortModes() []string   { return t.d.sortModeList() }

func (t *twitterAdapter) Fetch(ctx context.Context, req request.Request) ([]string, error) {
	return t.d.fetch(ctx, req)
}

// fromUser flattens a user's recent tweets.
func (t *twitterAdapter) fromUser(ctx context.Context, req request.Request) ([]string, error) {
	return t.search(ctx, req, "from:"+req.SourceValue)
}

// fromHashtag flattens the recent stream for a hashtag. The leading '#' in
// the source value is optional.
func (t *twitterAdapter) fromHashtag(ctx context.Context, req request.Request) ([]string, error) {
	tag := strings.TrimPrefix(req.SourceValue, "#")
	return t.search(ctx, req, "#"+tag)
}

func (t *twitterAdapter) search(ctx context.Context, req request.Request, query string) ([]string, error) {
	wc := newWordCollector(req.MaxItems)
	nextToken := ""

	for {
		if ctx.Err() != nil {
			return nil, cancelErr(ctx)
		}

		var page twitterSearchResponse
		err := withRetry(ctx, func() error {
			r := t.client.R().
				SetContext(ctx).
				SetQueryParam("query", query).
				SetQueryParam("max_results", fmt.Sprint(twitterPageSize(req.MaxItems-wc.items))).
				SetResult(&page)
			if nextToken != "" {
				r.SetQueryParam("next_token", nextToken)
			}
			if req.Window != nil {
				r.SetQueryParam("start_time", req.Window.Start.UTC().Format(time.RFC3339))
				if !req.Window.End.IsZero() {
					r.SetQueryParam("end_time", req.Window.End.UTC().Format(time.RFC3339))
				}
			}

			resp, err := r.Get("/2/tweets/search/recent")
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}
			if resp.IsError() {
				return &httpStatusError{status: resp.StatusCode(), url: "/2/tweets/search/recent"}
			}
			return nil
		})
		if err != nil {
			return nil, &FetchError{Platform: twitterPlatform, Err: err}
		}

		for _, tweet := range page.Data {
			if !wc.add(tweet.Text) {
				return wc.result(), nil
			}
		}

		nextToken = page.Meta.NextToken
		if nextToken == "" || len(page.Data) == 0 {
			break
		}
	}

	return wc.result(), nil
}

// twitterPageSize clamps the number of items still wanted into the
// page-size range the recent-search endpoint accepts.
func twitterPageSize(remaining int) int {
	if remaining < twitterMinPage {
		return twitterMinPage
	}
	if remaining > twitterMaxPage {
		return twitterMaxPage
	}
	return remaining
}

type twitterSearchResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Meta struct {
		NextToken   string `json:"next_token"`
		ResultCount int    `json:"result_count"`
	} `json:"meta"`
}
