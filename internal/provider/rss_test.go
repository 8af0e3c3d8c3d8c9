package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akarpov/wordgrab/internal/request"
)

type feedEntry struct {
	title       string
	description string
	published   time.Time
}

func feedXML(entries ...feedEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>test feed</title>`)
	for _, e := range entries {
		fmt.Fprintf(&b, "<item><title>%s</title><description>%s</description><pubDate>%s</pubDate></item>",
			e.title, e.description, e.published.Format(time.RFC1123Z))
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func rssWithServer(t *testing.T, creds Credentials, handler http.HandlerFunc) (*rssAdapter, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := newRSS(creds)
	if err != nil {
		t.Fatalf("new rss: %v", err)
	}
	return a.(*rssAdapter), srv.URL
}

func feedRequest(url string, max int) request.Request {
	return request.Request{
		Platform:    "rss",
		SourceType:  "feed",
		SourceValue: url,
		MaxItems:    max,
	}
}

func TestRSS_Capabilities(t *testing.T) {
	a, err := newRSS(Credentials{})
	if err != nil {
		t.Fatalf("new rss: %v", err)
	}
	types := a.SourceTypes()
	if len(types) != 1 || types[0] != "feed" {
		t.Errorf("source types = %v, want [feed]", types)
	}
	if modes := a.SortModes(); len(modes) != 0 {
		t.Errorf("sort modes = %v, want none", modes)
	}
}

func TestRSS_FlattensEntriesInDocumentOrder(t *testing.T) {
	now := time.Now()
	ra, url := rssWithServer(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML(
			feedEntry{title: "first entry", published: now},
			feedEntry{title: "second", published: now},
		))
	})

	words, err := ra.Fetch(context.Background(), feedRequest(url, 10))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := []string{"first", "entry", "second"}
	if len(words) != len(want) {
		t.Fatalf("words = %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("words = %v, want %v", words, want)
		}
	}
}

func TestRSS_IncludesDescriptionText(t *testing.T) {
	now := time.Now()
	ra, url := rssWithServer(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML(feedEntry{title: "title", description: "body text", published: now}))
	})

	words, err := ra.Fetch(context.Background(), feedRequest(url, 10))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(words) != 3 || words[0] != "title" || words[1] != "body" || words[2] != "text" {
		t.Fatalf("words = %v", words)
	}
}

func TestRSS_CapsEntries(t *testing.T) {
	now := time.Now()
	ra, url := rssWithServer(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML(
			feedEntry{title: "one", published: now},
			feedEntry{title: "two", published: now},
			feedEntry{title: "three", published: now},
		))
	})

	words, err := ra.Fetch(context.Background(), feedRequest(url, 2))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(words) != 2 || words[0] != "one" || words[1] != "two" {
		t.Fatalf("words = %v, want [one two]", words)
	}
}

func TestRSS_WindowFilter(t *testing.T) {
	now := time.Now()
	ra, url := rssWithServer(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML(
			feedEntry{title: "fresh", published: now},
			feedEntry{title: "stale", published: now.Add(-96 * time.Hour)},
		))
	})

	req := feedRequest(url, 10)
	req.Window = &request.Window{Start: now.Add(-24 * time.Hour)}
	words, err := ra.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(words) != 1 || words[0] != "fresh" {
		t.Fatalf("words = %v, want [fresh]", words)
	}
}

func TestRSS_SendsConfiguredUserAgent(t *testing.T) {
	now := time.Now()
	ra, url := rssWithServer(t, Credentials{"user_agent": "wordgrab-feed/1.0"}, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "wordgrab-feed/1.0" {
			t.Errorf("user-agent = %q", got)
		}
		fmt.Fprint(w, feedXML(feedEntry{title: "x", published: now}))
	})

	if _, err := ra.Fetch(context.Background(), feedRequest(url, 10)); err != nil {
		t.Fatalf("fetch: %v", err)
	}
}

func TestRSS_ParseFailure(t *testing.T) {
	ra, url := rssWithServer(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	})

	_, err := ra.Fetch(context.Background(), feedRequest(url, 10))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FetchError", err)
	}
	if fe.Platform != "rss" {
		t.Errorf("platform = %q", fe.Platform)
	}
}

func TestRSS_UnsupportedSourceType(t *testing.T) {
	ra, url := rssWithServer(t, Credentials{}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	req := feedRequest(url, 10)
	req.SourceType = "subreddit"
	if _, err := ra.Fetch(context.Background(), req); !errors.Is(err, ErrUnsupportedSourceType) {
		t.Fatalf("err = %v, want ErrUnsupportedSourceType", err)
	}
}
