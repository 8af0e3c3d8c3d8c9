package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/akarpov/wordgrab/internal/config"
)

// resetFetchFlags restores the fetch flag globals after a test mutates them.
func resetFetchFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		fetchPlatform, fetchType, fetchValue = "", "", ""
		fetchMax = -1
		fetchSort, fetchFrom, fetchTo = "", "", ""
		fetchOpts = nil
		fetchFormat = "words"
		fetchTimeout = 0
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Platforms: map[string]map[string]string{"hn": {}},
		Fetch: config.FetchConfig{
			MaxItems: 200,
			Timeout:  config.Duration{Duration: 2 * time.Minute},
		},
	}
}

func TestBuildRequest_Basics(t *testing.T) {
	resetFetchFlags(t)
	fetchPlatform, fetchType, fetchValue = "reddit", "subreddit", "golang"
	fetchMax = 25
	fetchSort = "top"

	req, err := buildRequest(testConfig())
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Platform != "reddit" || req.SourceType != "subreddit" || req.SourceValue != "golang" {
		t.Errorf("request = %+v", req)
	}
	if req.MaxItems != 25 {
		t.Errorf("max items = %d, want 25", req.MaxItems)
	}
	if req.Sort != "top" {
		t.Errorf("sort = %q", req.Sort)
	}
	if req.Window != nil {
		t.Errorf("window = %+v, want nil", req.Window)
	}
}

func TestBuildRequest_MaxFromConfig(t *testing.T) {
	resetFetchFlags(t)
	fetchPlatform, fetchType, fetchValue = "hn", "front", "top"
	fetchMax = -1

	req, err := buildRequest(testConfig())
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.MaxItems != 200 {
		t.Errorf("max items = %d, want config default 200", req.MaxItems)
	}
}

func TestBuildRequest_ExplicitZeroMax(t *testing.T) {
	resetFetchFlags(t)
	fetchPlatform, fetchType, fetchValue = "hn", "front", "top"
	fetchMax = 0

	req, err := buildRequest(testConfig())
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	// --max 0 is a real request for zero items, not "use the default".
	if req.MaxItems != 0 {
		t.Errorf("max items = %d, want 0", req.MaxItems)
	}
}

func TestBuildRequest_Options(t *testing.T) {
	resetFetchFlags(t)
	fetchPlatform, fetchType, fetchValue = "reddit", "post", "abc123"
	fetchOpts = []string{"expand_replies=true", "lang=en", "verbose=false"}

	req, err := buildRequest(testConfig())
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if v, ok := req.Options["expand_replies"].(bool); !ok || !v {
		t.Errorf("expand_replies = %v", req.Options["expand_replies"])
	}
	if v, ok := req.Options["verbose"].(bool); !ok || v {
		t.Errorf("verbose = %v", req.Options["verbose"])
	}
	if v, ok := req.Options["lang"].(string); !ok || v != "en" {
		t.Errorf("lang = %v", req.Options["lang"])
	}
}

func TestBuildRequest_BadOption(t *testing.T) {
	resetFetchFlags(t)
	fetchPlatform, fetchType, fetchValue = "reddit", "post", "abc123"
	fetchOpts = []string{"no-equals-sign"}

	if _, err := buildRequest(testConfig()); err == nil || !strings.Contains(err.Error(), "key=value") {
		t.Fatalf("err = %v, want key=value parse error", err)
	}
}

func TestBuildRequest_Window(t *testing.T) {
	resetFetchFlags(t)
	fetchPlatform, fetchType, fetchValue = "hn", "front", "top"
	fetchFrom = "2025-06-01"
	fetchTo = "2025-06-15T12:00:00Z"

	req, err := buildRequest(testConfig())
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Window == nil {
		t.Fatal("window is nil")
	}
	wantStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	if !req.Window.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", req.Window.Start, wantStart)
	}
	if !req.Window.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", req.Window.End, wantEnd)
	}
}

func TestParseWindow_OpenEnded(t *testing.T) {
	w, err := parseWindow("2025-06-01", "")
	if err != nil {
		t.Fatalf("parse window: %v", err)
	}
	if w == nil || !w.End.IsZero() {
		t.Errorf("window = %+v, want zero end", w)
	}
}

func TestParseWindow_BadValue(t *testing.T) {
	if _, err := parseWindow("yesterday", ""); err == nil {
		t.Fatal("expected error for unparseable --from")
	}
}
