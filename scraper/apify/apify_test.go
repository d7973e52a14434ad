package apify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"leadscout/models"
	"leadscout/utils"
)

// fakeApify plays the Apify REST API: one POST to start a run, a scripted
// sequence of status answers, and a dataset endpoint.
type fakeApify struct {
	mu       sync.Mutex
	statuses []string // consecutive poll answers; the last one repeats
	items    string   // dataset JSON body

	requests int
	starts   int
	polls    int
	fetches  int
	auth     string
}

func (f *fakeApify) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests++
		f.auth = r.Header.Get("Authorization")

		switch {
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/v2/acts/"):
			f.starts++
			fmt.Fprint(w, `{"data":{"id":"run-1","status":"READY"}}`)
		case strings.HasSuffix(r.URL.Path, "/dataset/items"):
			f.fetches++
			fmt.Fprint(w, f.items)
		case strings.HasPrefix(r.URL.Path, "/v2/actor-runs/"):
			idx := f.polls
			if idx >= len(f.statuses) {
				idx = len(f.statuses) - 1
			}
			f.polls++
			fmt.Fprintf(w, `{"data":{"id":"run-1","status":%q}}`, f.statuses[idx])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (f *fakeApify) counts() (requests, starts, polls, fetches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests, f.starts, f.polls, f.fetches
}

func newTestClient(baseURL string) *Client {
	return New(Config{
		BaseURL:        baseURL,
		Token:          "test-token",
		TikTokActor:    "acme~tiktok-scraper",
		InstagramActor: "acme~instagram-scraper",
		PollInterval:   5 * time.Millisecond,
		MaxWait:        time.Second,
	}, utils.NewLogger())
}

func TestRunPollsUntilSucceeded(t *testing.T) {
	fake := &fakeApify{
		statuses: []string{"RUNNING", "RUNNING", "RUNNING", "SUCCEEDED"},
		items:    `[{"username":"alice"},{"username":"bob"}]`,
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	items, err := client.Run(context.Background(), models.PlatformInstagram, models.SearchTypeProfile, "alice bob")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}

	_, starts, polls, fetches := fake.counts()
	if starts != 1 {
		t.Errorf("starts = %d, want 1", starts)
	}
	if polls != 4 {
		t.Errorf("polls = %d, want 4", polls)
	}
	if fetches != 1 {
		t.Errorf("dataset fetches = %d, want exactly 1", fetches)
	}

	fake.mu.Lock()
	auth := fake.auth
	fake.mu.Unlock()
	if auth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", auth)
	}
}

func TestRunFailedStatus(t *testing.T) {
	fake := &fakeApify{statuses: []string{"FAILED"}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Run(context.Background(), models.PlatformTikTok, models.SearchTypeProfile, "alice")

	var jobErr *JobFailedError
	if !errors.As(err, &jobErr) {
		t.Fatalf("got %v, want JobFailedError", err)
	}
	if jobErr.Status != "FAILED" {
		t.Errorf("status = %q, want FAILED", jobErr.Status)
	}

	_, _, _, fetches := fake.counts()
	if fetches != 0 {
		t.Errorf("dataset fetches = %d, want 0 after failed run", fetches)
	}
}

func TestRunWaitCeiling(t *testing.T) {
	fake := &fakeApify{statuses: []string{"RUNNING"}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := New(Config{
		BaseURL:        srv.URL,
		Token:          "test-token",
		TikTokActor:    "acme~tiktok-scraper",
		InstagramActor: "acme~instagram-scraper",
		PollInterval:   10 * time.Millisecond,
		MaxWait:        45 * time.Millisecond,
	}, utils.NewLogger())

	_, err := client.Run(context.Background(), models.PlatformTikTok, models.SearchTypeProfile, "alice")

	var waitErr *WaitTimeoutError
	if !errors.As(err, &waitErr) {
		t.Fatalf("got %v, want WaitTimeoutError", err)
	}

	_, _, pollsAtReturn, fetches := fake.counts()
	if fetches != 0 {
		t.Errorf("dataset fetches = %d, want 0 after ceiling", fetches)
	}

	// No polls may happen once Run has given up.
	time.Sleep(60 * time.Millisecond)
	_, _, pollsLater, _ := fake.counts()
	if pollsLater != pollsAtReturn {
		t.Errorf("polls kept going after return: %d -> %d", pollsAtReturn, pollsLater)
	}
}

func TestRunValidatesPlatformBeforeConfig(t *testing.T) {
	fake := &fakeApify{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	// Token missing too: the platform check must win.
	client := New(Config{
		BaseURL:        srv.URL,
		TikTokActor:    "acme~tiktok-scraper",
		InstagramActor: "acme~instagram-scraper",
	}, utils.NewLogger())

	_, err := client.Run(context.Background(), "youtube", models.SearchTypeProfile, "alice")

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if valErr.Platform != "youtube" {
		t.Errorf("platform = %q, want youtube", valErr.Platform)
	}

	requests, _, _, _ := fake.counts()
	if requests != 0 {
		t.Errorf("made %d HTTP requests, want 0", requests)
	}
}

func TestRunConfigErrors(t *testing.T) {
	fake := &fakeApify{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{
			"missing token",
			Config{BaseURL: srv.URL, TikTokActor: "acme~tiktok-scraper"},
			"APIFY_API_TOKEN",
		},
		{
			"missing actor",
			Config{BaseURL: srv.URL, Token: "test-token"},
			"APIFY_TIKTOK_ACTOR_ID",
		},
	}

	for _, tt := range tests {
		client := New(tt.cfg, utils.NewLogger())
		_, err := client.Run(context.Background(), models.PlatformTikTok, models.SearchTypeProfile, "alice")

		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: got %v, want ConfigError", tt.name, err)
		}
		if cfgErr.Field != tt.wantField {
			t.Errorf("%s: field = %q, want %q", tt.name, cfgErr.Field, tt.wantField)
		}
	}

	requests, _, _, _ := fake.counts()
	if requests != 0 {
		t.Errorf("made %d HTTP requests, want 0 before config is satisfied", requests)
	}
}

func TestRunTransportErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"type":"actor-is-not-rented","message":"You must rent this actor"}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Run(context.Background(), models.PlatformTikTok, models.SearchTypeProfile, "alice")

	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("got %v, want TransportError", err)
	}
	if trErr.StatusCode != http.StatusForbidden {
		t.Errorf("status code = %d, want 403", trErr.StatusCode)
	}
	if !strings.Contains(trErr.Body, "actor-is-not-rented") {
		t.Errorf("body %q should carry the API error payload", trErr.Body)
	}
}

func TestRunMissingRunID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Run(context.Background(), models.PlatformTikTok, models.SearchTypeProfile, "alice")

	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("got %v, want TransportError", err)
	}
}

func TestRunContextCancelled(t *testing.T) {
	fake := &fakeApify{statuses: []string{"RUNNING"}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := New(Config{
		BaseURL:        srv.URL,
		Token:          "test-token",
		TikTokActor:    "acme~tiktok-scraper",
		InstagramActor: "acme~instagram-scraper",
		PollInterval:   50 * time.Millisecond,
		MaxWait:        10 * time.Second,
	}, utils.NewLogger())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.Run(ctx, models.PlatformTikTok, models.SearchTypeProfile, "alice")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Run took %s to notice cancellation", time.Since(start))
	}
}

func TestBuildInput(t *testing.T) {
	tests := []struct {
		name       string
		platform   string
		searchType string
		query      string
		want       map[string]any
	}{
		{
			"tiktok profiles keep @ and split on commas",
			models.PlatformTikTok, models.SearchTypeProfile, "@alice, bob carol",
			map[string]any{"profiles": []string{"@alice", "bob", "carol"}, "resultsLimit": 20},
		},
		{
			"tiktok hashtag strips #",
			models.PlatformTikTok, models.SearchTypeHashtag, "#dance",
			map[string]any{"hashtags": []string{"dance"}, "resultsPerPage": 20},
		},
		{
			"tiktok free text",
			models.PlatformTikTok, models.SearchTypePlace, "coffee austin",
			map[string]any{"search": "coffee austin", "resultsLimit": 20},
		},
		{
			"instagram profiles joined by spaces",
			models.PlatformInstagram, models.SearchTypeProfile, "alice, bob",
			map[string]any{"search": "alice bob", "searchType": "user", "resultsLimit": 20},
		},
		{
			"instagram hashtag",
			models.PlatformInstagram, models.SearchTypeHashtag, "#specialtycoffee",
			map[string]any{"search": "specialtycoffee", "searchType": "hashtag", "resultsLimit": 20},
		},
		{
			"instagram place keeps raw query",
			models.PlatformInstagram, models.SearchTypePlace, "Coffee shops in Austin",
			map[string]any{"search": "Coffee shops in Austin", "searchType": "place", "resultsLimit": 20},
		},
	}

	for _, tt := range tests {
		got := buildInput(tt.platform, tt.searchType, tt.query, 20)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: buildInput mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestSplitTokens(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"alice, bob carol", []string{"alice", "bob", "carol"}},
		{"one", []string{"one"}},
		{"a,,b", []string{"a", "b"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := splitTokens(tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("splitTokens(%q) = %v, want %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitTokens(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.want[i])
			}
		}
	}
}
