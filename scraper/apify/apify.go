package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"leadscout/models"
	"leadscout/utils"
)

// Terminal run statuses reported by the Apify API.
const (
	statusSucceeded = "SUCCEEDED"
	statusFailed    = "FAILED"
	statusAborted   = "ABORTED"
	statusTimedOut  = "TIMED-OUT"
)

const defaultBaseURL = "https://api.apify.com"

// tokenSplitRegexp splits multi-profile queries on commas and whitespace.
var tokenSplitRegexp = regexp.MustCompile(`[,\s]+`)

// Config holds everything the client needs. It is passed in explicitly so
// tests can point the client at a fake server with tight timings.
type Config struct {
	BaseURL        string
	Token          string
	TikTokActor    string
	InstagramActor string
	PollInterval   time.Duration
	MaxWait        time.Duration
	ResultsLimit   int
	HTTPClient     *http.Client
}

// Client runs Apify actors and waits for their datasets.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *utils.Logger
}

// New creates a ready-to-use Client, filling config defaults.
func New(cfg Config, logger *utils.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 300 * time.Second
	}
	if cfg.ResultsLimit <= 0 {
		cfg.ResultsLimit = 20
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Run starts the actor for the given platform, polls the run until it reaches
// a terminal state, and returns the dataset items on success. The platform is
// validated before configuration, and configuration before any network call.
func (c *Client) Run(ctx context.Context, platform, searchType, query string) ([]models.RawItem, error) {
	actor, err := c.actorFor(platform)
	if err != nil {
		return nil, err
	}
	if c.cfg.Token == "" {
		return nil, &ConfigError{Field: "APIFY_API_TOKEN"}
	}

	input := buildInput(platform, searchType, query, c.cfg.ResultsLimit)

	runID, err := c.startRun(ctx, actor, input)
	if err != nil {
		return nil, err
	}
	c.logger.Info("[apify] Actor %s started, run %s (%s %s search for %q)",
		actor, runID, platform, searchType, query)

	started := time.Now()
	deadline := started.Add(c.cfg.MaxWait)
	for time.Now().Before(deadline) {
		status, err := c.runStatus(ctx, runID)
		if err != nil {
			return nil, err
		}

		switch status {
		case statusSucceeded:
			c.logger.Info("[apify] Run %s succeeded after %s", runID, time.Since(started).Round(time.Second))
			return c.datasetItems(ctx, runID)
		case statusFailed, statusAborted, statusTimedOut:
			return nil, &JobFailedError{Status: status}
		}

		c.logger.Debug("[apify] Run %s status %s (%s elapsed)", runID, status, time.Since(started).Round(time.Second))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}

	return nil, &WaitTimeoutError{Waited: c.cfg.MaxWait}
}

// actorFor validates the platform and resolves its actor ID.
func (c *Client) actorFor(platform string) (string, error) {
	var actor, field string
	switch platform {
	case models.PlatformTikTok:
		actor, field = c.cfg.TikTokActor, "APIFY_TIKTOK_ACTOR_ID"
	case models.PlatformInstagram:
		actor, field = c.cfg.InstagramActor, "APIFY_INSTAGRAM_ACTOR_ID"
	default:
		return "", &ValidationError{Platform: platform}
	}
	if actor == "" {
		return "", &ConfigError{Field: field}
	}
	return actor, nil
}

// buildInput constructs the actor input payload for a platform and search
// type. Each actor family has its own input schema, so the shapes differ.
func buildInput(platform, searchType, query string, limit int) map[string]any {
	query = strings.TrimSpace(query)

	if platform == models.PlatformInstagram {
		term := query
		kind := "user"
		switch searchType {
		case models.SearchTypeProfile:
			term = strings.Join(splitTokens(query), " ")
		case models.SearchTypeHashtag:
			kind = "hashtag"
			term = strings.TrimLeft(query, "#")
		case models.SearchTypePlace:
			kind = "place"
		}
		return map[string]any{
			"search":       term,
			"searchType":   kind,
			"resultsLimit": limit,
		}
	}

	switch searchType {
	case models.SearchTypeProfile:
		return map[string]any{
			"profiles":     splitTokens(query),
			"resultsLimit": limit,
		}
	case models.SearchTypeHashtag:
		return map[string]any{
			"hashtags":       []string{strings.TrimLeft(query, "#")},
			"resultsPerPage": limit,
		}
	default:
		return map[string]any{
			"search":       query,
			"resultsLimit": limit,
		}
	}
}

// splitTokens turns "alice, bob carol" into ["alice" "bob" "carol"].
func splitTokens(query string) []string {
	parts := tokenSplitRegexp.Split(query, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

type runResponse struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

func (c *Client) startRun(ctx context.Context, actor string, input map[string]any) (string, error) {
	url := fmt.Sprintf("%s/v2/acts/%s/runs", c.cfg.BaseURL, actor)
	var resp runResponse
	if err := c.doJSON(ctx, "start run", http.MethodPost, url, input, &resp); err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", &TransportError{Op: "start run", Err: fmt.Errorf("response carried no run ID")}
	}
	return resp.Data.ID, nil
}

func (c *Client) runStatus(ctx context.Context, runID string) (string, error) {
	url := fmt.Sprintf("%s/v2/actor-runs/%s", c.cfg.BaseURL, runID)
	var resp runResponse
	if err := c.doJSON(ctx, "poll run", http.MethodGet, url, nil, &resp); err != nil {
		return "", err
	}
	return resp.Data.Status, nil
}

func (c *Client) datasetItems(ctx context.Context, runID string) ([]models.RawItem, error) {
	url := fmt.Sprintf("%s/v2/actor-runs/%s/dataset/items", c.cfg.BaseURL, runID)
	var items []models.RawItem
	if err := c.doJSON(ctx, "fetch dataset", http.MethodGet, url, nil, &items); err != nil {
		return nil, err
	}
	c.logger.Info("[apify] Run %s returned %d dataset items", runID, len(items))
	return items, nil
}

// doJSON performs one authenticated API round trip, decoding the response
// into out when it is non-nil.
func (c *Client) doJSON(ctx context.Context, op, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("apify: encode %s payload: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("apify: build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
