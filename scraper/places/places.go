package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"leadscout/models"
	"leadscout/utils"
)

const defaultBaseURL = "https://maps.googleapis.com"

// ErrNoAPIKey is returned when a search is attempted without a configured
// Google Maps API key.
var ErrNoAPIKey = errors.New("places: api key not configured")

// APIError is a non-OK status reported by the Places API itself.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("places: api status %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("places: api status %s", e.Status)
}

// Config holds the Places client configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client
}

// Client searches the Google Places API for businesses.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Places client, filling config defaults.
func New(cfg Config, logger *utils.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

type searchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
	} `json:"results"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Name              string             `json:"name"`
		FormattedAddress  string             `json:"formatted_address"`
		Website           string             `json:"website"`
		AddressComponents []addressComponent `json:"address_components"`
	} `json:"result"`
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

// Search runs a text search and fills in website and city details for each
// result. Details calls are retried; a place whose details cannot be loaded
// is kept with the fields the search itself provided.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]*models.Place, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.cfg.APIKey)

	var resp searchResponse
	if err := c.getJSON(ctx, "/maps/api/place/textsearch/json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "ZERO_RESULTS" {
		return nil, nil
	}
	if resp.Status != "OK" {
		return nil, &APIError{Status: resp.Status, Message: resp.ErrorMessage}
	}

	places := make([]*models.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		if limit > 0 && len(places) >= limit {
			break
		}
		places = append(places, &models.Place{
			Name:    r.Name,
			Address: r.FormattedAddress,
			PlaceID: r.PlaceID,
		})
	}
	c.logger.Info("[places] Text search %q returned %d places", query, len(places))

	for _, p := range places {
		place := p
		err := c.retry.Do(ctx, "place-details", func() error {
			return c.fillDetails(ctx, place)
		})
		if err != nil {
			c.logger.Warn("[places] Details failed for %s (%s): %v", place.Name, place.PlaceID, err)
		}
	}

	return places, nil
}

// fillDetails loads website and address components for one place.
func (c *Client) fillDetails(ctx context.Context, place *models.Place) error {
	q := url.Values{}
	q.Set("place_id", place.PlaceID)
	q.Set("fields", "name,formatted_address,website,address_components")
	q.Set("key", c.cfg.APIKey)

	var resp detailsResponse
	if err := c.getJSON(ctx, "/maps/api/place/details/json", q, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return &APIError{Status: resp.Status, Message: resp.ErrorMessage}
	}

	if resp.Result.Name != "" {
		place.Name = resp.Result.Name
	}
	if resp.Result.FormattedAddress != "" {
		place.Address = resp.Result.FormattedAddress
	}
	place.Website = resp.Result.Website
	place.City = extractCity(resp.Result.AddressComponents)
	return nil
}

// extractCity picks the locality component, falling back to the first-level
// administrative area when a locality is absent.
func extractCity(comps []addressComponent) string {
	for _, comp := range comps {
		for _, t := range comp.Types {
			if t == "locality" {
				return comp.LongName
			}
		}
	}
	for _, comp := range comps {
		for _, t := range comp.Types {
			if t == "administrative_area_level_1" {
				return comp.LongName
			}
		}
	}
	return ""
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.cfg.BaseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("places: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("places: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("places: %s: unexpected status %s: %s", path, resp.Status, string(data))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("places: decode %s response: %w", path, err)
	}
	return nil
}
