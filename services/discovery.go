package services

import (
	"context"
	"fmt"
	"strings"

	"leadscout/models"
	"leadscout/utils"
)

// JobRunner starts a remote scraping job, waits it out, and returns its
// dataset. Satisfied by the apify client.
type JobRunner interface {
	Run(ctx context.Context, platform, searchType, query string) ([]models.RawItem, error)
}

// PlaceFinder searches a places API for businesses matching a query.
// Satisfied by the Google Places client.
type PlaceFinder interface {
	Search(ctx context.Context, query string, limit int) ([]*models.Place, error)
}

// SiteFetcher retrieves the HTML of a business website.
type SiteFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// DiscoveryConfig tunes the website-enrichment fan-out.
type DiscoveryConfig struct {
	MaxConcurrency int
	RateLimitMs    int
}

// Discovery ties the discovery clients together into single search
// operations returning canonical results.
type Discovery struct {
	cfg     DiscoveryConfig
	runner  JobRunner
	places  PlaceFinder
	fetcher SiteFetcher
	norm    *Normalizer
	visited *utils.URLSet
	logger  *utils.Logger
}

// NewDiscovery creates a Discovery service. Collaborators a caller does not
// need may be nil, as long as the matching search method is never used.
func NewDiscovery(cfg DiscoveryConfig, runner JobRunner, places PlaceFinder, fetcher SiteFetcher, logger *utils.Logger) *Discovery {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	return &Discovery{
		cfg:     cfg,
		runner:  runner,
		places:  places,
		fetcher: fetcher,
		norm:    NewNormalizer(logger),
		visited: utils.NewURLSet(),
		logger:  logger,
	}
}

// Search runs one social discovery job and returns canonical accounts.
// Errors from the job client propagate wrapped but otherwise unchanged; a
// failed search never yields partial results.
func (d *Discovery) Search(ctx context.Context, platform, searchType, query string) ([]*models.Account, error) {
	items, err := d.runner.Run(ctx, platform, searchType, query)
	if err != nil {
		return nil, fmt.Errorf("discovery: %s search: %w", platform, err)
	}
	return d.norm.Normalize(items, platform), nil
}

// SearchPlaces finds businesses for a query and enriches each one that has a
// website with any Instagram handle found on its pages. Website fetches fan
// out across a rate-limited worker pool; a site that cannot be fetched just
// leaves its place unenriched.
func (d *Discovery) SearchPlaces(ctx context.Context, query string, limit int) ([]*models.Place, error) {
	places, err := d.places.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("discovery: places search: %w", err)
	}

	bySite := make(map[string][]*models.Place)
	for _, place := range places {
		site := strings.TrimSpace(place.Website)
		if site == "" {
			continue
		}
		bySite[site] = append(bySite[site], place)
	}

	pool := utils.NewWorkerPool(d.cfg.MaxConcurrency, d.cfg.RateLimitMs)
	for site, group := range bySite {
		if !d.visited.Add(site) {
			d.logger.Debug("[discovery] Skipping already-fetched website: %s", site)
			continue
		}

		site, group := site, group
		pool.Submit(ctx, func() {
			html, err := d.fetcher.FetchHTML(ctx, site)
			if err != nil {
				d.logger.Warn("[discovery] Website fetch failed for %s: %v", site, err)
				return
			}
			handle, ok := ExtractInstagramFromHTML(html)
			if !ok {
				return
			}
			for _, p := range group {
				p.InstagramHandle = handle
				p.InstagramURL = fmt.Sprintf(instagramProfileURL, handle)
			}
			d.logger.Info("[discovery] Found Instagram @%s on %s", handle, site)
		})
	}
	pool.Wait()

	withHandle := 0
	for _, p := range places {
		if p.InstagramHandle != "" {
			withHandle++
		}
	}
	d.logger.Info("[discovery] Places search %q: %d places, %d with an Instagram handle",
		query, len(places), withHandle)
	return places, nil
}
