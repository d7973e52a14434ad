package models

import "time"

// Platform values for discovered accounts.
const (
	PlatformTikTok    = "tiktok"
	PlatformInstagram = "instagram"
)

// Search types accepted by the discovery clients.
const (
	SearchTypeProfile = "profile"
	SearchTypeHashtag = "hashtag"
	SearchTypePlace   = "place"
)

// Source values recorded on persisted leads.
const (
	SourceGoogleMaps     = "google_maps"
	SourceApifyTikTok    = "apify_tiktok"
	SourceApifyInstagram = "apify_instagram"
	SourceManual         = "manual"
)

// Search run states.
const (
	RunStatusPending = "pending"
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// RawItem is one unprocessed dataset item as returned by a scraping actor.
// Field names and nesting vary per actor; the normalizer owns all access.
type RawItem map[string]any

// Account is a normalized social profile produced by a discovery search.
type Account struct {
	Name            string
	Username        string
	ProfileURL      string
	Platform        string
	FollowerCount   int
	Bio             string
	InstagramHandle string
	InstagramURL    string
	Location        string
}

// Place is one Google Places result, enriched with details and any
// Instagram handle found on the business website.
type Place struct {
	Name            string
	Address         string
	City            string
	Website         string
	PlaceID         string
	InstagramHandle string
	InstagramURL    string
}

// Lead is the persisted outreach record ready for PostgreSQL storage.
type Lead struct {
	ID              int64
	Name            string
	City            string
	Address         string
	Website         string
	InstagramHandle string
	InstagramURL    string
	TikTokHandle    string
	TikTokURL       string
	FollowerCount   int
	Bio             string
	Source          string
	Notes           string
	GooglePlaceID   string
	CreatedAt       time.Time
}

// SearchRun records one discovery invocation and its outcome.
type SearchRun struct {
	ID        int64
	RunID     string
	Query     string
	Source    string
	Status    string
	Found     int
	Saved     int
	CreatedAt time.Time
}

// LeadReport holds the computed analytics over the stored leads.
type LeadReport struct {
	TotalLeads     int
	WithInstagram  int
	WithTikTok     int
	LeadsBySource  map[string]int
	LeadsByCity    map[string]int
	TopByFollowers []*Lead
}

// SourceForPlatform maps a discovery platform to its lead source value.
func SourceForPlatform(platform string) string {
	switch platform {
	case PlatformTikTok:
		return SourceApifyTikTok
	case PlatformInstagram:
		return SourceApifyInstagram
	default:
		return SourceManual
	}
}

// LeadFromAccount shapes a discovered account into a persistable lead.
func LeadFromAccount(acc *Account, notes string) *Lead {
	lead := &Lead{
		Name:          acc.Name,
		City:          acc.Location,
		FollowerCount: acc.FollowerCount,
		Bio:           acc.Bio,
		Source:        SourceForPlatform(acc.Platform),
		Notes:         notes,
		CreatedAt:     time.Now(),
	}
	if lead.Name == "" {
		lead.Name = acc.Username
	}

	switch acc.Platform {
	case PlatformTikTok:
		lead.TikTokHandle = acc.Username
		lead.TikTokURL = acc.ProfileURL
		lead.InstagramHandle = acc.InstagramHandle
		lead.InstagramURL = acc.InstagramURL
	default:
		lead.InstagramHandle = acc.Username
		lead.InstagramURL = acc.ProfileURL
	}
	return lead
}

// LeadFromPlace shapes an enriched place into a persistable lead.
func LeadFromPlace(p *Place, notes string) *Lead {
	return &Lead{
		Name:            p.Name,
		City:            p.City,
		Address:         p.Address,
		Website:         p.Website,
		InstagramHandle: p.InstagramHandle,
		InstagramURL:    p.InstagramURL,
		Source:          SourceGoogleMaps,
		Notes:           notes,
		GooglePlaceID:   p.PlaceID,
		CreatedAt:       time.Now(),
	}
}
