package services

import (
	"fmt"

	"leadscout/models"
	"leadscout/utils"
)

// Profile URL templates per platform.
const (
	tiktokProfileURL    = "https://www.tiktok.com/@%s"
	instagramProfileURL = "https://www.instagram.com/%s/"
)

// Normalizer maps raw actor dataset items into canonical accounts.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts raw items from one platform into canonical accounts.
// Items without a resolvable username are dropped, as is the whole batch for
// an unknown platform; input order is preserved.
func (n *Normalizer) Normalize(items []models.RawItem, platform string) []*models.Account {
	accounts := make([]*models.Account, 0, len(items))
	for _, item := range items {
		var acc *models.Account
		switch platform {
		case models.PlatformTikTok:
			acc = normalizeTikTok(item)
		case models.PlatformInstagram:
			acc = normalizeInstagram(item)
		default:
			continue
		}
		if acc.Username == "" {
			continue
		}
		accounts = append(accounts, acc)
	}
	n.logger.Info("[normalize] %s: kept %d of %d raw items", platform, len(accounts), len(items))
	return accounts
}

// normalizeTikTok reads the TikTok actor item shape. Field names drifted
// across actor versions, so every lookup carries a fallback.
func normalizeTikTok(item models.RawItem) *models.Account {
	meta := subItem(item, "authorMeta")

	username := stringField(meta, "name")
	if username == "" {
		username = stringField(item, "author")
	}
	name := stringField(meta, "name")
	if name == "" {
		name = stringField(item, "nickname")
	}
	bio := stringField(meta, "signature")
	if bio == "" {
		bio = stringField(item, "signature")
	}

	acc := &models.Account{
		Name:          name,
		Username:      username,
		ProfileURL:    fmt.Sprintf(tiktokProfileURL, username),
		Platform:      models.PlatformTikTok,
		FollowerCount: intField(meta, "fans"),
		Bio:           bio,
		Location:      stringField(item, "locationName", "location"),
	}
	if handle, ok := ExtractInstagramHandle(bio); ok {
		acc.InstagramHandle = handle
		acc.InstagramURL = fmt.Sprintf(instagramProfileURL, handle)
	}
	return acc
}

// normalizeInstagram reads the Instagram search actor item shape.
func normalizeInstagram(item models.RawItem) *models.Account {
	username := stringField(item, "username")

	followers := intField(item, "followersCount")
	if followers == 0 {
		followers = intField(subItem(item, "edge_followed_by"), "count")
	}

	acc := &models.Account{
		Name:          stringField(item, "full_name", "fullName"),
		Username:      username,
		ProfileURL:    fmt.Sprintf(instagramProfileURL, username),
		Platform:      models.PlatformInstagram,
		FollowerCount: followers,
		Bio:           stringField(item, "biography"),
		Location:      stringField(item, "locationName", "location"),
	}
	if username != "" {
		acc.InstagramHandle = username
		acc.InstagramURL = acc.ProfileURL
	}
	return acc
}

// stringField returns the first non-empty string value among keys.
func stringField(item models.RawItem, keys ...string) string {
	for _, k := range keys {
		if v, ok := item[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// intField returns the first positive numeric value among keys, so a missing
// or negative count degrades to zero.
func intField(item models.RawItem, keys ...string) int {
	for _, k := range keys {
		switch v := item[k].(type) {
		case float64:
			if v > 0 {
				return int(v)
			}
		case int:
			if v > 0 {
				return v
			}
		}
	}
	return 0
}

// subItem returns a nested object value, or nil when absent or mistyped.
func subItem(item models.RawItem, key string) models.RawItem {
	switch m := item[key].(type) {
	case map[string]any:
		return models.RawItem(m)
	case models.RawItem:
		return m
	}
	return nil
}
