package services

import (
	"testing"

	"leadscout/models"
	"leadscout/utils"
)

func sampleLeads() []*models.Lead {
	return []*models.Lead{
		{Name: "Cafe Luna", City: "Austin", Source: models.SourceGoogleMaps, InstagramHandle: "cafe.luna", FollowerCount: 4800},
		{Name: "Dance Daily", Source: models.SourceApifyTikTok, TikTokHandle: "dance.daily", InstagramHandle: "dance.official", FollowerCount: 125000},
		{Name: "Gallery Nine", City: "Austin", Source: models.SourceApifyInstagram, InstagramHandle: "gallery.nine", FollowerCount: 932},
		{Name: "Plant Mom", Source: models.SourceApifyTikTok, TikTokHandle: "plantmom"},
		{Name: "Solo Cafe", City: "Dallas", Source: models.SourceGoogleMaps, InstagramHandle: "solo.cafe"},
		{Name: "Studio Move", Source: models.SourceApifyTikTok, TikTokHandle: "studio.move", InstagramHandle: "studio.move", FollowerCount: 15400},
	}
}

func TestReportCounts(t *testing.T) {
	svc := NewReportService(utils.NewLogger())
	r := svc.Generate(sampleLeads())
	if r.TotalLeads != 6 {
		t.Errorf("TotalLeads: got %d, want 6", r.TotalLeads)
	}
	if r.WithInstagram != 5 {
		t.Errorf("WithInstagram: got %d, want 5", r.WithInstagram)
	}
	if r.WithTikTok != 3 {
		t.Errorf("WithTikTok: got %d, want 3", r.WithTikTok)
	}
}

func TestReportSourceGrouping(t *testing.T) {
	svc := NewReportService(utils.NewLogger())
	r := svc.Generate(sampleLeads())
	if r.LeadsBySource[models.SourceGoogleMaps] != 2 {
		t.Errorf("google_maps count: got %d, want 2", r.LeadsBySource[models.SourceGoogleMaps])
	}
	if r.LeadsBySource[models.SourceApifyTikTok] != 3 {
		t.Errorf("apify_tiktok count: got %d, want 3", r.LeadsBySource[models.SourceApifyTikTok])
	}
	if r.LeadsBySource[models.SourceApifyInstagram] != 1 {
		t.Errorf("apify_instagram count: got %d, want 1", r.LeadsBySource[models.SourceApifyInstagram])
	}
}

func TestReportCityGrouping(t *testing.T) {
	svc := NewReportService(utils.NewLogger())
	r := svc.Generate(sampleLeads())
	if len(r.LeadsByCity) != 2 {
		t.Errorf("city groups: got %d, want 2", len(r.LeadsByCity))
	}
	if r.LeadsByCity["Austin"] != 2 {
		t.Errorf("Austin count: got %d, want 2", r.LeadsByCity["Austin"])
	}
	if r.LeadsByCity["Dallas"] != 1 {
		t.Errorf("Dallas count: got %d, want 1", r.LeadsByCity["Dallas"])
	}
}

func TestReportTopByFollowers(t *testing.T) {
	svc := NewReportService(utils.NewLogger())
	r := svc.Generate(sampleLeads())
	if len(r.TopByFollowers) != 4 {
		t.Fatalf("TopByFollowers len: got %d, want 4 (zero-follower leads excluded)", len(r.TopByFollowers))
	}
	if r.TopByFollowers[0].Name != "Dance Daily" {
		t.Errorf("TopByFollowers[0]: got %q, want %q", r.TopByFollowers[0].Name, "Dance Daily")
	}
	if r.TopByFollowers[3].FollowerCount != 932 {
		t.Errorf("TopByFollowers[3].FollowerCount: got %d, want 932", r.TopByFollowers[3].FollowerCount)
	}
}

func TestReportTopCapsAtFive(t *testing.T) {
	var leads []*models.Lead
	for i := 1; i <= 7; i++ {
		leads = append(leads, &models.Lead{Name: "L", FollowerCount: i * 100})
	}

	svc := NewReportService(utils.NewLogger())
	r := svc.Generate(leads)
	if len(r.TopByFollowers) != 5 {
		t.Fatalf("TopByFollowers len: got %d, want 5", len(r.TopByFollowers))
	}
	if r.TopByFollowers[0].FollowerCount != 700 {
		t.Errorf("TopByFollowers[0].FollowerCount: got %d, want 700", r.TopByFollowers[0].FollowerCount)
	}
	if r.TopByFollowers[4].FollowerCount != 300 {
		t.Errorf("TopByFollowers[4].FollowerCount: got %d, want 300", r.TopByFollowers[4].FollowerCount)
	}
}

func TestReportEmptyInput(t *testing.T) {
	svc := NewReportService(utils.NewLogger())
	r := svc.Generate(nil)
	if r.TotalLeads != 0 {
		t.Errorf("expected 0 total leads for empty input")
	}
	if len(r.TopByFollowers) != 0 {
		t.Errorf("expected no top leads for empty input")
	}
}

func TestSortedCounts(t *testing.T) {
	got := sortedCounts(map[string]int{"austin": 2, "dallas": 2, "houston": 5, "": 9})

	wantKeys := []string{"houston", "austin", "dallas"}
	if len(got) != len(wantKeys) {
		t.Fatalf("got %d entries, want %d (empty key dropped)", len(got), len(wantKeys))
	}
	for i, want := range wantKeys {
		if got[i].key != want {
			t.Errorf("sortedCounts[%d]: got %q, want %q", i, got[i].key, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly..ten", 12, "exactly..ten"},
		{"a very long business name here", 10, "a very ..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
