package services

import (
	"fmt"
	"sort"
	"strings"

	"leadscout/models"
	"leadscout/utils"
)

type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

func (s *ReportService) Generate(leads []*models.Lead) *models.LeadReport {
	report := &models.LeadReport{
		LeadsBySource: make(map[string]int),
		LeadsByCity:   make(map[string]int),
	}

	if len(leads) == 0 {
		return report
	}

	report.TotalLeads = len(leads)

	var followed []*models.Lead
	for _, l := range leads {
		if l.InstagramHandle != "" {
			report.WithInstagram++
		}
		if l.TikTokHandle != "" {
			report.WithTikTok++
		}
		if l.Source != "" {
			report.LeadsBySource[l.Source]++
		}
		if l.City != "" {
			report.LeadsByCity[l.City]++
		}
		if l.FollowerCount > 0 {
			followed = append(followed, l)
		}
	}

	// Top 5 by follower count
	sort.Slice(followed, func(i, j int) bool {
		return followed[i].FollowerCount > followed[j].FollowerCount
	})
	if len(followed) > 5 {
		report.TopByFollowers = followed[:5]
	} else {
		report.TopByFollowers = followed
	}

	return report
}

func (s *ReportService) Print(r *models.LeadReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 LEAD DISCOVERY INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total leads stored     : \033[1m%d\033[0m\n", r.TotalLeads)
	fmt.Printf("  With Instagram handle  : \033[1m%d\033[0m%s\n", r.WithInstagram, coverage(r.WithInstagram, r.TotalLeads))
	fmt.Printf("  With TikTok handle     : \033[1m%d\033[0m%s\n", r.WithTikTok, coverage(r.WithTikTok, r.TotalLeads))
	fmt.Println()

	// Leads by Source
	fmt.Printf("\033[1;33m  Leads by Source\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.LeadsBySource) == 0 {
		fmt.Printf("  No source data\n")
	} else {
		for _, sc := range sortedCounts(r.LeadsBySource) {
			fmt.Printf("  %-30s \033[1m%d\033[0m\n", sc.key, sc.count)
		}
	}
	fmt.Println()

	// Top by Followers
	fmt.Printf("\033[1;33m  Top 5 by Follower Count\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopByFollowers) == 0 {
		fmt.Printf("  No follower data\n")
	} else {
		for i, l := range r.TopByFollowers {
			handle := l.InstagramHandle
			if handle == "" {
				handle = l.TikTokHandle
			}
			name := truncate(l.Name, 30)
			fmt.Printf("  \033[1m%d.\033[0m %-32s @%-20s \033[1;32m%d\033[0m\n",
				i+1, name, handle, l.FollowerCount)
		}
	}
	fmt.Println()

	// Leads by City
	fmt.Printf("\033[1;33m  Leads by City\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.LeadsByCity) == 0 {
		fmt.Printf("  No city data\n")
	} else {
		for _, cc := range sortedCounts(r.LeadsByCity) {
			bar := strings.Repeat("█", cc.count)
			fmt.Printf("  %-30s %s (%d)\n", truncate(cc.key, 28), bar, cc.count)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts flattens a count map to a slice sorted by count descending.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		if k != "" {
			out = append(out, keyCount{k, c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func coverage(part, total int) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf(" (%.0f%%)", float64(part)/float64(total)*100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
