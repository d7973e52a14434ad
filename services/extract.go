package services

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// instagramURLRegexp captures the path segment after instagram.com
	instagramURLRegexp = regexp.MustCompile(`(?i)instagram\.com/([a-zA-Z0-9._]+)`)
	// igLabelRegexp captures a handle after an "ig"/"insta"/"instagram" label
	igLabelRegexp = regexp.MustCompile(`(?i)(?:ig|insta|instagram)[\s:]*@?([a-zA-Z0-9._]+)`)
	// igMentionRegexp is the stricter label variant requiring an explicit @
	igMentionRegexp = regexp.MustCompile(`(?i)(?:ig|insta|instagram)[\s:]*@([a-zA-Z0-9._]+)`)
	// igEmojiRegexp captures a handle next to a camera/letter emoji
	igEmojiRegexp = regexp.MustCompile(`(?:📷|📸|💌)\s*@?([a-zA-Z0-9._]{3,30})`)
	// socialContainerRegexp matches class/id values of social-link widgets
	socialContainerRegexp = regexp.MustCompile(`(?i)social|footer|contact`)
)

// labelStopwords are phrasing artifacts ("Follow me on insta"), not handles.
var labelStopwords = map[string]struct{}{
	"follow": {},
	"me":     {},
	"on":     {},
	"for":    {},
	"more":   {},
}

// reservedIGPaths are Instagram route names, never profile handles.
var reservedIGPaths = map[string]struct{}{
	"p":        {},
	"reel":     {},
	"tv":       {},
	"stories":  {},
	"explore":  {},
	"accounts": {},
	"direct":   {},
}

// ExtractInstagramHandle scans free-form bio text for an Instagram handle.
// Patterns are tried in fixed priority order; the first hit wins:
// a full instagram.com URL, a labeled mention ("ig: name"), a labeled
// @-mention, then a camera-emoji mention backed by an ig/insta keyword.
func ExtractInstagramHandle(bio string) (string, bool) {
	if bio == "" {
		return "", false
	}

	if m := instagramURLRegexp.FindStringSubmatch(bio); m != nil {
		return m[1], true
	}

	if m := igLabelRegexp.FindStringSubmatch(bio); m != nil {
		if _, stop := labelStopwords[strings.ToLower(m[1])]; !stop {
			return m[1], true
		}
	} else if m := igMentionRegexp.FindStringSubmatch(bio); m != nil {
		// only reached when the looser label pattern matched nothing at all
		return m[1], true
	}

	if m := igEmojiRegexp.FindStringSubmatch(bio); m != nil {
		lower := strings.ToLower(bio)
		if strings.Contains(lower, "ig") || strings.Contains(lower, "insta") {
			return m[1], true
		}
	}

	return "", false
}

// ExtractInstagramFromHTML scans a web page for an Instagram profile link.
// Stages, first hit wins: anchor hrefs (anchors inside social/footer/contact
// containers join the same candidate pass), the rendered page text, then
// og:/twitter: metadata tags.
func ExtractInstagramFromHTML(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	var candidates []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.Contains(strings.ToLower(href), "instagram.com") {
			candidates = append(candidates, href)
		}
	})
	doc.Find("div, nav, footer, section").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		if !socialContainerRegexp.MatchString(class) && !socialContainerRegexp.MatchString(id) {
			return
		}
		sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if strings.Contains(strings.ToLower(href), "instagram.com") {
				candidates = append(candidates, href)
			}
		})
	})
	for _, href := range candidates {
		if handle, ok := InstagramHandleFromURL(href); ok {
			return handle, true
		}
	}

	for _, m := range instagramURLRegexp.FindAllStringSubmatch(doc.Text(), -1) {
		if _, reserved := reservedIGPaths[strings.ToLower(m[1])]; !reserved {
			return m[1], true
		}
	}

	var metaHandle string
	doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		prop, _ := sel.Attr("property")
		if prop == "" {
			prop, _ = sel.Attr("name")
		}
		if !strings.HasPrefix(prop, "og:") && !strings.HasPrefix(prop, "twitter:") {
			return true
		}
		content, _ := sel.Attr("content")
		if !strings.Contains(strings.ToLower(content), "instagram.com") {
			return true
		}
		if handle, ok := InstagramHandleFromURL(content); ok {
			metaHandle = handle
			return false
		}
		return true
	})
	if metaHandle != "" {
		return metaHandle, true
	}

	return "", false
}

// InstagramHandleFromURL extracts the profile handle from an Instagram URL.
// Route segments like /p/ or /explore/ are not handles.
func InstagramHandleFromURL(rawURL string) (string, bool) {
	m := instagramURLRegexp.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	if _, reserved := reservedIGPaths[strings.ToLower(m[1])]; reserved {
		return "", false
	}
	return m[1], true
}
