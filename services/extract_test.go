package services

import "testing"

func TestExtractInstagramHandle(t *testing.T) {
	tests := []struct {
		name string
		bio  string
		want string
		ok   bool
	}{
		{"direct url", "all my work on instagram.com/cool_shop", "cool_shop", true},
		{"url beats label", "instagram.com/alice for prints, ig: bob for chat", "alice", true},
		{"labeled handle", "insta: cool_shop", "cool_shop", true},
		{"labeled with at", "IG @wanderlust.travels", "wanderlust.travels", true},
		{"label colon space", "IG : daily.fits", "daily.fits", true},
		{"stoplist phrasing", "Follow me on IG: follow", "", false},
		{"emoji without keyword", "📷 @janedoe", "", false},
		{"emoji with keyword", "📸 insta janedoe", "janedoe", true},
		{"emoji handle keyword elsewhere", "DM 💌 @flower.shop on insta for orders", "flower.shop", true},
		{"empty bio", "", "", false},
		{"no handle at all", "best pizza in town, call us now", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractInstagramHandle(tt.bio)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: ExtractInstagramHandle(%q) = (%q, %v); want (%q, %v)",
				tt.name, tt.bio, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExtractInstagramFromHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{
			"plain anchor",
			`<html><body><a href="https://instagram.com/realhandle">follow us</a></body></html>`,
			"realhandle", true,
		},
		{
			"reserved path skipped then real link",
			`<html><body>
				<a href="https://instagram.com/p/xyz">latest post</a>
				<a href="https://instagram.com/realhandle">profile</a>
			</body></html>`,
			"realhandle", true,
		},
		{
			"only reserved paths",
			`<html><body><a href="https://instagram.com/reel/Cab12">reel</a></body></html>`,
			"", false,
		},
		{
			"footer social widget",
			`<html><body>
				<div class="footer-social">
					<a href="https://www.instagram.com/cafe.handle/">ig</a>
				</div>
			</body></html>`,
			"cafe.handle", true,
		},
		{
			"text scan fallback",
			`<html><body><p>Find us at instagram.com/shopname for daily photos.</p></body></html>`,
			"shopname", true,
		},
		{
			"meta tag fallback",
			`<html><head><meta property="og:description" content="See https://instagram.com/metashop"></head><body></body></html>`,
			"metashop", true,
		},
		{
			"meta name attribute",
			`<html><head><meta name="twitter:description" content="instagram.com/tweetshop"></head><body></body></html>`,
			"tweetshop", true,
		},
		{
			"anchor beats text scan",
			`<html><body>
				<a href="https://instagram.com/anchorhandle">ig</a>
				<p>also instagram.com/texthandle</p>
			</body></html>`,
			"anchorhandle", true,
		},
		{
			"no instagram anywhere",
			`<html><body><a href="https://example.com">home</a></body></html>`,
			"", false,
		},
	}

	for _, tt := range tests {
		got, ok := ExtractInstagramFromHTML(tt.html)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: got (%q, %v); want (%q, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInstagramHandleFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://instagram.com/someuser", "someuser", true},
		{"https://www.instagram.com/some.user/", "some.user", true},
		{"http://INSTAGRAM.COM/CamelUser", "CamelUser", true},
		{"https://instagram.com/realhandle?hl=en", "realhandle", true},
		{"https://instagram.com/p/Cxyz123", "", false},
		{"https://instagram.com/explore/tags/food", "", false},
		{"https://instagram.com/stories/someone/123", "", false},
		{"https://example.com/someuser", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := InstagramHandleFromURL(tt.url)
		if got != tt.want || ok != tt.ok {
			t.Errorf("InstagramHandleFromURL(%q) = (%q, %v); want (%q, %v)",
				tt.url, got, ok, tt.want, tt.ok)
		}
	}
}
