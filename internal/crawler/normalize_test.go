package crawler

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "http://example.com")

	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "absolute URL unchanged",
			href: "http://example.com/about",
			want: "http://example.com/about",
		},
		{
			name: "relative path resolved against base",
			href: "/about",
			want: "http://example.com/about",
		},
		{
			name: "fragment stripped",
			href: "http://example.com/page#section",
			want: "http://example.com/page",
		},
		{
			name: "bare fragment resolves to base root",
			href: "#top",
			want: "http://example.com/",
		},
		{
			name: "empty path canonicalizes to root",
			href: "http://example.com",
			want: "http://example.com/",
		},
		{
			name: "single trailing slash trimmed",
			href: "http://example.com/about/",
			want: "http://example.com/about",
		},
		{
			name: "root slash kept",
			href: "http://example.com/",
			want: "http://example.com/",
		},
		{
			name: "query string preserved",
			href: "http://example.com/search?q=Go&page=2",
			want: "http://example.com/search?q=Go&page=2",
		},
		{
			name: "letter case preserved",
			href: "http://example.com/About/Team",
			want: "http://example.com/About/Team",
		},
		{
			name: "surrounding whitespace trimmed",
			href: "  /contact  ",
			want: "http://example.com/contact",
		},
		{
			name: "fragment and trailing slash together",
			href: "/docs/#intro",
			want: "http://example.com/docs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(base, tt.href)
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.href, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "http://example.com")

	inputs := []string{
		"http://example.com/about/",
		"/docs/guide#setup",
		"http://example.com/search?q=x",
	}

	for _, href := range inputs {
		once, err := Normalize(base, href)
		if err != nil {
			t.Fatalf("Normalize(%q) error = %v", href, err)
		}
		twice, err := Normalize(base, once)
		if err != nil {
			t.Fatalf("Normalize(%q) error = %v", once, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", href, once, twice)
		}
	}
}

func TestNormalizeRootEquivalence(t *testing.T) {
	t.Parallel()

	// A base spelled without a trailing slash and a link to "/" are the
	// same page and must share one membership key.
	base := mustParse(t, "http://example.com")

	bare, err := Normalize(base, "http://example.com")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	slash, err := Normalize(base, "/")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if Key(bare) != Key(slash) {
		t.Errorf("root keys differ: %q != %q", Key(bare), Key(slash))
	}
}

func TestNormalizeRejectsUnparsable(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "http://example.com")

	if _, err := Normalize(base, "http://example.com/%zz"); err == nil {
		t.Error("Normalize() error = nil, want parse error for invalid escape")
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	a := Key("http://Example.COM/About")
	b := Key("http://example.com/about")
	if a != b {
		t.Errorf("Key mismatch: %q != %q", a, b)
	}

	// Keys fold case for membership only; they never feed back into fetching.
	if got, want := Key("HTTP://X.TEST/Page?Q=1"), "http://x.test/page?q=1"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestSameOrigin(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "http://example.com")

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"same host", "http://example.com/page", true},
		{"host case-insensitive", "http://EXAMPLE.COM/page", true},
		{"different scheme same host", "https://example.com/page", true},
		{"different host", "http://other.com/page", false},
		{"subdomain is a different host", "http://www.example.com/page", false},
		{"different port is a different host", "http://example.com:8080/page", false},
		{"schemeless relative", "/page", false},
		{"unparsable", "http://%zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SameOrigin(base, tt.target); got != tt.want {
				t.Errorf("SameOrigin(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}
