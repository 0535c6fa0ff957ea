package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize canonicalizes a raw href into an absolute, comparable URL
// string. The href is resolved against the crawl base, the fragment is
// stripped, an empty path becomes "/", and a single non-root trailing
// slash is removed. Query
// strings and letter case are preserved; case folding happens only at
// membership-check time via Key.
//
// Design decision: We normalize before any dedup or origin check because:
//  1. The same page can have many href spellings (relative, fragment, slash)
//  2. Fragment (#anchor) never changes the fetched content
//  3. A single canonical form makes the visited set the sole dedup gate
func Normalize(base *url.URL, href string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("unusable link %q: %w", href, err)
	}

	resolved := base.ResolveReference(u)
	resolved.Fragment = ""

	// Normalize root path (empty path and "/" are equivalent)
	if resolved.Path == "" {
		resolved.Path = "/"
	}

	// Trim exactly one trailing slash; the root path "/" stays as is.
	if len(resolved.Path) > 1 && strings.HasSuffix(resolved.Path, "/") {
		resolved.Path = resolved.Path[:len(resolved.Path)-1]
		if resolved.RawPath != "" {
			resolved.RawPath = strings.TrimSuffix(resolved.RawPath, "/")
		}
	}

	return resolved.String(), nil
}

// Key returns the membership-set key for a normalized URL.
// Two URLs whose keys match are treated as the same page.
func Key(normalized string) string {
	return strings.ToLower(normalized)
}

// SameOrigin reports whether target belongs to the same origin as the
// crawl base: its host must equal the base host, case-insensitively.
// No path-prefix or subdomain logic is applied, and any parse failure
// counts as off-origin.
func SameOrigin(base *url.URL, target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Host != "" && strings.EqualFold(u.Host, base.Host)
}
