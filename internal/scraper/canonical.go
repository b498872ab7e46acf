package scraper

import (
	"regexp"
	"strings"
)

// detailPathPattern matches the trailing /{numeric-id}-{slug} segment of a
// single-item detail page. Category listing pages ("/spells/") and anything
// else without that shape are rejected.
var detailPathPattern = regexp.MustCompile(`/\d+-[a-z0-9-]+$`)

// idPrefixPattern strips the leading numeric id from a slug:
// "12345-acid-splash" → "acid-splash".
var idPrefixPattern = regexp.MustCompile(`^\d+-`)

// CanonicalURL normalizes a raw crawl-index URL into the canonical form used
// as the dedup and storage identity key, or reports that the URL is not a
// detail page. Pure: no network, deterministic, idempotent.
func CanonicalURL(raw string) (string, bool) {
	clean := raw
	if i := strings.IndexByte(clean, '?'); i >= 0 {
		clean = clean[:i]
	}
	clean = strings.TrimRight(clean, "/")

	if !detailPathPattern.MatchString(clean) {
		return "", false
	}

	// force https canonical form
	switch {
	case strings.HasPrefix(clean, "https://"):
	case strings.HasPrefix(clean, "http://"):
		clean = "https://" + clean[len("http://"):]
	default:
		clean = "https://" + clean
	}

	return clean, true
}

// NameFromURL derives a display name from the canonical URL's trailing slug:
// ".../spells/241-acid-splash" → "Acid Splash".
func NameFromURL(url string) string {
	segment := url[strings.LastIndexByte(url, '/')+1:]
	slug := idPrefixPattern.ReplaceAllString(segment, "")
	return slugToName(slug)
}

// slugToName converts "acid-splash" → "Acid Splash".
func slugToName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
