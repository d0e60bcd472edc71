// Package matcher holds the pure matching primitives used by the blocking
// engine. Every function is total: malformed URLs or patterns degrade to
// "no match" because a false negative fails open toward not blocking, while
// a panic could take down the caller's navigation path.
package matcher

import (
	"net/url"
	"regexp"
	"strings"
)

// NormalizeDomain strips the scheme, path, query, and port from a raw
// domain or URL string and lowercases the remainder. A leading "www." is
// removed unless the rest of the pattern begins with a wildcard marker.
func NormalizeDomain(raw string) string {
	d := strings.TrimSpace(strings.ToLower(raw))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.Index(d, "@"); i >= 0 {
		d = d[i+1:]
	}
	if i := strings.Index(d, ":"); i >= 0 {
		d = d[:i]
	}
	if rest, ok := strings.CutPrefix(d, "www."); ok && !strings.HasPrefix(rest, "*") {
		d = rest
	}
	return d
}

// Hostname extracts the lowercased hostname from a raw URL. It returns ""
// for URLs it cannot make sense of instead of an error.
func Hostname(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// MatchesDomain reports whether the URL's hostname matches a stored domain
// pattern. Wildcard patterns ("*" segments) compile to an anchored,
// case-insensitive regular expression where "*" matches any run of
// characters. Non-wildcard patterns match the hostname exactly or as a
// suffix behind a dot, so "example.com" also covers "sub.example.com".
func MatchesDomain(rawURL, pattern string) bool {
	host := Hostname(rawURL)
	if host == "" {
		return false
	}
	p := NormalizeDomain(pattern)
	if p == "" {
		return false
	}

	if strings.Contains(p, "*") {
		re, err := compileWildcard(p)
		if err != nil {
			return false
		}
		return re.MatchString(host)
	}

	return host == p || strings.HasSuffix(host, "."+p)
}

// compileWildcard turns a wildcard domain pattern into an anchored regexp.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for i, part := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(part))
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// MatchDomains returns the first pattern in the list that matches the URL.
func MatchDomains(rawURL string, patterns []string) (string, bool) {
	for _, p := range patterns {
		if MatchesDomain(rawURL, p) {
			return p, true
		}
	}
	return "", false
}

// MatchURLKeyword returns the first keyword found as a case-insensitive
// substring of the full URL string.
func MatchURLKeyword(rawURL string, keywords []string) (string, bool) {
	u := strings.ToLower(rawURL)
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(u, k) {
			return kw, true
		}
	}
	return "", false
}

// MatchContentKeyword returns the first keyword found as a case-insensitive
// substring of the page's rendered text. An empty pageText means no document
// was supplied and never matches.
func MatchContentKeyword(pageText string, keywords []string) (string, bool) {
	if pageText == "" {
		return "", false
	}
	body := strings.ToLower(pageText)
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		if strings.Contains(body, k) {
			return kw, true
		}
	}
	return "", false
}

// ValidDomainPattern reports whether a pattern is storable. A bare "*" is
// rejected at authoring time because it would block everything.
func ValidDomainPattern(pattern string) bool {
	p := NormalizeDomain(pattern)
	if p == "" || p == "*" {
		return false
	}
	if strings.Contains(p, "*") {
		_, err := compileWildcard(p)
		return err == nil
	}
	return true
}
