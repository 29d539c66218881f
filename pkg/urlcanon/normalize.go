// Package urlcanon canonicalizes URLs so that two links pointing at the same
// piece of content compare equal for archival deduplication. Normalization
// strips volatile tracking parameters while keeping content-identifying ones,
// drops the scheme and fragment, lowercases the host and removes a leading
// "www.". All functions are pure and safe for concurrent use.
package urlcanon

import (
	"net/url"
	"regexp"
	"strings"
)

// trackingParams are query parameter names that carry analytics or referral
// attribution rather than content identity. Matching is case-sensitive:
// "UTM_SOURCE" is not stripped, only the lowercase spellings below are.
var trackingParams = map[string]struct{}{
	"utm_source":           {},
	"utm_medium":           {},
	"utm_campaign":         {},
	"utm_content":          {},
	"utm_term":             {},
	"utm_id":               {},
	"utm_source_platform":  {},
	"utm_creative_format":  {},
	"utm_marketing_tactic": {},
	"_ga":                  {},
	"_gl":                  {},
	"gclid":                {},
	"gclsrc":               {},
	"fbclid":               {},
	"fb_action_ids":        {},
	"fb_action_types":      {},
	"fb_source":            {},
	"fb_ref":               {},
	"msclkid":              {},
	"igshid":               {},
	"ref":                  {},
	"ref_src":              {},
	"ref_url":              {},
	"source":               {},
	"mc_cid":               {},
	"mc_eid":               {},
	"campaign_id":          {},
	"ad_id":                {},
	"adset_id":             {},
	"ad_name":              {},
	"adset_name":           {},
	"campaign_name":        {},
	"share":                {},
	"shared":               {},
}

// youtubeParams are the only query parameters kept on YouTube URLs, emitted
// in this order.
var youtubeParams = []string{"v", "list"}

var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)

// Normalize converts a raw URL string into its canonical form: lowercased
// host without "www.", path, and a query string filtered by platform rules.
// The scheme and fragment never appear in the output.
//
// Normalize never fails. Input the URL parser rejects goes through a
// two-stage recovery pipeline: first a scheme repair and reparse, then a
// manual split that returns a lightly cleaned string without query
// filtering. Empty input yields the empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if out, ok := normalizeParsed(raw); ok {
		return out
	}
	// Stage one: scheme-less and protocol-relative strings get https://
	// prepended so the standard parser, and with it the full query
	// filtering, gets a second chance.
	if !hasHTTPScheme(raw) {
		repaired := "https://" + strings.TrimLeft(raw, "/")
		if out, ok := normalizeParsed(repaired); ok {
			return out
		}
	}
	// Stage two: best-effort string surgery, no query filtering.
	return normalizeFallback(raw)
}

// Match reports whether two raw URL strings reference the same content,
// defined as exact equality of their canonical forms.
func Match(url1, url2 string) bool {
	return Normalize(url1) == Normalize(url2)
}

// normalizeParsed is the primary path. It reports ok=false when the input
// does not parse or parses without a hostname (Go's parser accepts bare
// "host/path" strings as relative URLs, which must go through recovery).
func normalizeParsed(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	host := canonicalHost(cleanHost(u.Hostname()))
	out := host + u.EscapedPath()
	if query := filterQuery(classify(host), u.RawQuery); query != "" {
		out += "?" + query
	}
	return out, true
}

// normalizeFallback strips any leading scheme and slashes, then splits at the
// first '/', '?' or '#'. The left side is treated as the hostname; the rest
// is appended verbatim, tracking parameters included. Degraded on purpose.
func normalizeFallback(raw string) string {
	rest := strings.TrimLeft(schemePrefix.ReplaceAllString(raw, ""), "/")
	i := strings.IndexAny(rest, "/?#")
	if i < 0 {
		return cleanHost(rest)
	}
	return cleanHost(rest[:i]) + rest[i:]
}

func hasHTTPScheme(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// cleanHost lowercases a hostname and removes a single leading "www.".
func cleanHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// canonicalHost folds host aliases together. x.com is the same service as
// twitter.com, so links from before and after the rebrand compare equal.
func canonicalHost(host string) string {
	if host == "x.com" {
		return "twitter.com"
	}
	if strings.HasSuffix(host, ".x.com") {
		return strings.TrimSuffix(host, "x.com") + "twitter.com"
	}
	return host
}

// filterQuery applies the platform's query policy to a raw query string.
// Parameters are handled as raw key=value segments: values are never decoded
// and re-encoded, and surviving parameters keep their original relative
// order.
func filterQuery(platform Platform, rawQuery string) string {
	switch platform {
	case PlatformTwitter:
		// Status identity lives in the path; the query is all noise.
		return ""
	case PlatformYouTube:
		return filterYouTubeQuery(rawQuery)
	default:
		return filterGenericQuery(rawQuery)
	}
}

// filterYouTubeQuery keeps only the video and playlist parameters, in that
// fixed order, dropping timestamps, indexes and everything else.
func filterYouTubeQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	found := map[string]string{}
	for _, segment := range strings.Split(rawQuery, "&") {
		name := segmentName(segment)
		for _, want := range youtubeParams {
			if name == want {
				if _, ok := found[name]; !ok {
					found[name] = segment
				}
			}
		}
	}
	var kept []string
	for _, name := range youtubeParams {
		if segment, ok := found[name]; ok {
			kept = append(kept, segment)
		}
	}
	return strings.Join(kept, "&")
}

// filterGenericQuery removes denylisted tracking parameters and keeps the
// rest untouched.
func filterGenericQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	var kept []string
	for _, segment := range strings.Split(rawQuery, "&") {
		if segment == "" {
			continue
		}
		if _, tracking := trackingParams[segmentName(segment)]; tracking {
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, "&")
}

// segmentName returns the raw parameter name of a key=value query segment.
func segmentName(segment string) string {
	if i := strings.IndexByte(segment, '='); i >= 0 {
		return segment[:i]
	}
	return segment
}
