package urlcanon

import (
	"net/url"
	"strings"
)

// Platform identifies which normalization rules apply to a URL. It doubles as
// the user-facing platform label returned by PlatformOf.
type Platform string

// Supported platforms. Anything that is not Twitter/X or YouTube gets the
// generic tracking-parameter treatment.
const (
	PlatformTwitter Platform = "twitter"
	PlatformYouTube Platform = "youtube"
	PlatformGeneric Platform = "generic"
)

func (p Platform) String() string { return string(p) }

var twitterDomains = []string{"twitter.com", "x.com"}

// hostMatchesDomain reports whether host is the given registrable domain or
// one of its subdomains. The dot-anchored suffix check keeps lookalikes such
// as "nottwitter.com" from matching "twitter.com". Both arguments are
// expected lowercased, host with any leading "www." already removed.
func hostMatchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// classify maps a cleaned hostname to its normalization platform. This is the
// single classifier shared by Normalize and PlatformOf.
func classify(host string) Platform {
	for _, domain := range twitterDomains {
		if hostMatchesDomain(host, domain) {
			return PlatformTwitter
		}
	}
	if hostMatchesDomain(host, "youtube.com") || host == "youtu.be" {
		return PlatformYouTube
	}
	return PlatformGeneric
}

// PlatformOf reports the platform label for a raw URL string. It tolerates
// malformed input the same way Normalize does: scheme-less strings get a
// repair attempt, and anything the parser cannot make sense of is reported
// as generic rather than an error.
func PlatformOf(raw string) Platform {
	if raw == "" {
		return PlatformGeneric
	}
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		return classify(cleanHost(u.Hostname()))
	}
	if !hasHTTPScheme(raw) {
		repaired := "https://" + strings.TrimLeft(raw, "/")
		if u, err := url.Parse(repaired); err == nil && u.Hostname() != "" {
			return classify(cleanHost(u.Hostname()))
		}
	}
	return PlatformGeneric
}
