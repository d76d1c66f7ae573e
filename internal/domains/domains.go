// Package domains holds the static domain classification policy: a blocklist
// of hosts we never cite, a curated trust list of authoritative publishers,
// and the site's own publishing domain which is always excluded from
// citations. The lists are immutable after process start and safe for
// unsynchronized concurrent reads.
package domains

import (
	"strings"

	"github.com/wanderkh/topicgen/internal/urlutil"
)

// OwnDomain is the pipeline's own publishing domain. Self-citation is never
// allowed, independent of the generic blocklist.
const OwnDomain = "wanderkh.com"

// blocklist covers user-generated and aggregator hosts that make poor
// grounding sources. Matching is exact-or-subdomain.
var blocklist = []string{
	"pinterest.com",
	"quora.com",
	"reddit.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"tiktok.com",
	"youtube.com",
	"linkedin.com",
	"medium.com",
	"tripadvisor.com",
	"answers.com",
}

// trustlist covers government, aviation/immigration authorities and major
// news outlets whose reporting we weight up during scoring.
var trustlist = []string{
	"gov.kh",
	"evisa.gov.kh",
	"immigration.gov.kh",
	"mfaic.gov.kh",
	"tourismcambodia.org",
	"iata.org",
	"icao.int",
	"state.gov",
	"gov.uk",
	"smartraveller.gov.au",
	"reuters.com",
	"apnews.com",
	"bbc.com",
	"theguardian.com",
	"aljazeera.com",
	"nikkei.com",
	"channelnewsasia.com",
	"khmertimeskh.com",
	"phnompenhpost.com",
	"cambodianess.com",
}

// Policy classifies hostnames against the static lists. The zero value uses
// the package defaults; tests may construct narrower policies.
type Policy struct {
	Own     string
	Blocked []string
	Trusted []string
}

// Default returns the production policy.
func Default() Policy {
	return Policy{Own: OwnDomain, Blocked: blocklist, Trusted: trustlist}
}

// IsBlockedURL reports whether the URL's host is on the blocklist. Hostless
// or unparsable URLs are not blocked here; they fail earlier gates.
func (p Policy) IsBlockedURL(raw string) bool {
	return p.IsBlockedHost(urlutil.Host(raw))
}

// IsBlockedHost reports whether host exactly matches, or is a subdomain of,
// a blocklist entry.
func (p Policy) IsBlockedHost(host string) bool {
	return matchesAny(host, p.Blocked)
}

// IsHighTrust reports whether host exactly matches, or is a subdomain of, a
// trust-list entry.
func (p Policy) IsHighTrust(host string) bool {
	return matchesAny(host, p.Trusted)
}

// IsOwnHost reports whether host belongs to the site's own publishing domain.
func (p Policy) IsOwnHost(host string) bool {
	own := p.Own
	if own == "" {
		own = OwnDomain
	}
	return matchesDomain(host, own)
}

func matchesAny(host string, list []string) bool {
	for _, d := range list {
		if matchesDomain(host, d) {
			return true
		}
	}
	return false
}

// matchesDomain reports exact-or-subdomain membership: host "a.b.gov.kh"
// matches domain "gov.kh" but "notgov.kh" does not.
func matchesDomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	domain = strings.ToLower(strings.TrimSpace(domain))
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
