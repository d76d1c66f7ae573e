package urlutil

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters stripped during canonicalization. The
// set covers the UTM family, ad click identifiers and common referral tags.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"fbclid":       {},
	"yclid":        {},
	"msclkid":      {},
	"mc_cid":       {},
	"mc_eid":       {},
	"ref":          {},
	"referrer":     {},
	"spm":          {},
}

// Canonicalize reduces a URL to a comparable identity key: tracking query
// parameters removed, scheme/host lowercased, a leading www. and any trailing
// path slash stripped, remaining query parameters kept in their original
// relative order. Two URLs identify the same source iff their canonical
// forms are equal.
//
// Unparsable input degrades to a best-effort string transform; the function
// never fails.
func Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return fallbackCanonical(s)
	}
	u.Fragment = ""
	u.ForceQuery = false
	u.Scheme = strings.ToLower(u.Scheme)

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if (u.Scheme == "http" && strings.HasSuffix(host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(host, ":443")) {
		host = host[:strings.LastIndexByte(host, ':')]
	}
	u.Host = host

	u.Path = strings.TrimRight(u.Path, "/")
	if u.RawPath != "" {
		u.RawPath = strings.TrimRight(u.RawPath, "/")
	}
	u.RawQuery = stripTracking(u.RawQuery)
	return u.String()
}

// Host returns the lowercased hostname of a URL with any leading www.
// removed, or "" when no host can be determined.
func Host(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// stripTracking filters tracking parameters out of a raw query string while
// preserving the relative order of everything it keeps. url.Values cannot be
// used here: it re-sorts keys on encode.
func stripTracking(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		key := p
		if i := strings.IndexByte(p, '='); i >= 0 {
			key = p[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if _, tracked := trackingParams[strings.ToLower(key)]; tracked {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "&")
}

func fallbackCanonical(s string) string {
	out := strings.TrimRight(s, "/")
	out = strings.Replace(out, "://www.", "://", 1)
	out = strings.TrimPrefix(out, "www.")
	return out
}
