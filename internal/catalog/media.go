package catalog

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// MediaSource returns the registrable domain (eTLD+1) hosting a media link,
// e.g. "youtube.com" for "https://www.youtube.com/watch?v=x".
func MediaSource(rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Hostname()
	} else {
		if idx := strings.Index(host, "/"); idx >= 0 {
			host = host[:idx]
		}
		if idx := strings.Index(host, ":"); idx >= 0 {
			host = host[:idx]
		}
	}
	host = strings.ToLower(host)

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// MediaSources counts media links per source across the catalog.
func (c *Catalog) MediaSources() map[string]int {
	out := make(map[string]int)
	for _, e := range c.Entries {
		for _, m := range e.Videos {
			out[MediaSource(m.URL)]++
		}
	}
	return out
}
