package document

import (
	"net/url"
	"strings"
)

// NormalizeURL normalizes a URL so that equivalent spellings share one
// deduplication key. The fragment is removed and the scheme and host are
// lower-cased. Unparsable input is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	return u.String()
}
