// Package urls provides the URL helpers shared by the OData document
// builders: path extraction and query-parameter overlay.
package urls

import (
	"fmt"
	"net/url"
	"strings"
)

// Pathname returns the path portion of rawURL, dropping any query string
// and fragment. Unparseable input degrades to a manual trim rather than an
// error.
func Pathname(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.EscapedPath()
	}
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// WithQueryParams returns rawURL with the given query parameters overlaid.
// A nil value deletes the parameter; any other value sets or overwrites it.
// Parameters not named in params survive untouched. The rebuilt query is
// form-encoded, so reserved characters like '$' come back percent-encoded.
func WithQueryParams(rawURL string, params map[string]*string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url %q: %w", rawURL, err)
	}

	q := u.Query()
	for key, value := range params {
		if value == nil {
			q.Del(key)
		} else {
			q.Set(key, *value)
		}
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
