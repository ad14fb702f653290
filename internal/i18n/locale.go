// Package i18n resolves the request locale and picks localized text out of
// locale-keyed mappings stored with catalog entries.
package i18n

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// DefaultLocale is used when a request carries no locale hint and as the
// universal fallback key for localized text.
const DefaultLocale = "en"

// QueryParam is the query string key that overrides Accept-Language.
const QueryParam = "locale"

// ResolveLocale derives the locale of a request.  An explicit ?locale= value
// wins and is lower-cased verbatim.  Otherwise the first entry of the
// Accept-Language header is used with its quality suffix dropped.  When
// neither yields a value the default locale is returned.
func ResolveLocale(query url.Values, header http.Header) string {
	if loc := query.Get(QueryParam); loc != "" {
		return strings.ToLower(loc)
	}
	if accept := header.Get("Accept-Language"); accept != "" {
		first, _, _ := strings.Cut(accept, ",")
		tag, _, _ := strings.Cut(first, ";")
		if tag = strings.TrimSpace(tag); tag != "" {
			return strings.ToLower(tag)
		}
	}
	return DefaultLocale
}

type localeKey struct{}

// WithLocale returns a copy of ctx carrying loc.  Every request gets its
// own value; nothing is shared between concurrent requests.
func WithLocale(ctx context.Context, loc string) context.Context {
	return context.WithValue(ctx, localeKey{}, loc)
}

// FromContext returns the locale stored by WithLocale or DefaultLocale.
func FromContext(ctx context.Context) string {
	if loc, ok := ctx.Value(localeKey{}).(string); ok && loc != "" {
		return loc
	}
	return DefaultLocale
}
