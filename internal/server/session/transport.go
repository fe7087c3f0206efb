// Package session binds the signed session token to its HTTP transport:
// an HttpOnly cookie with a bearer-header fallback for non-browser
// clients.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/llave/internal/common"
)

// Options are the recognized, environment-configurable cookie attributes.
type Options struct {
	// Secure restricts the cookie to HTTPS transports.
	Secure bool
	// SameSite is one of "lax", "strict" or "none"; anything else falls
	// back to lax.
	SameSite string
	// Domain scopes the cookie to a domain; empty means host-only.
	Domain string
}

// Transport issues and reads session cookies. It is immutable after
// construction and safe for concurrent use.
type Transport struct {
	opts     Options
	lifetime time.Duration
}

func NewTransport(opts Options, lifetime time.Duration) *Transport {
	return &Transport{opts: opts, lifetime: lifetime}
}

func (t *Transport) sameSite() http.SameSite {
	switch strings.ToLower(t.opts.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Cookie binds the token to a cookie whose lifetime matches the token's.
func (t *Transport) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     common.AuthCookieName,
		Value:    token,
		Path:     "/",
		Domain:   t.opts.Domain,
		MaxAge:   int(t.lifetime.Seconds()),
		Expires:  time.Now().Add(t.lifetime),
		HttpOnly: true,
		Secure:   t.opts.Secure,
		SameSite: t.sameSite(),
	}
}

// Extract reads the session token from the request: cookie first, then an
// "Authorization: Bearer" header. Absence of both is not an error.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	if c, err := r.Cookie(common.AuthCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	header := r.Header.Get(common.AuthHeaderName)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], true
		}
	}

	return "", false
}

// ClearCookie returns an immediately-expiring cookie that terminates the
// session client-side. The token itself stays valid until expiry; there is
// no server-side revocation.
func (t *Transport) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     common.AuthCookieName,
		Value:    "",
		Path:     "/",
		Domain:   t.opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.opts.Secure,
		SameSite: t.sameSite(),
	}
}
