package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inspecio/platform-iam/internal/infra/security"
)

// SessionCookieName carries the access token between requests.
const SessionCookieName = "inspecio_session"

const defaultCookieMaxAge = 7 * 24 * time.Hour

// ErrCookieMissing indicates the named cookie was not present on the request.
var ErrCookieMissing = errors.New("cookie missing")

// CookieOptions is the per-call override bag for the cookie helpers. Zero
// values fall back to the manager defaults.
type CookieOptions struct {
	Domain string
	Path   string
	MaxAge time.Duration
}

// CookieManager writes and reads cookies with the hardened attributes applied
// uniformly: HttpOnly, SameSite=Strict, and Secure outside development.
type CookieManager struct {
	domain string
	maxAge time.Duration
	secure bool
	box    *security.SecretBox
}

// NewCookieManager constructs a manager with deployment-wide defaults.
func NewCookieManager(domain string, maxAge time.Duration, secure bool) *CookieManager {
	if maxAge <= 0 {
		maxAge = defaultCookieMaxAge
	}
	return &CookieManager{domain: domain, maxAge: maxAge, secure: secure}
}

// WithSecretBox enables value encryption so cookie contents are opaque to the
// client.
func (m *CookieManager) WithSecretBox(box *security.SecretBox) *CookieManager {
	m.box = box
	return m
}

// SetSecureCookie writes a cookie value, sealing and URL-encoding it for
// transport.
func (m *CookieManager) SetSecureCookie(c *gin.Context, name, value string, opts CookieOptions) {
	if m.box != nil {
		sealed, err := m.box.Seal(value)
		if err != nil {
			return
		}
		value = sealed
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		Domain:   m.resolveDomain(opts),
		Path:     m.resolvePath(opts),
		MaxAge:   int(m.resolveMaxAge(opts).Seconds()),
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetSecureCookie reads and decodes a cookie value. A present but undecodable
// value reads as missing so callers treat tampering like absence.
func (m *CookieManager) GetSecureCookie(c *gin.Context, name string) (string, error) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", ErrCookieMissing
	}
	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", ErrCookieMissing
	}
	if m.box != nil {
		opened, err := m.box.Open(value)
		if err != nil {
			return "", ErrCookieMissing
		}
		value = opened
	}
	return value, nil
}

// DeleteSecureCookie expires the cookie immediately.
func (m *CookieManager) DeleteSecureCookie(c *gin.Context, name string, opts CookieOptions) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Domain:   m.resolveDomain(opts),
		Path:     m.resolvePath(opts),
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (m *CookieManager) resolveDomain(opts CookieOptions) string {
	if opts.Domain != "" {
		return opts.Domain
	}
	return m.domain
}

func (m *CookieManager) resolvePath(opts CookieOptions) string {
	if opts.Path != "" {
		return opts.Path
	}
	return "/"
}

func (m *CookieManager) resolveMaxAge(opts CookieOptions) time.Duration {
	if opts.MaxAge > 0 {
		return opts.MaxAge
	}
	return m.maxAge
}
