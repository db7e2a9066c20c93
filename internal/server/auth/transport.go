package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
)

// Mode selects where credentials travel.
type Mode string

const (
	// ModeCookie sets an HttpOnly cookie and reads only the cookie.
	ModeCookie Mode = "cookie"
	// ModeHeader returns the token in the response body and reads only the
	// Authorization header.
	ModeHeader Mode = "header"
	// ModeBoth does both; the Authorization header wins when both are present.
	ModeBoth Mode = "both"
)

// TransportConfig describes the cookie and header policy.
type TransportConfig struct {
	Mode       Mode
	CookieName string
	// CrossSite is set when the UI and the API live on different sites; the
	// cookie is then sent with SameSite=None, otherwise SameSite=Lax.
	CrossSite bool
	Secure    bool
	Domain    string
	Path      string
}

// Transport extracts presented tokens from requests and places issued ones
// on responses. It is configured once and used by every handler.
type Transport struct {
	cfg TransportConfig
}

// Verifier is satisfied by *Authenticator.
type Verifier interface {
	Verify(token string) (Session, error)
}

func NewTransport(cfg TransportConfig) (*Transport, error) {
	switch cfg.Mode {
	case "":
		cfg.Mode = ModeBoth
	case ModeCookie, ModeHeader, ModeBoth:
	default:
		return nil, fmt.Errorf("auth: unknown transport mode %q", cfg.Mode)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = common.DefaultCookieName
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.CrossSite && !cfg.Secure {
		return nil, fmt.Errorf("auth: SameSite=None cookies must be Secure")
	}
	return &Transport{cfg: cfg}, nil
}

func (t *Transport) Mode() Mode {
	return t.cfg.Mode
}

func (t *Transport) usesHeader() bool { return t.cfg.Mode != ModeCookie }
func (t *Transport) usesCookie() bool { return t.cfg.Mode != ModeHeader }

// ExtractToken returns the presented token: the Authorization bearer token
// first, then the cookie. Sources disabled by the mode are ignored.
func (t *Transport) ExtractToken(r *http.Request) (string, bool) {
	if t.usesHeader() {
		if token, ok := BearerToken(r.Header.Get(common.AuthorizationHeader)); ok {
			return token, true
		}
	}
	if t.usesCookie() {
		if c, err := r.Cookie(t.cfg.CookieName); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// Authenticate extracts the request's token and verifies it with v.
func (t *Transport) Authenticate(v Verifier, r *http.Request) (Session, error) {
	token, ok := t.ExtractToken(r)
	if !ok {
		return Session{}, ErrUnauthenticated
	}
	return v.Verify(token)
}

// Deliver places c on the response according to the mode. It returns the
// token to include in the JSON body, or "" when the body must not carry it.
func (t *Transport) Deliver(w http.ResponseWriter, c Credential) string {
	if t.usesCookie() {
		maxAge := int(time.Until(c.ExpiresAt).Seconds())
		if maxAge <= 0 {
			maxAge = -1
		}
		http.SetCookie(w, t.cookie(c.Token, c.ExpiresAt, maxAge))
	}
	if t.usesHeader() {
		return c.Token
	}
	return ""
}

// Revoke tells the client to discard its cookie. Header-mode clients delete
// their stored token themselves. Nothing is recorded server-side.
func (t *Transport) Revoke(w http.ResponseWriter) {
	if t.usesCookie() {
		http.SetCookie(w, t.cookie("", time.Unix(0, 0), -1))
	}
}

func (t *Transport) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if t.cfg.CrossSite {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     t.cfg.CookieName,
		Value:    value,
		Path:     t.cfg.Path,
		Domain:   t.cfg.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.cfg.Secure,
		SameSite: sameSite,
	}
}

// BearerToken parses an "Authorization: Bearer <token>" value. The scheme is
// matched case-insensitively.
func BearerToken(header string) (string, bool) {
	if len(header) < len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(common.BearerPrefix):])
	return token, token != ""
}
