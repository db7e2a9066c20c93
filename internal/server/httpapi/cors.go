package httpapi

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/cors"
)

// CORSConfig lists the browser origins allowed to send credentialed requests.
type CORSConfig struct {
	// Origins are matched exactly, e.g. "http://localhost:5173".
	Origins []string
	// HostSuffixes match any origin whose host ends with one of them, e.g.
	// ".vercel.app" for preview deployments.
	HostSuffixes []string
}

// Allowed reports whether origin may call the API.
func (c CORSConfig) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, o := range c.Origins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	if len(c.HostSuffixes) == 0 {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return false
	}
	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	for _, suffix := range c.HostSuffixes {
		suffix = strings.ToLower(suffix)
		if suffix != "" && strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// corsHandler answers preflights and echoes the request origin when it is
// allowed. Credentials are allowed, so the wildcard origin is never sent.
func (a *API) corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return a.cors.Allowed(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}
