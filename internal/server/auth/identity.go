package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// identityClaims lists the payload fields that may carry the subject id, in
// priority order. "id" and "user_id" come from earlier token layouts.
var identityClaims = []string{"sub", "id", "user_id"}

// subjectFromClaims returns the first non-empty string id found in claims.
func subjectFromClaims(claims jwt.MapClaims) (string, bool) {
	for _, name := range identityClaims {
		raw, ok := claims[name]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}
