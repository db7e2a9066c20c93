package common

const (
	// AuthorizationHeader carries "Bearer <token>" on HTTP requests and in gRPC metadata.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	// AccessTokenMetadataKey is the legacy gRPC metadata key holding a bare token.
	AccessTokenMetadataKey = "access_token"

	// DefaultCookieName is the cookie that carries the token in browser sessions.
	DefaultCookieName = "token"
)
