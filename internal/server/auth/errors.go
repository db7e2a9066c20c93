package auth

import "errors"

var (
	// ErrUnauthenticated means no credential was presented at all.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrInvalidCredential covers bad signatures, malformed tokens and expiry.
	// Callers must not tell these cases apart in responses.
	ErrInvalidCredential = errors.New("invalid or expired token")

	// ErrMalformedIdentity means the signature verified but no usable subject
	// id was found in the payload: a schema mismatch, not a forgery.
	ErrMalformedIdentity = errors.New("token carries no usable identity")
)
