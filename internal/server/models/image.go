// Package models defines server-side data models persisted in the database.
package models

import "time"

// ImageUpload instructs the client to upload a product image using a
// presigned URL. The returned Key is what the product's Image field stores.
type ImageUpload struct {
	// Key is the object-storage key of the image.
	Key string
	// URL is a temporary presigned HTTP URL for the client to PUT the bytes.
	URL string
	// ExpiresAt is when URL stops being accepted.
	ExpiresAt time.Time
}
