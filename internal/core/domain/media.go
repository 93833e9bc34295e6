package domain

import (
	"context"
	"errors"
)

// ErrUpstream indicates the media host rejected or failed an upload.
// The wrapping error carries the host's message for diagnostics.
// HTTP Status: 500 Internal Server Error
var ErrUpstream = errors.New("media host upload failed")

// MediaAsset is the hosted result of an upload: the host's identifier,
// the CDN URL and the stored dimensions.
type MediaAsset struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// MediaStore uploads images to the hosting CDN. The path may be a data:
// URI or a remote URL; transformation and format policy belong to the
// implementation.
type MediaStore interface {
	Upload(ctx context.Context, path string) (*MediaAsset, error)
}
