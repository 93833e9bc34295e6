// Package media adapts the hosted media CDN behind the domain MediaStore
// contract.
package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/imaginify/backend/config"
	"github.com/imaginify/backend/internal/core/domain"
)

// CloudinaryStore implements domain.MediaStore on the Cloudinary upload
// API. Transformation and format policy live here: uploads are scaled to
// 1000x752 and restricted to the web image formats the frontend accepts.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore creates a CloudinaryStore from the media config.
func NewCloudinaryStore(cfg *config.Config) (*CloudinaryStore, error) {
	if cfg.Media.CloudName == "" || cfg.Media.APIKey == "" || cfg.Media.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are missing")
	}

	cld, err := cloudinary.NewFromParams(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStore{cld: cld, folder: cfg.Media.Folder}, nil
}

// Upload sends the image at path (a data: URI or a remote URL) to
// Cloudinary and returns the hosted asset. Upstream failures wrap
// domain.ErrUpstream with the host's message attached.
func (s *CloudinaryStore) Upload(ctx context.Context, path string) (*domain.MediaAsset, error) {
	result, err := s.cld.Upload.Upload(ctx, path, uploader.UploadParams{
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(true),
		Folder:         s.folder,
		ResourceType:   "auto",
		Transformation: "w_1000,h_752,c_scale",
		AllowedFormats: api.CldAPIArray{"jpg", "png", "gif", "webp", "jpeg"},
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUpstream)
	}
	// The SDK reports request-level rejections (bad format, too large)
	// in the result body rather than as an error.
	if result.Error.Message != "" {
		return nil, fmt.Errorf("%s: %w", result.Error.Message, domain.ErrUpstream)
	}

	return &domain.MediaAsset{
		PublicID:  result.PublicID,
		SecureURL: result.SecureURL,
		Width:     result.Width,
		Height:    result.Height,
	}, nil
}
