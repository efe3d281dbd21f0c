package upload

import (
	"context"

	"github.com/loomchat/loomchat-be/internal/config"
)

// UploadResult describes a stored blob.
type UploadResult struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
	FileName  string `json:"file_name"`
	Size      int64  `json:"size"`
	PublicID  string `json:"public_id"`
}

// Provider stores generated binaries (image artifacts) and hands back a
// public URL.
type Provider interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string) error
	GetProviderName() string
}

// NewProviderFromConfig selects the configured blob backend.
func NewProviderFromConfig(cfg *config.Config) (Provider, error) {
	if cfg.UploadProvider == "cloudinary" {
		return NewCloudinaryProvider(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	}
	return NewLocalProvider(cfg.LocalUploadDir, cfg.LocalUploadBaseURL)
}
