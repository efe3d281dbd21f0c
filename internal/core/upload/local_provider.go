package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider writes blobs to a directory and serves them from a base URL;
// development fallback when no cloud storage is configured.
type LocalProvider struct {
	dir     string
	baseURL string
}

func NewLocalProvider(dir, baseURL string) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalProvider{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (p *LocalProvider) Upload(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error) {
	// Keep the name flat; callers already pass unique filenames.
	safe := filepath.Base(filename)
	path := filepath.Join(p.dir, safe)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write blob: %w", err)
	}

	url := p.baseURL + "/" + safe
	return &UploadResult{
		URL:       url,
		SecureURL: url,
		FileName:  safe,
		Size:      int64(len(data)),
		PublicID:  safe,
	}, nil
}

func (p *LocalProvider) Delete(ctx context.Context, publicID string) error {
	return os.Remove(filepath.Join(p.dir, filepath.Base(publicID)))
}

func (p *LocalProvider) GetProviderName() string {
	return "Local"
}
