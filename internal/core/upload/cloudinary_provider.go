package upload

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryProvider stores blobs in Cloudinary.
type CloudinaryProvider struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

func NewCloudinaryProvider(cloudName, apiKey, apiSecret string) (*CloudinaryProvider, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryProvider{
		cld:       cld,
		cloudName: cloudName,
	}, nil
}

func (p *CloudinaryProvider) Upload(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error) {
	overwrite := false
	params := uploader.UploadParams{
		Folder:       "artifacts",
		PublicID:     strings.TrimSuffix(filename, ".png"),
		ResourceType: "image",
		Overwrite:    &overwrite,
	}

	result, err := p.cld.Upload.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return &UploadResult{
		URL:       result.URL,
		SecureURL: result.SecureURL,
		FileName:  filename,
		Size:      int64(result.Bytes),
		PublicID:  result.PublicID,
	}, nil
}

func (p *CloudinaryProvider) Delete(ctx context.Context, publicID string) error {
	result, err := p.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}
	if result.Result != "ok" {
		return fmt.Errorf("cloudinary delete failed: %s", result.Result)
	}
	return nil
}

func (p *CloudinaryProvider) GetProviderName() string {
	return "Cloudinary"
}
