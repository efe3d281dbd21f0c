package artifact

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/core/stream"
	"github.com/loomchat/loomchat-be/internal/core/upload"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/shared/utils"
)

// UploadProvider is the slice of the upload provider the image handler needs.
type UploadProvider interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (*upload.UploadResult, error)
}

// ImageHandler generates an image, stores the binary and returns its URL as
// the document content. An image document must always be creatable: every
// backend failure degrades to a deterministic placeholder URL instead of an
// error.
type ImageHandler struct {
	llm     *llm.Service
	uploads UploadProvider
}

func NewImageHandler(llmService *llm.Service, uploads UploadProvider) *ImageHandler {
	return &ImageHandler{llm: llmService, uploads: uploads}
}

func (h *ImageHandler) Kind() string { return models.KindImage }

func (h *ImageHandler) OnCreate(ctx context.Context, title string, sink stream.Sink) (string, error) {
	imageURL := h.generate(ctx, title)
	sink.Emit(stream.Event{Type: stream.EventImageDelta, Content: imageURL})
	return imageURL, nil
}

func (h *ImageHandler) OnUpdate(ctx context.Context, existing, instruction string, sink stream.Sink) (string, error) {
	imageURL := h.generate(ctx, instruction)
	sink.Emit(stream.Event{Type: stream.EventImageDelta, Content: imageURL})
	return imageURL, nil
}

func (h *ImageHandler) generate(ctx context.Context, prompt string) string {
	data, err := h.llm.GenerateImage(ctx, prompt)
	if err != nil {
		utils.LogWarn("image generation failed, using placeholder", map[string]interface{}{
			"error": err.Error(),
		})
		return placeholderImageURL(prompt)
	}

	filename := fmt.Sprintf("image_%s.png", uuid.New().String())
	result, err := h.uploads.Upload(ctx, data, filename, "image/png")
	if err != nil {
		utils.LogWarn("image upload failed, using placeholder", map[string]interface{}{
			"error": err.Error(),
		})
		return placeholderImageURL(prompt)
	}
	if result.SecureURL != "" {
		return result.SecureURL
	}
	return result.URL
}

func placeholderImageURL(prompt string) string {
	text := prompt
	if runes := []rune(text); len(runes) > 30 {
		text = string(runes[:30])
	}
	return "https://via.placeholder.com/512x512/cccccc/666666?text=" + url.QueryEscape(text)
}
