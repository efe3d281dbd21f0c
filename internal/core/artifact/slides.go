package artifact

import (
	"context"
	"encoding/json"

	"github.com/loomchat/loomchat-be/internal/core/deck"
	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/core/stream"
	"github.com/loomchat/loomchat-be/internal/models"
)

// SlidesHandler generates a structured presentation and stores it as JSON.
// Export to pptx or HTML is a separate operation on the stored content.
type SlidesHandler struct {
	llm *llm.Service
}

func NewSlidesHandler(llmService *llm.Service) *SlidesHandler {
	return &SlidesHandler{llm: llmService}
}

func (h *SlidesHandler) Kind() string { return models.KindSlides }

func (h *SlidesHandler) OnCreate(ctx context.Context, title string, sink stream.Sink) (string, error) {
	return h.generate(ctx, llm.SlidesSystemPrompt, title, sink)
}

func (h *SlidesHandler) OnUpdate(ctx context.Context, existing, instruction string, sink stream.Sink) (string, error) {
	system := llm.UpdateDocumentPrompt(models.KindSlides, existing)
	return h.generate(ctx, system, instruction, sink)
}

func (h *SlidesHandler) generate(ctx context.Context, system, prompt string, sink stream.Sink) (string, error) {
	raw, err := h.llm.GenerateObject(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	// Round-trip through the presentation model so only schema-conforming
	// JSON is streamed and stored.
	presentation, err := deck.Parse(string(raw))
	if err != nil {
		return "", err
	}
	content, err := json.Marshal(presentation)
	if err != nil {
		return "", err
	}

	sink.Emit(stream.Event{Type: stream.EventPPTDelta, Content: string(content)})
	return string(content), nil
}
