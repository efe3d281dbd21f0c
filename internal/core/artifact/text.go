package artifact

import (
	"context"

	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/core/stream"
	"github.com/loomchat/loomchat-be/internal/models"
)

// TextHandler writes prose documents in markdown.
type TextHandler struct {
	llm *llm.Service
}

func NewTextHandler(llmService *llm.Service) *TextHandler {
	return &TextHandler{llm: llmService}
}

func (h *TextHandler) Kind() string { return models.KindText }

func (h *TextHandler) OnCreate(ctx context.Context, title string, sink stream.Sink) (string, error) {
	return streamDraft(ctx, h.llm, llm.TextSystemPrompt, title, stream.EventTextDelta, sink)
}

func (h *TextHandler) OnUpdate(ctx context.Context, existing, instruction string, sink stream.Sink) (string, error) {
	system := llm.UpdateDocumentPrompt(models.KindText, existing)
	return streamDraft(ctx, h.llm, system, instruction, stream.EventTextDelta, sink)
}
