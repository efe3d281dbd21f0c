package artifact

import (
	"context"

	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/core/stream"
	"github.com/loomchat/loomchat-be/internal/models"
)

// CodeHandler writes self-contained code snippets.
type CodeHandler struct {
	llm *llm.Service
}

func NewCodeHandler(llmService *llm.Service) *CodeHandler {
	return &CodeHandler{llm: llmService}
}

func (h *CodeHandler) Kind() string { return models.KindCode }

func (h *CodeHandler) OnCreate(ctx context.Context, title string, sink stream.Sink) (string, error) {
	return streamDraft(ctx, h.llm, llm.CodeSystemPrompt, title, stream.EventCodeDelta, sink)
}

func (h *CodeHandler) OnUpdate(ctx context.Context, existing, instruction string, sink stream.Sink) (string, error) {
	system := llm.UpdateDocumentPrompt(models.KindCode, existing)
	return streamDraft(ctx, h.llm, system, instruction, stream.EventCodeDelta, sink)
}
