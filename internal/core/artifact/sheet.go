package artifact

import (
	"context"

	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/core/stream"
	"github.com/loomchat/loomchat-be/internal/models"
)

// SheetHandler produces tabular data as raw CSV.
type SheetHandler struct {
	llm *llm.Service
}

func NewSheetHandler(llmService *llm.Service) *SheetHandler {
	return &SheetHandler{llm: llmService}
}

func (h *SheetHandler) Kind() string { return models.KindSheet }

func (h *SheetHandler) OnCreate(ctx context.Context, title string, sink stream.Sink) (string, error) {
	return streamDraft(ctx, h.llm, llm.SheetSystemPrompt, title, stream.EventSheetDelta, sink)
}

func (h *SheetHandler) OnUpdate(ctx context.Context, existing, instruction string, sink stream.Sink) (string, error) {
	system := llm.UpdateDocumentPrompt(models.KindSheet, existing)
	return streamDraft(ctx, h.llm, system, instruction, stream.EventSheetDelta, sink)
}
