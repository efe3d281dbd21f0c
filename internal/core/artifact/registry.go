// Package artifact implements the document generation handlers behind the
// createDocument and updateDocument tools. Each handler produces one kind of
// artifact (text, code, sheet, image, slides), streams its draft through the
// turn's event sink, and returns the final content for versioned persistence.
package artifact

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/core/stream"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/repositories"
)

// Handler generates and revises one artifact kind.
type Handler interface {
	Kind() string
	OnCreate(ctx context.Context, title string, sink stream.Sink) (string, error)
	OnUpdate(ctx context.Context, existing, instruction string, sink stream.Sink) (string, error)
}

// Registry is the closed set of artifact handlers, built once at startup.
// Unknown kinds are rejected rather than falling through to a default.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		r.handlers[h.Kind()] = h
	}
	return r
}

// DefaultRegistry wires the five built-in handlers.
func DefaultRegistry(llmService *llm.Service, uploads UploadProvider) *Registry {
	return NewRegistry(
		NewTextHandler(llmService),
		NewCodeHandler(llmService),
		NewSheetHandler(llmService),
		NewImageHandler(llmService, uploads),
		NewSlidesHandler(llmService),
	)
}

func (r *Registry) Handler(kind string) (Handler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, apperr.Validation("unsupported document kind: " + kind)
	}
	return h, nil
}

// Kinds lists the registered kinds, for tool schema enumeration.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	return kinds
}

// Service runs handlers and persists the resulting document versions.
type Service struct {
	registry *Registry
	docs     repositories.DocumentRepo
}

func NewService(registry *Registry, docs repositories.DocumentRepo) *Service {
	return &Service{registry: registry, docs: docs}
}

// Create generates a new artifact and saves its first version owned by the
// requesting user.
func (s *Service) Create(ctx context.Context, userID, docID uuid.UUID, title, kind string, sink stream.Sink) (*models.Document, error) {
	handler, err := s.registry.Handler(kind)
	if err != nil {
		return nil, err
	}

	content, err := handler.OnCreate(ctx, title, sink)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:      docID,
		Title:   title,
		Content: content,
		Kind:    kind,
		UserID:  userID,
	}
	if err := s.docs.SaveVersion(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update revises the latest version of an existing artifact. Only the owner
// may mutate a document; each successful call appends exactly one version.
func (s *Service) Update(ctx context.Context, userID, docID uuid.UUID, instruction string, sink stream.Sink) (*models.Document, error) {
	current, err := s.docs.GetLatest(ctx, docID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFound("document not found")
	}
	if current.UserID != userID {
		return nil, apperr.Forbidden("you are not the owner of this document")
	}

	handler, err := s.registry.Handler(current.Kind)
	if err != nil {
		return nil, err
	}

	content, err := handler.OnUpdate(ctx, current.Content, instruction, sink)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:      current.ID,
		Title:   current.Title,
		Content: content,
		Kind:    current.Kind,
		UserID:  current.UserID,
	}
	if err := s.docs.SaveVersion(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// streamDraft drives one streaming text generation and relays each chunk as
// a delta event of the handler's kind, returning the assembled content.
func streamDraft(ctx context.Context, llmService *llm.Service, system, prompt, eventType string, sink stream.Sink) (string, error) {
	st, err := llmService.StreamChat(ctx, &llm.ChatRequest{
		System: system,
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	defer st.Close()

	var content []byte
	for {
		delta, err := st.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if delta.Text == "" {
			continue
		}
		content = append(content, delta.Text...)
		sink.Emit(stream.Event{Type: eventType, Content: delta.Text})
	}
	return string(content), nil
}
