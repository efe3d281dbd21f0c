package llm

import (
	"context"
	"encoding/json"
	"log"
	"strings"
)

// Service wraps the provider for dependency injection. Constructed once at
// process start and passed by reference to everything that talks to a model.
type Service struct {
	provider Provider
}

func NewService() *Service {
	cfg, err := LoadProviderFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load LLM config: %v", err)
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create LLM provider: %v", err)
	}

	log.Printf("🤖 Using LLM provider: %s (model: %s)", provider.GetProviderName(), cfg.Model)

	return &Service{provider: provider}
}

// NewServiceWithProvider creates a service with a custom provider (for testing).
func NewServiceWithProvider(provider Provider) *Service {
	return &Service{provider: provider}
}

func (s *Service) StreamChat(ctx context.Context, req *ChatRequest) (Stream, error) {
	return s.provider.StreamChat(ctx, req)
}

func (s *Service) GenerateText(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return s.provider.GenerateText(ctx, systemPrompt, userMessage)
}

func (s *Service) GenerateObject(ctx context.Context, systemPrompt, userMessage string) (json.RawMessage, error) {
	return s.provider.GenerateObject(ctx, systemPrompt, userMessage)
}

func (s *Service) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return s.provider.GenerateImage(ctx, prompt)
}

func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}

// GenerateTitle derives a short chat title from the first user message.
func (s *Service) GenerateTitle(ctx context.Context, userMessage string) (string, error) {
	title, err := s.provider.GenerateText(ctx, TitleSystemPrompt, userMessage)
	if err != nil {
		return "", err
	}
	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"`))
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}
	return title, nil
}
