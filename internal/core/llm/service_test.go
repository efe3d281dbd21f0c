package llm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

// fixedTextProvider answers GenerateText with a canned string.
type fixedTextProvider struct {
	text string
}

func (p *fixedTextProvider) StreamChat(ctx context.Context, req *ChatRequest) (Stream, error) {
	return nil, nil
}

func (p *fixedTextProvider) GenerateText(ctx context.Context, system, user string) (string, error) {
	return p.text, nil
}

func (p *fixedTextProvider) GenerateObject(ctx context.Context, system, user string) (json.RawMessage, error) {
	return nil, nil
}

func (p *fixedTextProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return nil, nil
}

func (p *fixedTextProvider) GetProviderName() string { return "fixed" }

func TestGenerateTitleStripsQuotesAndWhitespace(t *testing.T) {
	svc := NewServiceWithProvider(&fixedTextProvider{text: "  \"Weekend plans\"  "})

	title, err := svc.GenerateTitle(context.Background(), "what should I do this weekend")
	if err != nil {
		t.Fatalf("GenerateTitle: %v", err)
	}
	if title != "Weekend plans" {
		t.Errorf("title = %q, want %q", title, "Weekend plans")
	}
}

func TestGenerateTitleTruncatesOnRuneBoundary(t *testing.T) {
	// An 80-byte cut would split a two-byte é; the cut must count runes.
	svc := NewServiceWithProvider(&fixedTextProvider{text: "a" + strings.Repeat("é", 100)})

	title, err := svc.GenerateTitle(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GenerateTitle: %v", err)
	}
	if !utf8.ValidString(title) {
		t.Fatalf("truncated title is not valid UTF-8: %q", title)
	}
	if got := utf8.RuneCountInString(title); got != 80 {
		t.Errorf("title runes = %d, want 80", got)
	}
}
