package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Provider is the model backend contract: an ordered stream of deltas with a
// terminal finish signal, plus the one-shot helpers the artifact handlers use.
type Provider interface {
	// StreamChat opens a streaming completion. The returned Stream yields
	// deltas in generation order and io.EOF when the turn finishes.
	StreamChat(ctx context.Context, req *ChatRequest) (Stream, error)
	// GenerateText runs a short non-streaming completion.
	GenerateText(ctx context.Context, systemPrompt, userMessage string) (string, error)
	// GenerateObject requests a JSON document conforming to the schema
	// described in the system prompt.
	GenerateObject(ctx context.Context, systemPrompt, userMessage string) (json.RawMessage, error)
	// GenerateImage renders an image for the prompt and returns PNG bytes.
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	GetProviderName() string
}

// Stream is one in-flight model turn.
type Stream interface {
	// Recv blocks for the next delta; returns io.EOF when the stream is done.
	Recv() (*StreamDelta, error)
	Close() error
}

// ChatRequest describes one model turn.
type ChatRequest struct {
	System      string
	Messages    []Message
	Tools       []Tool
	Temperature float32
	MaxTokens   int
}

// Message is a single conversation entry sent to the backend.
type Message struct {
	Role       string // user | assistant | tool
	Content    string
	ToolCallID string     // set on tool result messages
	ToolCalls  []ToolCall // set on assistant messages that invoked tools
}

// ToolCall is a completed tool invocation request from the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON
}

// ToolCallDelta is one streamed fragment of a tool call under assembly.
type ToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Tool declares a callable capability to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema
}

// StreamDelta is one increment of model output.
type StreamDelta struct {
	Text         string
	Reasoning    string
	ToolCalls    []ToolCallDelta
	FinishReason string // empty until the terminal delta; "stop" or "tool_calls"
}

const (
	FinishStop      = "stop"
	FinishToolCalls = "tool_calls"
)

// ProviderType selects the backend implementation.
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
)

// ProviderConfig feeds the factory.
type ProviderConfig struct {
	Type ProviderType

	OpenAIKey   string
	GroqKey     string
	DeepSeekKey string

	Model       string
	TitleModel  string
	ImageModel  string
	Temperature float32
	MaxTokens   int
}

// NewProvider builds the configured backend. Groq and DeepSeek speak the
// OpenAI wire protocol, so they share the client with a different base URL.
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, "", cfg), nil

	case ProviderGroq:
		if cfg.GroqKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.GroqKey, "https://api.groq.com/openai/v1", cfg), nil

	case ProviderDeepSeek:
		if cfg.DeepSeekKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required")
		}
		return NewOpenAIProvider(cfg.DeepSeekKey, "https://api.deepseek.com/v1", cfg), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}

// LoadProviderFromEnv reads provider selection and keys from the environment.
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := os.Getenv("LLM_PROVIDER")
	if providerType == "" {
		providerType = "openai"
	}

	cfg := &ProviderConfig{
		Type:        ProviderType(providerType),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GroqKey:     os.Getenv("GROQ_API_KEY"),
		DeepSeekKey: os.Getenv("DEEPSEEK_API_KEY"),
		Model:       os.Getenv("LLM_MODEL"),
		TitleModel:  os.Getenv("LLM_TITLE_MODEL"),
		ImageModel:  os.Getenv("LLM_IMAGE_MODEL"),
	}

	if cfg.Model == "" {
		switch cfg.Type {
		case ProviderOpenAI:
			cfg.Model = "gpt-4o-mini"
		case ProviderGroq:
			cfg.Model = "llama-3.1-70b-versatile"
		case ProviderDeepSeek:
			cfg.Model = "deepseek-chat"
		}
	}
	if cfg.TitleModel == "" {
		cfg.TitleModel = cfg.Model
	}

	cfg.Temperature = 0.7
	cfg.MaxTokens = 1024

	return cfg, nil
}
