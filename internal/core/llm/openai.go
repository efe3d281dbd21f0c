package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client      *openai.Client
	name        string
	model       string
	titleModel  string
	imageModel  string
	temperature float32
	maxTokens   int
}

// NewOpenAIProvider builds a client for OpenAI or any compatible endpoint
// (empty baseURL keeps the default API host).
func NewOpenAIProvider(apiKey, baseURL string, cfg *ProviderConfig) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(apiKey)
	name := "OpenAI"
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
		name = string(cfg.Type)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	titleModel := cfg.TitleModel
	if titleModel == "" {
		titleModel = model
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = openai.CreateImageModelDallE3
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		name:        name,
		model:       model,
		titleModel:  titleModel,
		imageModel:  imageModel,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (p *OpenAIProvider) GetProviderName() string {
	return p.name
}

func (p *OpenAIProvider) StreamChat(ctx context.Context, req *ChatRequest) (Stream, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		messages = append(messages, toOpenAIMessage(m))
	}

	tools := make([]openai.Tool, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.maxTokens
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Tools:       tools,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("openai stream error: %w", err)
	}

	return &openAIStream{inner: stream}, nil
}

func (p *OpenAIProvider) GenerateText(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.titleModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", p.name)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) GenerateObject(ctx context.Context, systemPrompt, userMessage string) (json.RawMessage, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai object error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	raw := json.RawMessage(resp.Choices[0].Message.Content)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("model returned invalid JSON")
	}
	return raw, nil
}

func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          p.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image error: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image in %s response", p.name)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return data, nil
}

func toOpenAIMessage(m Message) openai.ChatCompletionMessage {
	out := openai.ChatCompletionMessage{
		Role:       m.Role,
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
			ID:   tc.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return out
}

type openAIStream struct {
	inner *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (*StreamDelta, error) {
	resp, err := s.inner.Recv()
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return &StreamDelta{}, nil
	}

	choice := resp.Choices[0]
	delta := &StreamDelta{
		Text:         choice.Delta.Content,
		Reasoning:    choice.Delta.ReasoningContent,
		FinishReason: string(choice.FinishReason),
	}
	for _, tc := range choice.Delta.ToolCalls {
		index := 0
		if tc.Index != nil {
			index = *tc.Index
		}
		delta.ToolCalls = append(delta.ToolCalls, ToolCallDelta{
			Index:     index,
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return delta, nil
}

func (s *openAIStream) Close() error {
	s.inner.Close()
	return nil
}
