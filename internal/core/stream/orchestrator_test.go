package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/models"
)

// scriptedStream replays a fixed sequence of deltas.
type scriptedStream struct {
	deltas []llm.StreamDelta
	pos    int
	err    error // returned after the deltas are exhausted, instead of EOF
}

func (s *scriptedStream) Recv() (*llm.StreamDelta, error) {
	if s.pos >= len(s.deltas) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	d := s.deltas[s.pos]
	s.pos++
	return &d, nil
}

func (s *scriptedStream) Close() error { return nil }

// scriptedProvider serves one scripted stream per StreamChat call.
type scriptedProvider struct {
	streams  []*scriptedStream
	requests []*llm.ChatRequest
}

func (p *scriptedProvider) StreamChat(ctx context.Context, req *llm.ChatRequest) (llm.Stream, error) {
	p.requests = append(p.requests, req)
	if len(p.streams) == 0 {
		return &scriptedStream{}, nil
	}
	st := p.streams[0]
	p.streams = p.streams[1:]
	return st, nil
}

func (p *scriptedProvider) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", nil
}

func (p *scriptedProvider) GenerateObject(ctx context.Context, system, user string) (json.RawMessage, error) {
	return nil, nil
}

func (p *scriptedProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return nil, nil
}

func (p *scriptedProvider) GetProviderName() string { return "scripted" }

type fakeArtifacts struct {
	created []string
	updated []uuid.UUID
	fail    error
}

func (f *fakeArtifacts) Create(ctx context.Context, userID, docID uuid.UUID, title, kind string, sink Sink) (*models.Document, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.created = append(f.created, kind)
	sink.Emit(Event{Type: DeltaKindEvent(kind), Content: "draft"})
	return &models.Document{ID: docID, Title: title, Kind: kind, UserID: userID}, nil
}

func (f *fakeArtifacts) Update(ctx context.Context, userID, docID uuid.UUID, instruction string, sink Sink) (*models.Document, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.updated = append(f.updated, docID)
	return &models.Document{ID: docID, Title: "doc", Kind: "text", UserID: userID}, nil
}

func runTurn(t *testing.T, orch *Orchestrator, ctx context.Context) ([]Event, *TurnResult, error) {
	t.Helper()
	events := make(chan Event, 64)
	var result *TurnResult
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		result, err = orch.Run(ctx, &TurnInput{
			UserID:   uuid.New(),
			ChatID:   uuid.New(),
			Messages: []llm.Message{{Role: "user", Content: "hello"}},
		}, events)
	}()

	var collected []Event
	for event := range events {
		collected = append(collected, event)
	}
	<-done
	return collected, result, err
}

func newTestOrchestrator(provider llm.Provider, artifacts ArtifactService) *Orchestrator {
	return NewOrchestrator(llm.NewServiceWithProvider(provider), artifacts, []string{"text", "code", "sheet", "image", "slides"})
}

func TestRunPlainTextTurn(t *testing.T) {
	provider := &scriptedProvider{streams: []*scriptedStream{{
		deltas: []llm.StreamDelta{
			{Text: "Hello"},
			{Text: " there"},
			{FinishReason: llm.FinishStop},
		},
	}}}
	orch := newTestOrchestrator(provider, &fakeArtifacts{})

	events, result, err := runTurn(t, orch, context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Text != "Hello there" {
		t.Errorf("text = %q, want %q", result.Text, "Hello there")
	}

	var texts []string
	for _, e := range events {
		if e.Type != EventTextDelta {
			t.Errorf("unexpected event type %q", e.Type)
			continue
		}
		texts = append(texts, e.Content.(string))
	}
	if len(texts) != 2 || texts[0] != "Hello" || texts[1] != " there" {
		t.Errorf("text deltas = %v, want generation order preserved", texts)
	}
}

func TestRunDispatchesCreateDocumentTool(t *testing.T) {
	args := `{"title":"Launch plan","kind":"text"}`
	provider := &scriptedProvider{streams: []*scriptedStream{
		{
			deltas: []llm.StreamDelta{
				// Tool call arrives fragmented across deltas.
				{ToolCalls: []llm.ToolCallDelta{{Index: 0, ID: "call_1", Name: "createDocument", Arguments: args[:20]}}},
				{ToolCalls: []llm.ToolCallDelta{{Index: 0, Arguments: args[20:]}}},
				{FinishReason: llm.FinishToolCalls},
			},
		},
		{
			deltas: []llm.StreamDelta{
				{Text: "Created your document."},
				{FinishReason: llm.FinishStop},
			},
		},
	}}
	artifacts := &fakeArtifacts{}
	orch := newTestOrchestrator(provider, artifacts)

	events, result, err := runTurn(t, orch, context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(artifacts.created) != 1 || artifacts.created[0] != "text" {
		t.Fatalf("created = %v, want one text artifact", artifacts.created)
	}
	if result.Text != "Created your document." {
		t.Errorf("text = %q", result.Text)
	}

	// The second model call must carry the tool result back.
	if len(provider.requests) != 2 {
		t.Fatalf("model calls = %d, want 2", len(provider.requests))
	}
	second := provider.requests[1].Messages
	lastMsg := second[len(second)-1]
	if lastMsg.Role != "tool" || lastMsg.ToolCallID != "call_1" {
		t.Errorf("tool result not fed back, last message = %+v", lastMsg)
	}

	var sawStatus, sawDelta bool
	for _, e := range events {
		switch e.Type {
		case EventStatus:
			sawStatus = true
		case EventTextDelta:
			sawDelta = true
		}
	}
	if !sawStatus {
		t.Error("no status event for document creation")
	}
	if !sawDelta {
		t.Error("no delta events on the shared channel")
	}
}

func TestRunToolFailureKeepsTurnAlive(t *testing.T) {
	provider := &scriptedProvider{streams: []*scriptedStream{
		{
			deltas: []llm.StreamDelta{
				{ToolCalls: []llm.ToolCallDelta{{Index: 0, ID: "call_1", Name: "createDocument", Arguments: `{"title":"x","kind":"text"}`}}},
				{FinishReason: llm.FinishToolCalls},
			},
		},
		{
			deltas: []llm.StreamDelta{
				{Text: "Sorry, that failed."},
				{FinishReason: llm.FinishStop},
			},
		},
	}}
	orch := newTestOrchestrator(provider, &fakeArtifacts{fail: errors.New("backend down")})

	_, result, err := runTurn(t, orch, context.Background())
	if err != nil {
		t.Fatalf("tool failure aborted the turn: %v", err)
	}
	if result.Text != "Sorry, that failed." {
		t.Errorf("text = %q", result.Text)
	}

	second := provider.requests[1].Messages
	lastMsg := second[len(second)-1]
	if lastMsg.Role != "tool" || lastMsg.Content == "" {
		t.Error("tool error not fed back to the model")
	}
}

func TestRunCancelledTurnReturnsNoResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{streams: []*scriptedStream{{
		deltas: []llm.StreamDelta{{Text: "partial"}},
	}}}
	orch := newTestOrchestrator(provider, &fakeArtifacts{})

	_, result, err := runTurn(t, orch, ctx)
	if err == nil {
		t.Fatal("cancelled turn returned no error")
	}
	if result != nil {
		t.Fatal("cancelled turn produced a settleable result")
	}
}

func TestRunMidStreamErrorEmitsSingleErrorEvent(t *testing.T) {
	provider := &scriptedProvider{streams: []*scriptedStream{{
		deltas: []llm.StreamDelta{{Text: "partial "}},
		err:    errors.New("backend connection reset"),
	}}}
	orch := newTestOrchestrator(provider, &fakeArtifacts{})

	events, result, err := runTurn(t, orch, context.Background())
	if err == nil {
		t.Fatal("mid-stream failure returned no error")
	}
	if result != nil {
		t.Fatal("failed turn produced a settleable result")
	}

	errorEvents := 0
	for _, e := range events {
		if e.Type == EventError {
			errorEvents++
			if msg, ok := e.Content.(string); !ok || msg == "backend connection reset" {
				t.Error("error event leaks backend internals")
			}
		}
	}
	if errorEvents != 1 {
		t.Errorf("error events = %d, want exactly 1", errorEvents)
	}
}
