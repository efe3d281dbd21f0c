package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/shared/utils"
)

// maxToolSteps bounds the tool loop: a turn may feed tool results back to the
// model at most this many times before the stream is forced to finish.
const maxToolSteps = 5

// ArtifactService is the slice of the artifact layer the orchestrator drives
// through the createDocument and updateDocument tools.
type ArtifactService interface {
	Create(ctx context.Context, userID, docID uuid.UUID, title, kind string, sink Sink) (*models.Document, error)
	Update(ctx context.Context, userID, docID uuid.UUID, instruction string, sink Sink) (*models.Document, error)
}

// TurnInput is one model turn: the requesting user and the conversation so
// far, newest user message last.
type TurnInput struct {
	UserID   uuid.UUID
	ChatID   uuid.UUID
	Messages []llm.Message
}

// TurnResult is the assembled assistant output of a naturally completed
// turn, ready for settlement.
type TurnResult struct {
	Text  string
	Parts json.RawMessage
}

// Orchestrator drives one model turn, relaying output as an ordered event
// stream and dispatching artifact tool calls onto the same channel.
type Orchestrator struct {
	llm       *llm.Service
	artifacts ArtifactService
	kinds     []string
}

func NewOrchestrator(llmService *llm.Service, artifacts ArtifactService, kinds []string) *Orchestrator {
	return &Orchestrator{llm: llmService, artifacts: artifacts, kinds: kinds}
}

// Run executes the turn, emitting events to the channel. It returns the
// finished turn for settlement only on natural completion: any error —
// including cancellation — means the turn must not be billed. If the model
// stream fails after output has started, a single error event is emitted
// before returning.
func (o *Orchestrator) Run(ctx context.Context, input *TurnInput, events chan<- Event) (*TurnResult, error) {
	sink := &ChannelSink{Ch: events, Done: ctx.Done()}
	messages := append([]llm.Message(nil), input.Messages...)

	var assistantText strings.Builder
	parts := make([]map[string]interface{}, 0, 4)
	started := false

	for step := 0; step < maxToolSteps; step++ {
		st, err := o.llm.StreamChat(ctx, &llm.ChatRequest{
			System:   llm.ChatSystemPrompt,
			Messages: messages,
			Tools:    o.toolDefinitions(),
		})
		if err != nil {
			if started {
				sink.Emit(Event{Type: EventError, Content: "An error occurred, please try again!"})
			}
			return nil, err
		}

		stepText, toolCalls, err := o.consume(ctx, st, sink, &started)
		st.Close()
		if err != nil {
			if started {
				sink.Emit(Event{Type: EventError, Content: "An error occurred, please try again!"})
			}
			return nil, err
		}
		assistantText.WriteString(stepText)

		if len(toolCalls) == 0 {
			break
		}

		// Feed every tool result back before the next model step.
		messages = append(messages, llm.Message{Role: "assistant", Content: stepText, ToolCalls: toolCalls})
		for _, call := range toolCalls {
			result, part := o.dispatchTool(ctx, input.UserID, call, sink)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			parts = append(parts, part)
			messages = append(messages, llm.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parts = append(parts, map[string]interface{}{
		"type": "text",
		"text": assistantText.String(),
	})
	encoded, err := json.Marshal(parts)
	if err != nil {
		return nil, err
	}
	return &TurnResult{Text: assistantText.String(), Parts: encoded}, nil
}

// consume drains one model stream, emitting text and reasoning deltas and
// accumulating tool call fragments by index.
func (o *Orchestrator) consume(ctx context.Context, st llm.Stream, sink Sink, started *bool) (string, []llm.ToolCall, error) {
	var text strings.Builder
	pending := make(map[int]*llm.ToolCall)
	order := make([]int, 0, 2)

	for {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		delta, err := st.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}

		if delta.Text != "" {
			*started = true
			text.WriteString(delta.Text)
			sink.Emit(Event{Type: EventTextDelta, Content: delta.Text})
		}
		if delta.Reasoning != "" {
			*started = true
			sink.Emit(Event{Type: EventReasoningDelta, Content: delta.Reasoning})
		}
		for _, fragment := range delta.ToolCalls {
			call, ok := pending[fragment.Index]
			if !ok {
				call = &llm.ToolCall{}
				pending[fragment.Index] = call
				order = append(order, fragment.Index)
			}
			if fragment.ID != "" {
				call.ID = fragment.ID
			}
			if fragment.Name != "" {
				call.Name = fragment.Name
			}
			call.Arguments += fragment.Arguments
		}
	}

	calls := make([]llm.ToolCall, 0, len(order))
	for _, idx := range order {
		calls = append(calls, *pending[idx])
	}
	return text.String(), calls, nil
}

// dispatchTool executes one artifact tool call. Tool failures do not abort
// the turn: the error is returned to the model as the tool result so it can
// respond to the user.
func (o *Orchestrator) dispatchTool(ctx context.Context, userID uuid.UUID, call llm.ToolCall, sink Sink) (string, map[string]interface{}) {
	switch call.Name {
	case "createDocument":
		var args struct {
			Title string `json:"title"`
			Kind  string `json:"kind"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return toolError("invalid createDocument arguments"), toolPart(call.Name, call.Arguments, "error")
		}

		docID := uuid.New()
		sink.Emit(Event{Type: EventStatus, Content: map[string]interface{}{
			"stage": "creating-document",
			"id":    docID.String(),
			"title": args.Title,
			"kind":  args.Kind,
		}})

		doc, err := o.artifacts.Create(ctx, userID, docID, args.Title, args.Kind, sink)
		if err != nil {
			utils.LogError("createDocument tool failed", err, map[string]interface{}{"title": args.Title, "kind": args.Kind})
			return toolError("failed to create the document"), toolPart(call.Name, call.Arguments, "error")
		}
		result := fmt.Sprintf(`{"id":%q,"title":%q,"kind":%q,"content":"A document was created and is now visible to the user."}`,
			doc.ID.String(), doc.Title, doc.Kind)
		return result, toolPart(call.Name, call.Arguments, doc.ID.String())

	case "updateDocument":
		var args struct {
			ID          string `json:"id"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return toolError("invalid updateDocument arguments"), toolPart(call.Name, call.Arguments, "error")
		}
		docID, err := uuid.Parse(args.ID)
		if err != nil {
			return toolError("invalid document id"), toolPart(call.Name, call.Arguments, "error")
		}

		sink.Emit(Event{Type: EventStatus, Content: map[string]interface{}{
			"stage": "updating-document",
			"id":    docID.String(),
		}})

		doc, err := o.artifacts.Update(ctx, userID, docID, args.Description, sink)
		if err != nil {
			utils.LogError("updateDocument tool failed", err, map[string]interface{}{"id": docID.String()})
			return toolError("failed to update the document"), toolPart(call.Name, call.Arguments, "error")
		}
		result := fmt.Sprintf(`{"id":%q,"title":%q,"kind":%q,"content":"The document has been updated successfully."}`,
			doc.ID.String(), doc.Title, doc.Kind)
		return result, toolPart(call.Name, call.Arguments, doc.ID.String())

	default:
		return toolError("unknown tool: " + call.Name), toolPart(call.Name, call.Arguments, "error")
	}
}

func (o *Orchestrator) toolDefinitions() []llm.Tool {
	kinds := make([]interface{}, 0, len(o.kinds))
	for _, k := range o.kinds {
		kinds = append(kinds, k)
	}
	return []llm.Tool{
		{
			Name:        "createDocument",
			Description: "Create a document for writing, coding, spreadsheets, images or presentations. It is shown on an artifact panel beside the conversation.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title": map[string]interface{}{"type": "string"},
					"kind":  map[string]interface{}{"type": "string", "enum": kinds},
				},
				"required": []string{"title", "kind"},
			},
		},
		{
			Name:        "updateDocument",
			Description: "Update an existing document with the given description of changes.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":          map[string]interface{}{"type": "string", "description": "The id of the document to update"},
					"description": map[string]interface{}{"type": "string", "description": "The change to make"},
				},
				"required": []string{"id", "description"},
			},
		},
	}
}

func toolError(message string) string {
	return fmt.Sprintf(`{"error":%q}`, message)
}

func toolPart(name, args, result string) map[string]interface{} {
	var decoded interface{}
	if err := json.Unmarshal([]byte(args), &decoded); err != nil {
		decoded = args
	}
	return map[string]interface{}{
		"type":     "tool-invocation",
		"toolName": name,
		"args":     decoded,
		"result":   result,
	}
}
