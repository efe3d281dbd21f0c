package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/admission"
	"github.com/loomchat/loomchat-be/internal/core/auth"
	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/core/session"
	"github.com/loomchat/loomchat-be/internal/core/settlement"
	"github.com/loomchat/loomchat-be/internal/core/stream"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/repositories"
	"github.com/loomchat/loomchat-be/internal/shared/utils"
)

// ChatHandler serves conversation turns and chat management.
type ChatHandler struct {
	users        repositories.UserRepo
	sessions     *session.Service
	admission    *admission.Controller
	orchestrator *stream.Orchestrator
	settlement   *settlement.Service
	turnTimeout  time.Duration
}

func NewChatHandler(
	users repositories.UserRepo,
	sessions *session.Service,
	admissionCtrl *admission.Controller,
	orchestrator *stream.Orchestrator,
	settlementSvc *settlement.Service,
	turnTimeout time.Duration,
) *ChatHandler {
	return &ChatHandler{
		users:        users,
		sessions:     sessions,
		admission:    admissionCtrl,
		orchestrator: orchestrator,
		settlement:   settlementSvc,
		turnTimeout:  turnTimeout,
	}
}

type incomingMessage struct {
	ID          string          `json:"id"`
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	Parts       json.RawMessage `json:"parts"`
	Attachments json.RawMessage `json:"experimental_attachments"`
}

type chatRequest struct {
	ID       string            `json:"id"`
	Messages []incomingMessage `json:"messages"`
}

// Turn runs one model turn and streams tagged events over SSE. Admission and
// ownership fail fast before the stream opens; once the stream has started,
// failures degrade to a single inline error event.
func (h *ChatHandler) Turn(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Validation("invalid request body"))
	}
	chatID, err := uuid.Parse(req.ID)
	if err != nil {
		return apperr.Respond(c, apperr.Validation("invalid chat id"))
	}
	if len(req.Messages) == 0 {
		return apperr.Respond(c, apperr.Validation("messages are required"))
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != models.RoleUser {
		return apperr.Respond(c, apperr.Validation("last message must be from the user"))
	}

	user, err := h.users.GetByID(c.Context(), identity.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if user == nil {
		return apperr.Respond(c, apperr.NotFound("User not found"))
	}

	decision := h.admission.Check(user)
	if !decision.Allowed {
		return c.Status(fiber.StatusPaymentRequired).JSON(decision)
	}

	unlock := h.sessions.LockChat(chatID)
	locked := true
	defer func() {
		// The happy path hands the lock to the stream writer.
		if locked {
			unlock()
		}
	}()

	userText := messageText(last)
	if _, err := h.sessions.EnsureChat(c.Context(), identity.UserID, chatID, userText); err != nil {
		return apperr.Respond(c, err)
	}

	userMessageID, err := uuid.Parse(last.ID)
	if err != nil {
		userMessageID = uuid.New()
	}
	parts := last.Parts
	if len(parts) == 0 {
		encoded, _ := json.Marshal([]map[string]string{{"type": "text", "text": last.Content}})
		parts = encoded
	}
	if err := h.sessions.AppendUserMessage(c.Context(), chatID, userMessageID, datatypes.JSON(parts), datatypes.JSON(last.Attachments)); err != nil {
		return apperr.Respond(c, err)
	}

	input := &stream.TurnInput{
		UserID:   identity.UserID,
		ChatID:   chatID,
		Messages: toLLMMessages(req.Messages),
	}

	turnCtx, cancel := context.WithTimeout(context.Background(), h.turnTimeout)
	release := newTurnRelease(turnCtx, cancel, unlock)

	events := make(chan stream.Event, 32)
	var result *stream.TurnResult
	var runErr error
	go func() {
		defer close(events)
		result, runErr = h.orchestrator.Run(turnCtx, input, events)
	}()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	userID := identity.UserID
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer release()

		for event := range events {
			frame, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := w.WriteString("data: " + string(frame) + "\n\n"); err != nil {
				cancel()
				break
			}
			if err := w.Flush(); err != nil {
				// Client went away: stop the turn, no settlement.
				cancel()
				break
			}
		}
		// Drain so the producer never blocks on a dead channel.
		for range events {
		}

		if runErr != nil {
			utils.LogWarn("turn ended without settlement", map[string]interface{}{
				"chat_id": chatID.String(),
				"error":   runErr.Error(),
			})
			return
		}
		if result == nil {
			return
		}

		settleCtx, settleCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer settleCancel()
		h.settlement.Settle(settleCtx, &settlement.Turn{
			UserID:    userID,
			ChatID:    chatID,
			MessageID: uuid.New(),
			Parts:     result.Parts,
		})
	})
	locked = false

	return nil
}

// newTurnRelease bundles a turn's cleanup into a once-only function and arms a
// watchdog that runs it when the turn context ends. The stream writer normally
// releases on its way out, but fasthttp may tear the connection down before
// the body writer ever runs; without the watchdog the chat lock would leak.
func newTurnRelease(ctx context.Context, cancel context.CancelFunc, unlock func()) func() {
	release := sync.OnceFunc(func() {
		cancel()
		unlock()
	})
	go func() {
		<-ctx.Done()
		release()
	}()
	return release
}

// Delete removes an owned chat with its messages and votes.
func (h *ChatHandler) Delete(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}
	chatID, err := uuid.Parse(c.Query("id"))
	if err != nil {
		return apperr.Respond(c, apperr.Validation("invalid chat id"))
	}
	if err := h.sessions.DeleteChat(c.Context(), identity.UserID, chatID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Chat deleted"})
}

// History pages the caller's chats newest-first with id cursors.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}

	limit := c.QueryInt("limit", 10)
	var startingAfter, endingBefore *uuid.UUID
	if v := c.Query("starting_after"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Respond(c, apperr.Validation("invalid starting_after cursor"))
		}
		startingAfter = &id
	}
	if v := c.Query("ending_before"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Respond(c, apperr.Validation("invalid ending_before cursor"))
		}
		endingBefore = &id
	}

	page, err := h.sessions.ListChats(c.Context(), identity.UserID, limit, startingAfter, endingBefore)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(page)
}

// Messages returns a readable chat's messages oldest-first.
func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}
	chatID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.Respond(c, apperr.Validation("invalid chat id"))
	}
	if _, err := h.sessions.GetReadableChat(c.Context(), identity.UserID, chatID); err != nil {
		return apperr.Respond(c, err)
	}
	messages, err := h.sessions.Messages(c.Context(), chatID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(messages)
}

type visibilityRequest struct {
	ChatID     string `json:"chatId"`
	Visibility string `json:"visibility"`
}

// UpdateVisibility toggles a chat between private and public.
func (h *ChatHandler) UpdateVisibility(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}
	var req visibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Validation("invalid request body"))
	}
	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		return apperr.Respond(c, apperr.Validation("invalid chat id"))
	}
	if err := h.sessions.UpdateVisibility(c.Context(), identity.UserID, chatID, req.Visibility); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Visibility updated"})
}

// messageText extracts the plain text of one incoming message, preferring
// its parts array.
func messageText(msg incomingMessage) string {
	if len(msg.Parts) > 0 {
		var parts []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(msg.Parts, &parts); err == nil {
			var b strings.Builder
			for _, p := range parts {
				if p.Type == "text" {
					b.WriteString(p.Text)
				}
			}
			if b.Len() > 0 {
				return b.String()
			}
		}
	}
	return msg.Content
}

func toLLMMessages(messages []incomingMessage) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, llm.Message{Role: m.Role, Content: messageText(m)})
	}
	return out
}
