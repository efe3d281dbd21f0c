package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/auth"
	"github.com/loomchat/loomchat-be/internal/core/session"
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/repositories"
)

// VoteHandler serves message votes. Reading requires a readable chat,
// voting requires ownership.
type VoteHandler struct {
	votes    repositories.VoteRepo
	sessions *session.Service
}

func NewVoteHandler(votes repositories.VoteRepo, sessions *session.Service) *VoteHandler {
	return &VoteHandler{votes: votes, sessions: sessions}
}

// List returns all votes for a chat.
func (h *VoteHandler) List(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}
	chatID, err := uuid.Parse(c.Query("chatId"))
	if err != nil {
		return apperr.Respond(c, apperr.Validation("chatId is required"))
	}
	if _, err := h.sessions.GetReadableChat(c.Context(), identity.UserID, chatID); err != nil {
		return apperr.Respond(c, err)
	}
	votes, err := h.votes.GetByChatID(c.Context(), chatID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(votes)
}

type voteRequest struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Type      string `json:"type"` // up | down
}

// Upsert records the caller's vote on one message.
func (h *VoteHandler) Upsert(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}
	var req voteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Respond(c, apperr.Validation("invalid request body"))
	}
	chatID, err := uuid.Parse(req.ChatID)
	if err != nil {
		return apperr.Respond(c, apperr.Validation("invalid chat id"))
	}
	messageID, err := uuid.Parse(req.MessageID)
	if err != nil {
		return apperr.Respond(c, apperr.Validation("invalid message id"))
	}
	if req.Type != "up" && req.Type != "down" {
		return apperr.Respond(c, apperr.Validation("type must be up or down"))
	}

	if _, err := h.sessions.GetOwnedChat(c.Context(), identity.UserID, chatID); err != nil {
		return apperr.Respond(c, err)
	}

	if err := h.votes.Upsert(c.Context(), &models.Vote{
		ChatID:    chatID,
		MessageID: messageID,
		IsUpvoted: req.Type == "up",
	}); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Message voted"})
}
