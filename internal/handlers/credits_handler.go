package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/auth"
	"github.com/loomchat/loomchat-be/internal/pricing"
	"github.com/loomchat/loomchat-be/internal/repositories"
)

// CreditsHandler exposes the caller's remaining budget.
type CreditsHandler struct {
	users repositories.UserRepo
}

func NewCreditsHandler(users repositories.UserRepo) *CreditsHandler {
	return &CreditsHandler{users: users}
}

// Get returns credits for the authenticated user only: asking about anyone
// else is forbidden.
func (h *CreditsHandler) Get(c *fiber.Ctx) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return apperr.Respond(c, apperr.Authentication("authentication required"))
	}

	if requested := c.Query("userId"); requested != "" {
		id, err := uuid.Parse(requested)
		if err != nil {
			return apperr.Respond(c, apperr.Validation("invalid user id"))
		}
		if id != identity.UserID {
			return apperr.Respond(c, apperr.Forbidden("you can only view your own credits"))
		}
	}

	user, err := h.users.GetByID(c.Context(), identity.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if user == nil {
		return apperr.Respond(c, apperr.NotFound("User not found"))
	}

	plan := pricing.GetPlan(user.PlanType)
	return c.JSON(fiber.Map{
		"credits":         user.Credits,
		"maxCredits":      plan.Credits,
		"planType":        user.PlanType,
		"lastCreditReset": user.LastCreditReset,
	})
}
