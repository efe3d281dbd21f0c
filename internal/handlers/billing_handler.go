package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/core/billing"
)

// BillingHandler receives payment provider webhooks. These arrive unauthenticated;
// the HMAC signature is the only trust anchor.
type BillingHandler struct {
	billing *billing.Service
}

func NewBillingHandler(billingSvc *billing.Service) *BillingHandler {
	return &BillingHandler{billing: billingSvc}
}

// Webhook verifies and applies one provider event.
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	body := c.Body()
	if !h.billing.VerifySignature(body, c.Get("X-Signature")) {
		return apperr.Respond(c, apperr.Authentication("invalid webhook signature"))
	}
	if err := h.billing.HandleEvent(c.Context(), body); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
