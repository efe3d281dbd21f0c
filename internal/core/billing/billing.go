// Package billing processes payment provider webhooks: signature
// verification, plan activation on purchase and revocation on cancellation.
package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/loomchat/loomchat-be/internal/apperr"
	"github.com/loomchat/loomchat-be/internal/pricing"
	"github.com/loomchat/loomchat-be/internal/repositories"
	"github.com/loomchat/loomchat-be/internal/shared/utils"
)

const (
	EventOrderCreated          = "order_created"
	EventSubscriptionCancelled = "subscription_cancelled"
)

type Service struct {
	users         repositories.UserRepo
	signingSecret string
}

func NewService(users repositories.UserRepo, signingSecret string) *Service {
	return &Service{users: users, signingSecret: signingSecret}
}

// VerifySignature checks the webhook body against the hex-encoded
// HMAC-SHA256 signature header in constant time.
func (s *Service) VerifySignature(body []byte, signature string) bool {
	if s.signingSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.signingSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// webhookPayload mirrors the slice of the provider event we consume.
type webhookPayload struct {
	Meta struct {
		EventName  string `json:"event_name"`
		CustomData struct {
			UserID string `json:"user_id"`
		} `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		Attributes struct {
			CustomerID     json.Number `json:"customer_id"`
			FirstOrderItem struct {
				VariantID json.Number `json:"variant_id"`
			} `json:"first_order_item"`
		} `json:"attributes"`
	} `json:"data"`
}

// HandleEvent applies one verified webhook event. Unknown event names are
// acknowledged and ignored.
func (s *Service) HandleEvent(ctx context.Context, body []byte) error {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperr.Validation("invalid webhook payload")
	}

	userID, err := uuid.Parse(payload.Meta.CustomData.UserID)
	if err != nil {
		return apperr.Validation("webhook payload missing user id")
	}

	switch payload.Meta.EventName {
	case EventOrderCreated:
		variantID := payload.Data.Attributes.FirstOrderItem.VariantID.String()
		plan, ok := pricing.PlanByVariantID(variantID)
		if !ok {
			return apperr.Validation("unknown plan variant: " + variantID)
		}
		if err := s.users.ApplyPlan(ctx, userID, plan); err != nil {
			return err
		}
		if customerID := payload.Data.Attributes.CustomerID.String(); customerID != "" {
			if err := s.users.SetCustomerID(ctx, userID, customerID); err != nil {
				return err
			}
		}
		utils.LogInfo("plan activated", map[string]interface{}{
			"user_id": userID.String(),
			"plan":    plan.ID,
		})
		return nil

	case EventSubscriptionCancelled:
		if err := s.users.ApplyPlan(ctx, userID, pricing.GetPlan("free")); err != nil {
			return err
		}
		utils.LogInfo("plan revoked to free", map[string]interface{}{
			"user_id": userID.String(),
		})
		return nil

	default:
		utils.LogDebug("ignoring webhook event", map[string]interface{}{
			"event": payload.Meta.EventName,
		})
		return nil
	}
}
