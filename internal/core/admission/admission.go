package admission

import (
	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/pricing"
)

// Deny reasons returned to the client so it can render the right upgrade
// prompt.
const (
	ReasonNoCreditsPlan       = "no_credits_plan"
	ReasonInsufficientCredits = "insufficient_credits"
)

// Decision is the result of the pre-generation budget check.
type Decision struct {
	Allowed    bool   `json:"-"`
	Reason     string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	Credits    int    `json:"credits"`
	MaxCredits int    `json:"maxCredits"`
	PlanType   string `json:"planType"`
}

// Controller performs the soft admission check. No balance is reserved here;
// the decrement happens at settlement.
type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

// Check allows or denies a new turn for the user before any model call.
func (a *Controller) Check(user *models.User) Decision {
	plan := pricing.GetPlan(user.PlanType)

	decision := Decision{
		Credits:    user.Credits,
		MaxCredits: plan.Credits,
		PlanType:   plan.ID,
	}

	// A zero-credit plan has no entitlement at all, regardless of any stored
	// balance left over from a previous tier.
	if plan.Credits == 0 {
		decision.Reason = ReasonNoCreditsPlan
		decision.Message = "Your current plan does not include AI credits. Please upgrade to continue chatting."
		return decision
	}

	if user.Credits <= 0 {
		decision.Reason = ReasonInsufficientCredits
		decision.Message = "You have reached your credit limit. Please upgrade to continue chatting."
		return decision
	}

	decision.Allowed = true
	return decision
}
