package pricing

// Plan is a named tier defining the credit ceiling and the access flag applied
// when the tier is granted.
type Plan struct {
	ID          string
	Name        string
	Credits     int
	HasAccess   bool
	VariantID   string // billing processor variant granting this plan
	PriceCents  int
	Description string
}

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

var plans = map[string]Plan{
	PlanFree: {
		ID:          PlanFree,
		Name:        "Hobby",
		Credits:     0,
		HasAccess:   false,
		PriceCents:  0,
		Description: "Free tier without AI credits",
	},
	PlanPro: {
		ID:          PlanPro,
		Name:        "Pro",
		Credits:     300,
		HasAccess:   true,
		VariantID:   "818286",
		PriceCents:  900,
		Description: "300 monthly AI credits",
	},
}

// GetPlan resolves a plan by id; unknown or empty plan types fall back to free.
func GetPlan(planType string) Plan {
	if plan, ok := plans[planType]; ok {
		return plan
	}
	return plans[PlanFree]
}

// PlanByVariantID maps a billing processor variant to its plan.
func PlanByVariantID(variantID string) (Plan, bool) {
	for _, plan := range plans {
		if plan.VariantID != "" && plan.VariantID == variantID {
			return plan, true
		}
	}
	return Plan{}, false
}

// ResettablePlans lists the tiers whose credits are replenished monthly.
func ResettablePlans() []Plan {
	out := make([]Plan, 0, len(plans))
	for _, plan := range plans {
		if plan.Credits > 0 {
			out = append(out, plan)
		}
	}
	return out
}
