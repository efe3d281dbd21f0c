package admission

import (
	"testing"

	"github.com/loomchat/loomchat-be/internal/models"
)

func TestCheckZeroCreditPlanAlwaysDenied(t *testing.T) {
	ctrl := NewController()

	// Stale balance from a previous tier must not grant access.
	for _, credits := range []int{0, 1, 250} {
		decision := ctrl.Check(&models.User{PlanType: "free", Credits: credits})
		if decision.Allowed {
			t.Errorf("free plan with %d credits was admitted", credits)
		}
		if decision.Reason != ReasonNoCreditsPlan {
			t.Errorf("reason = %q, want %q", decision.Reason, ReasonNoCreditsPlan)
		}
	}
}

func TestCheckExhaustedBalance(t *testing.T) {
	decision := NewController().Check(&models.User{PlanType: "pro", Credits: 0})
	if decision.Allowed {
		t.Fatal("exhausted pro user was admitted")
	}
	if decision.Reason != ReasonInsufficientCredits {
		t.Errorf("reason = %q, want %q", decision.Reason, ReasonInsufficientCredits)
	}
	if decision.MaxCredits != 300 {
		t.Errorf("maxCredits = %d, want 300", decision.MaxCredits)
	}
}

func TestCheckAdmitsLastCredit(t *testing.T) {
	decision := NewController().Check(&models.User{PlanType: "pro", Credits: 1})
	if !decision.Allowed {
		t.Fatal("pro user with one credit was denied")
	}
	if decision.Reason != "" {
		t.Errorf("allowed decision carries reason %q", decision.Reason)
	}
}

func TestCheckUnknownPlanFallsBackToFree(t *testing.T) {
	decision := NewController().Check(&models.User{PlanType: "enterprise", Credits: 10})
	if decision.Allowed {
		t.Fatal("unknown plan was admitted")
	}
	if decision.PlanType != "free" {
		t.Errorf("planType = %q, want free", decision.PlanType)
	}
}
