package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/pricing"
)

type fakeUserRepo struct {
	appliedPlan *pricing.Plan
	appliedTo   uuid.UUID
	customerID  string
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (f *fakeUserRepo) DeductCredit(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeUserRepo) SetHasAccess(ctx context.Context, id uuid.UUID, hasAccess bool) error {
	return nil
}

func (f *fakeUserRepo) ApplyPlan(ctx context.Context, id uuid.UUID, plan pricing.Plan) error {
	f.appliedPlan = &plan
	f.appliedTo = id
	return nil
}

func (f *fakeUserRepo) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	f.customerID = customerID
	return nil
}

func (f *fakeUserRepo) ResetMonthlyCredits(ctx context.Context, plan pricing.Plan) error {
	return nil
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	svc := NewService(&fakeUserRepo{}, "whsec")
	body := []byte(`{"meta":{}}`)

	if !svc.VerifySignature(body, sign("whsec", body)) {
		t.Error("valid signature rejected")
	}
	if svc.VerifySignature(body, sign("wrong", body)) {
		t.Error("signature from wrong secret accepted")
	}
	if svc.VerifySignature(body, "") {
		t.Error("empty signature accepted")
	}
	if NewService(&fakeUserRepo{}, "").VerifySignature(body, sign("", body)) {
		t.Error("unconfigured secret accepted a signature")
	}
}

func TestOrderCreatedAppliesPlan(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewService(users, "whsec")
	userID := uuid.New()

	body := []byte(fmt.Sprintf(`{
		"meta": {"event_name": "order_created", "custom_data": {"user_id": %q}},
		"data": {"attributes": {"customer_id": 42, "first_order_item": {"variant_id": 818286}}}
	}`, userID))

	if err := svc.HandleEvent(context.Background(), body); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if users.appliedPlan == nil || users.appliedPlan.ID != pricing.PlanPro {
		t.Fatalf("applied plan = %+v, want pro", users.appliedPlan)
	}
	if users.appliedTo != userID {
		t.Error("plan applied to wrong user")
	}
	if users.customerID != "42" {
		t.Errorf("customer id = %q, want 42", users.customerID)
	}
}

func TestOrderCreatedUnknownVariant(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewService(users, "whsec")

	body := []byte(fmt.Sprintf(`{
		"meta": {"event_name": "order_created", "custom_data": {"user_id": %q}},
		"data": {"attributes": {"first_order_item": {"variant_id": 999999}}}
	}`, uuid.New()))

	if err := svc.HandleEvent(context.Background(), body); err == nil {
		t.Fatal("unknown variant accepted")
	}
	if users.appliedPlan != nil {
		t.Error("plan applied for unknown variant")
	}
}

func TestSubscriptionCancelledRevokesToFree(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewService(users, "whsec")
	userID := uuid.New()

	body := []byte(fmt.Sprintf(`{"meta": {"event_name": "subscription_cancelled", "custom_data": {"user_id": %q}}}`, userID))
	if err := svc.HandleEvent(context.Background(), body); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if users.appliedPlan == nil || users.appliedPlan.ID != pricing.PlanFree {
		t.Fatalf("applied plan = %+v, want free", users.appliedPlan)
	}
}

func TestUnknownEventIgnored(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewService(users, "whsec")

	body := []byte(fmt.Sprintf(`{"meta": {"event_name": "subscription_paused", "custom_data": {"user_id": %q}}}`, uuid.New()))
	if err := svc.HandleEvent(context.Background(), body); err != nil {
		t.Fatalf("unknown event errored: %v", err)
	}
	if users.appliedPlan != nil {
		t.Error("unknown event mutated the user")
	}
}
