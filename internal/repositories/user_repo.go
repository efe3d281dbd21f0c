package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loomchat/loomchat-be/internal/models"
	"github.com/loomchat/loomchat-be/internal/pricing"
)

type UserRepo interface {
	// GetByID and GetByEmail return (nil, nil) when no matching user exists.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// DeductCredit atomically decrements one credit. Returns false when the
	// balance is already zero; the counter can never go negative.
	DeductCredit(ctx context.Context, id uuid.UUID) (bool, error)
	SetHasAccess(ctx context.Context, id uuid.UUID, hasAccess bool) error
	// ApplyPlan switches the user to a tier, refilling credits to the tier
	// ceiling and stamping the reset time.
	ApplyPlan(ctx context.Context, id uuid.UUID, plan pricing.Plan) error
	SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	// ResetMonthlyCredits refills every user on the plan to its ceiling.
	ResetMonthlyCredits(ctx context.Context, plan pricing.Plan) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) DeductCredit(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND credits >= 1", id).
		UpdateColumn("credits", gorm.Expr("credits - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepo) SetHasAccess(ctx context.Context, id uuid.UUID, hasAccess bool) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("has_access", hasAccess).Error
}

func (r *userRepo) ApplyPlan(ctx context.Context, id uuid.UUID, plan pricing.Plan) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan_type":         plan.ID,
			"credits":           plan.Credits,
			"has_access":        plan.HasAccess,
			"last_credit_reset": now,
		}).Error
}

func (r *userRepo) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("customer_id", customerID).Error
}

func (r *userRepo) ResetMonthlyCredits(ctx context.Context, plan pricing.Plan) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("plan_type = ?", plan.ID).
		Updates(map[string]interface{}{
			"credits":           plan.Credits,
			"has_access":        plan.HasAccess,
			"last_credit_reset": now,
		}).Error
}
