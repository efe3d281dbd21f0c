package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/loomchat/loomchat-be/internal/models"
)

type VoteRepo interface {
	// Upsert records a vote, replacing any prior vote on the same message.
	Upsert(ctx context.Context, vote *models.Vote) error
	GetByChatID(ctx context.Context, chatID uuid.UUID) ([]models.Vote, error)
}

type voteRepo struct {
	db *gorm.DB
}

func NewVoteRepo(db *gorm.DB) VoteRepo {
	return &voteRepo{db: db}
}

func (r *voteRepo) Upsert(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_upvoted"}),
		}).
		Create(vote).Error
}

func (r *voteRepo) GetByChatID(ctx context.Context, chatID uuid.UUID) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Find(&votes).Error
	return votes, err
}
