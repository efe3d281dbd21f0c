package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loomchat/loomchat-be/internal/models"
)

type DocumentRepo interface {
	// SaveVersion appends a new version row for the document id.
	SaveVersion(ctx context.Context, doc *models.Document) error
	// GetVersions returns every version for an id, oldest first.
	GetVersions(ctx context.Context, id uuid.UUID) ([]models.Document, error)
	// GetLatest returns the version with the maximum created_at for the id,
	// or (nil, nil) when the document has no versions.
	GetLatest(ctx context.Context, id uuid.UUID) (*models.Document, error)
	// ListLatestByUser returns the current version of each document the user
	// owns, newest first.
	ListLatestByUser(ctx context.Context, userID uuid.UUID) ([]models.Document, error)
	// DeleteAfterTimestamp removes all versions with created_at strictly
	// greater than the timestamp; rows at or before it are untouched.
	DeleteAfterTimestamp(ctx context.Context, id uuid.UUID, after time.Time) (int64, error)
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepo {
	return &documentRepo{db: db}
}

func (r *documentRepo) SaveVersion(ctx context.Context, doc *models.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepo) GetVersions(ctx context.Context, id uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at ASC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) GetLatest(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at DESC").
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListLatestByUser(ctx context.Context, userID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Where("(id, created_at) IN (?)",
			r.db.Model(&models.Document{}).
				Select("id, MAX(created_at)").
				Where("user_id = ?", userID).
				Group("id"),
		).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) DeleteAfterTimestamp(ctx context.Context, id uuid.UUID, after time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND created_at > ?", id, after).
		Delete(&models.Document{})
	return res.RowsAffected, res.Error
}
