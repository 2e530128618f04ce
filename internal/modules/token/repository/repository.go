package repository

import (
	"context"
	"time"

	"anoa.com/pengaduan/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(ctx context.Context, token *entity.AuthToken) error
	FindByTokenID(ctx context.Context, tokenID uuid.UUID, userID uint) (*entity.AuthToken, error)
	TouchLastUsed(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, tokenID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *entity.AuthToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) FindByTokenID(ctx context.Context, tokenID uuid.UUID, userID uint) (*entity.AuthToken, error) {
	var token entity.AuthToken
	if err := r.db.WithContext(ctx).
		Where("token_id = ? AND user_id = ?", tokenID, userID).
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) TouchLastUsed(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.AuthToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

func (r *tokenRepository) Delete(ctx context.Context, tokenID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&entity.AuthToken{})
	return res.RowsAffected, res.Error
}

// DeleteExpired removes tokens whose expiry has passed. Tokens without an
// expiry are kept.
func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&entity.AuthToken{})
	return res.RowsAffected, res.Error
}
