package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// TokenRepository defines persistence operations for verification tokens.
// A user holds at most one live token at a time; creating a new one replaces
// any existing row.
type TokenRepository interface {
	GetByUser(ctx context.Context, userID uint) (*models.VerificationToken, error)
	GetByUserAndToken(ctx context.Context, userID uint, token string) (*models.VerificationToken, error)
	Create(ctx context.Context, token *models.VerificationToken) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository returns a new TokenRepository implementation.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) GetByUser(ctx context.Context, userID uint) (*models.VerificationToken, error) {
	var token models.VerificationToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &token, nil
}

func (r *tokenRepository) GetByUserAndToken(ctx context.Context, userID uint, token string) (*models.VerificationToken, error) {
	var vt models.VerificationToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		First(&vt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &vt, nil
}

func (r *tokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&models.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.VerificationToken{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
