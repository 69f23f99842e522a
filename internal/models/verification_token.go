package models

import (
	"time"
)

// VerificationToken is a single-use credential for email verification and
// password reset. The unique index on UserID guarantees at most one live
// token per user, so concurrent reset-link requests reuse the same row.
type VerificationToken struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Token     string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
