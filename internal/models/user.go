// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultProfilePhotoURL is used for accounts that never uploaded a photo.
const DefaultProfilePhotoURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_1280.png"

// User represents a registered account on the Inkwell platform.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"not null" json:"username"`
	Email             string    `gorm:"unique;not null" json:"email"`
	Password          string    `gorm:"not null" json:"-"`
	Bio               string    `json:"bio"`
	ProfilePhotoURL   string    `json:"profilePhoto"`
	ProfilePhotoID    *string   `json:"-"`
	IsAdmin           bool      `gorm:"default:false" json:"isAdmin"`
	IsAccountVerified bool      `gorm:"default:false" json:"isAccountVerified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Posts             []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
