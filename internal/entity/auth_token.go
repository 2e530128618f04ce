package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthToken is the server-side half of a bearer token. The token is valid
// only while its row exists.
type AuthToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TokenID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"token_id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	User       *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (t *AuthToken) BeforeCreate(tx *gorm.DB) error {
	if t.TokenID == uuid.Nil {
		t.TokenID = uuid.New()
	}
	return nil
}
