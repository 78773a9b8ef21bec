package model

import "time"

const TokenTypeBearer = "bearer"

// AccessToken is an issued API token. Token stores the JWT id (jti), never
// the signed token itself.
type AccessToken struct {
	ID        int64      `json:"id" db:"id" gorm:"primaryKey"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	Type      string     `json:"type" db:"type"`
	Token     string     `json:"-" db:"token"`
	ExpiresAt *time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	User      *User      `json:"user,omitempty" db:"-" gorm:"foreignKey:UserID"`
}

func (AccessToken) TableName() string { return "api_tokens" }

func (t *AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
