// Package model holds the persisted entities.
package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID        int64     `json:"id" db:"id" gorm:"primaryKey"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Tokens []AccessToken `json:"tokens,omitempty" db:"-" gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "users" }

// BeforeSave hashes a plain-text password. Values that are already bcrypt
// hashes are stored unchanged, so re-saving a loaded user is safe.
func (u *User) BeforeSave(*gorm.DB) error {
	if u.Password == "" || IsPasswordHash(u.Password) {
		return nil
	}
	hash, err := HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func IsPasswordHash(value string) bool {
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}
