package model

import "time"

// User — аккаунт dev-леджера: логин для сессии, адрес и баланс в базовых единицах.
type User struct {
	ID       int64  `gorm:"primaryKey"`
	Login    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt hash
	Address  string `gorm:"uniqueIndex;not null"`
	Balance  string `gorm:"not null;default:'0'"` // десятичная строка base units

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
