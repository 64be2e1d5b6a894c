package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись пользователя.
//
// Email хранится в нижнем регистре и уникален (CITEXT в БД).
// RefreshToken — единственное активное значение refresh-токена на аккаунт:
// nil означает «нет активной сессии», перезапись значения неявно отзывает
// предыдущий токен.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash string
	Confirmed    bool
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
