package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact — запись адресной книги. Принадлежит ровно одному пользователю
// (UserID); все операции хранилища выполняются в рамках владельца.
type Contact struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
