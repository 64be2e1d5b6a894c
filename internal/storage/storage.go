package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-contacts-api/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/контакт).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email пользователя).
	ErrAlreadyExists = errors.New("already exists")
)

// ContactFilter — параметры выборки списка контактов.
// Строковые поля — подстроки для регистронезависимого поиска (ILIKE);
// пустая строка означает «без фильтра».
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
	Limit     int
	Offset    int
}

// ContactUpdate — частичное обновление контакта: обновляются только
// непустые pointer-поля, updated_at сдвигается всегда.
type ContactUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Birthday  *time.Time
	Note      *string
}

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создает нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email (регистронезависимо).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ConfirmEmail помечает учётную запись подтверждённой.
	ConfirmEmail(ctx context.Context, id uuid.UUID) error
	// UpdateRefreshToken записывает (или сбрасывает при nil) refresh-токен аккаунта.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	// RotateRefreshToken атомарно заменяет refresh-токен при условии, что
	// сохранённое значение равно oldToken. Возвращает false, если условие
	// не выполнено (токен уже заменён конкурентным запросом или сброшен).
	RotateRefreshToken(ctx context.Context, id uuid.UUID, oldToken, newToken string) (bool, error)
	// UpdatePassword заменяет хэш пароля и сбрасывает refresh-токен.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// ContactStorage выполняет операции над контактами. Все запросы
// ограничены владельцем (ownerID).
type ContactStorage interface {
	// SaveContact создает новый контакт.
	SaveContact(ctx context.Context, contact *models.Contact) error
	// ContactByID находит контакт владельца по ID.
	ContactByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error)
	// Contacts возвращает страницу контактов владельца с учётом фильтра.
	Contacts(ctx context.Context, ownerID uuid.UUID, filter ContactFilter) ([]models.Contact, error)
	// UpdateContact выполняет частичное обновление и возвращает свежую запись.
	UpdateContact(ctx context.Context, ownerID, id uuid.UUID, update ContactUpdate) (*models.Contact, error)
	// DeleteContact удаляет контакт владельца.
	DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error
	// UpcomingBirthdays возвращает контакты, чей день рождения (месяц-день)
	// попадает в окно [from, from+days], включая перенос через конец года.
	UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, from time.Time, days int) ([]models.Contact, error)
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	ContactStorage
	Close()
}
