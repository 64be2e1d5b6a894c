package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-contacts-api/internal/models"
	"github.com/pribylovaa/go-contacts-api/internal/storage"
)

const (
	// defaultContactsLimit применяется, если клиент не задал limit.
	defaultContactsLimit = 50
	// maxContactsLimit — верхняя граница размера страницы.
	maxContactsLimit = 500
	// birthdayWindowDays — размер окна ближайших дней рождения.
	birthdayWindowDays = 7
)

// Contacts возвращает страницу контактов владельца. Значения limit/offset
// нормализуются: limit <= 0 заменяется значением по умолчанию,
// limit > maxContactsLimit урезается, отрицательный offset обнуляется.
func (s *Service) Contacts(ctx context.Context, ownerID uuid.UUID, filter storage.ContactFilter) ([]models.Contact, error) {
	const op = "service.contacts.Contacts"

	if filter.Limit <= 0 {
		filter.Limit = defaultContactsLimit
	}
	if filter.Limit > maxContactsLimit {
		filter.Limit = maxContactsLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	contacts, err := s.storage.Contacts(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contacts, nil
}

// ContactByID возвращает контакт владельца.
func (s *Service) ContactByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	const op = "service.contacts.ContactByID"

	contact, err := s.storage.ContactByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contact, nil
}

// CreateContact создает контакт владельца. Имя и дата рождения обязательны,
// email (если задан) должен иметь корректный формат.
func (s *Service) CreateContact(ctx context.Context, ownerID uuid.UUID, contact *models.Contact) (*models.Contact, error) {
	const op = "service.contacts.CreateContact"

	contact.FirstName = strings.TrimSpace(contact.FirstName)
	contact.LastName = strings.TrimSpace(contact.LastName)
	contact.Email = strings.TrimSpace(contact.Email)
	contact.Phone = strings.TrimSpace(contact.Phone)

	if contact.FirstName == "" {
		return nil, fmt.Errorf("%s: first_name is empty: %w", op, ErrInvalidContact)
	}
	if contact.Birthday.IsZero() {
		return nil, fmt.Errorf("%s: birthday is empty: %w", op, ErrInvalidContact)
	}
	if contact.Email != "" {
		if _, err := mail.ParseAddress(contact.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
		}
	}

	now := time.Now().UTC()
	contact.ID = uuid.New()
	contact.UserID = ownerID
	contact.CreatedAt = now
	contact.UpdatedAt = now

	if err := s.storage.SaveContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contact, nil
}

// UpdateContact выполняет частичное обновление контакта владельца:
// применяются только заданные поля, остальные сохраняют текущее значение.
func (s *Service) UpdateContact(ctx context.Context, ownerID, id uuid.UUID, update storage.ContactUpdate) (*models.Contact, error) {
	const op = "service.contacts.UpdateContact"

	if update.FirstName != nil {
		trimmed := strings.TrimSpace(*update.FirstName)
		if trimmed == "" {
			return nil, fmt.Errorf("%s: first_name is empty: %w", op, ErrInvalidContact)
		}
		update.FirstName = &trimmed
	}
	if update.Email != nil && *update.Email != "" {
		if _, err := mail.ParseAddress(*update.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
		}
	}
	if update.Birthday != nil && update.Birthday.IsZero() {
		return nil, fmt.Errorf("%s: birthday is empty: %w", op, ErrInvalidContact)
	}

	contact, err := s.storage.UpdateContact(ctx, ownerID, id, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contact, nil
}

// DeleteContact удаляет контакт владельца.
func (s *Service) DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error {
	const op = "service.contacts.DeleteContact"

	if err := s.storage.DeleteContact(ctx, ownerID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpcomingBirthdays возвращает контакты владельца с днём рождения
// в ближайшие birthdayWindowDays дней, начиная с сегодняшнего.
func (s *Service) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	const op = "service.contacts.UpcomingBirthdays"

	contacts, err := s.storage.UpcomingBirthdays(ctx, ownerID, time.Now().UTC(), birthdayWindowDays)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contacts, nil
}
