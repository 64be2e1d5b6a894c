package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-contacts-api/internal/models"
	"github.com/pribylovaa/go-contacts-api/internal/storage"
)

// contactColumns — единый список колонок таблицы contacts для SELECT/RETURNING,
// чтобы гарантировать одинаковый порядок сканирования.
const contactColumns = `
id, user_id, first_name, last_name, email, phone, birthday, note, created_at, updated_at
`

func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Birthday,
		&c.Note,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func collectContacts(rows pgx.Rows) ([]models.Contact, error) {
	defer rows.Close()

	contacts := make([]models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return contacts, nil
}

// SaveContact создает новый контакт.
func (s *Storage) SaveContact(ctx context.Context, contact *models.Contact) error {
	const op = "storage.postgres.SaveContact"

	query := `
		INSERT INTO contacts(id, user_id, first_name, last_name, email, phone, birthday, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.Exec(ctx, query,
		contact.ID,
		contact.UserID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Birthday,
		contact.Note,
		contact.CreatedAt,
		contact.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ContactByID находит контакт владельца по ID.
func (s *Storage) ContactByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Contact, error) {
	const op = "storage.postgres.ContactByID"

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 AND id = $2`

	c, err := scanContact(s.db.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// Contacts возвращает страницу контактов владельца с учётом фильтра.
// Подстрочные фильтры регистронезависимы (ILIKE); порядок стабильный
// для пагинации limit/offset.
func (s *Storage) Contacts(ctx context.Context, ownerID uuid.UUID, filter storage.ContactFilter) ([]models.Contact, error) {
	const op = "storage.postgres.Contacts"

	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1`
	args := []any{ownerID}

	if filter.FirstName != "" {
		args = append(args, "%"+filter.FirstName+"%")
		query += fmt.Sprintf(" AND first_name ILIKE $%d", len(args))
	}

	if filter.LastName != "" {
		args = append(args, "%"+filter.LastName+"%")
		query += fmt.Sprintf(" AND last_name ILIKE $%d", len(args))
	}

	if filter.Email != "" {
		args = append(args, "%"+filter.Email+"%")
		query += fmt.Sprintf(" AND email ILIKE $%d", len(args))
	}

	query += " ORDER BY created_at, id"

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contacts, nil
}

// UpdateContact выполняет частичный апдейт: обновляет только поля, указанные
// непустыми pointer-полями, и всегда сдвигает updated_at = now().
// Ошибки: storage.ErrNotFound при отсутствии записи у владельца.
func (s *Storage) UpdateContact(ctx context.Context, ownerID, id uuid.UUID, update storage.ContactUpdate) (*models.Contact, error) {
	const op = "storage.postgres.UpdateContact"

	sets := []string{"updated_at = now()"}
	args := []any{ownerID, id}

	if update.FirstName != nil {
		args = append(args, *update.FirstName)
		sets = append(sets, fmt.Sprintf("first_name = $%d", len(args)))
	}

	if update.LastName != nil {
		args = append(args, *update.LastName)
		sets = append(sets, fmt.Sprintf("last_name = $%d", len(args)))
	}

	if update.Email != nil {
		args = append(args, *update.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}

	if update.Phone != nil {
		args = append(args, *update.Phone)
		sets = append(sets, fmt.Sprintf("phone = $%d", len(args)))
	}

	if update.Birthday != nil {
		args = append(args, *update.Birthday)
		sets = append(sets, fmt.Sprintf("birthday = $%d", len(args)))
	}

	if update.Note != nil {
		args = append(args, *update.Note)
		sets = append(sets, fmt.Sprintf("note = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE contacts SET %s WHERE user_id = $1 AND id = $2 RETURNING %s`,
		strings.Join(sets, ", "), contactColumns)

	c, err := scanContact(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

// DeleteContact удаляет контакт владельца.
func (s *Storage) DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error {
	const op = "storage.postgres.DeleteContact"

	query := `DELETE FROM contacts WHERE user_id = $1 AND id = $2`

	tag, err := s.db.Exec(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// UpcomingBirthdays возвращает контакты, чей день рождения (по месяцу и дню)
// попадает в окно [from, from+days]. Сравнение идёт по строке MM-DD; если окно
// пересекает конец года, условие BETWEEN распадается на OR по двум отрезкам.
func (s *Storage) UpcomingBirthdays(ctx context.Context, ownerID uuid.UUID, from time.Time, days int) ([]models.Contact, error) {
	const op = "storage.postgres.UpcomingBirthdays"

	start := from.Format("01-02")
	end := from.AddDate(0, 0, days).Format("01-02")

	query := `SELECT ` + contactColumns + ` FROM contacts
		WHERE user_id = $1 AND to_char(birthday, 'MM-DD') BETWEEN $2 AND $3
		ORDER BY to_char(birthday, 'MM-DD'), id`

	if end < start {
		// Окно вида 28 декабря - 4 января.
		query = `SELECT ` + contactColumns + ` FROM contacts
			WHERE user_id = $1 AND (to_char(birthday, 'MM-DD') >= $2 OR to_char(birthday, 'MM-DD') <= $3)
			ORDER BY to_char(birthday, 'MM-DD'), id`
	}

	rows, err := s.db.Query(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return contacts, nil
}
