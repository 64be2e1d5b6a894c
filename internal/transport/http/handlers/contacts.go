package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-contacts-api/internal/models"
	"github.com/pribylovaa/go-contacts-api/internal/storage"
	"github.com/pribylovaa/go-contacts-api/internal/transport/http/httperrors"
)

// birthdayLayout — формат дат рождения на HTTP-границе.
const birthdayLayout = "2006-01-02"

type contactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
	Note      string `json:"note"`
}

type contactUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Birthday  *string `json:"birthday"`
	Note      *string `json:"note"`
}

type contactResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Birthday  string    `json:"birthday"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type contactListResponse struct {
	Contacts []contactResponse `json:"contacts"`
}

func contactToResponse(c *models.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Birthday:  c.Birthday.Format(birthdayLayout),
		Note:      c.Note,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func contactsToResponse(contacts []models.Contact) contactListResponse {
	out := contactListResponse{Contacts: make([]contactResponse, 0, len(contacts))}
	for i := range contacts {
		out.Contacts = append(out.Contacts, contactToResponse(&contacts[i]))
	}
	return out
}

// ListContacts — GET /contacts. Поддерживает подстрочные фильтры
// first_name/last_name/email и пагинацию limit/offset.
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := storage.ContactFilter{
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
		Email:     q.Get("email"),
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalidArgument(w, r, "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			writeInvalidArgument(w, r, "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	contacts, err := h.Service.Contacts(r.Context(), user.ID, filter)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contactsToResponse(contacts))
}

// CreateContact — POST /contacts. Отвечает 201 с созданным контактом.
func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var in contactRequest
	if err := decodeStrict(r, &in); err != nil {
		writeInvalidArgument(w, r, "")
		return
	}

	birthday, ok := parseBirthday(w, r, in.Birthday)
	if !ok {
		return
	}

	contact := &models.Contact{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Birthday:  birthday,
		Note:      in.Note,
	}

	created, err := h.Service.CreateContact(r.Context(), user.ID, contact)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, contactToResponse(created))
}

// GetContact — GET /contacts/{id}.
func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, ok := parseContactID(w, r)
	if !ok {
		return
	}

	contact, err := h.Service.ContactByID(r.Context(), user.ID, id)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contactToResponse(contact))
}

// UpdateContact — PATCH /contacts/{id}. Обновляются только присланные поля.
func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, ok := parseContactID(w, r)
	if !ok {
		return
	}

	var in contactUpdateRequest
	if err := decodeStrict(r, &in); err != nil {
		writeInvalidArgument(w, r, "")
		return
	}

	update := storage.ContactUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Note:      in.Note,
	}
	if in.Birthday != nil {
		birthday, ok := parseBirthday(w, r, *in.Birthday)
		if !ok {
			return
		}
		update.Birthday = &birthday
	}

	contact, err := h.Service.UpdateContact(r.Context(), user.ID, id, update)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contactToResponse(contact))
}

// DeleteContact — DELETE /contacts/{id}. Успех — 204 без тела.
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, ok := parseContactID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteContact(r.Context(), user.ID, id); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpcomingBirthdays — GET /contacts/birthdays. Контакты с днём рождения
// в ближайшую неделю.
func (h *Handlers) UpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	contacts, err := h.Service.UpcomingBirthdays(r.Context(), user.ID)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contactsToResponse(contacts))
}

// parseContactID читает {id} из пути. При ошибке сам пишет 400.
func parseContactID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeInvalidArgument(w, r, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// parseBirthday разбирает дату рождения. При ошибке сам пишет 400.
func parseBirthday(w http.ResponseWriter, r *http.Request, raw string) (time.Time, bool) {
	if raw == "" {
		writeInvalidArgument(w, r, "birthday is required, format YYYY-MM-DD")
		return time.Time{}, false
	}

	birthday, err := time.Parse(birthdayLayout, raw)
	if err != nil {
		writeInvalidArgument(w, r, "birthday must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return birthday, true
}
