package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/go-contacts-api/internal/models"
	"github.com/pribylovaa/go-contacts-api/internal/service"
	"github.com/pribylovaa/go-contacts-api/internal/transport/http/httperrors"
	"github.com/pribylovaa/go-contacts-api/internal/transport/http/middleware"
)

// Handlers агрегирует зависимости (сервисный слой).
type Handlers struct {
	Service *service.Service
}

func New(s *service.Service) *Handlers {
	return &Handlers{Service: s}
}

// messageResponse — ответ эндпоинтов, у которых нет полезной нагрузки,
// кроме человекочитаемого статуса операции.
type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// writeInvalidArgument — вспомогалка: локальная ошибка парсинга -> 400.
func writeInvalidArgument(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "invalid argument"
	}
	httperrors.WriteStatus(w, r, http.StatusBadRequest, "invalid_argument", message)
}

// writeMissingToken — запрос к защищённому эндпоинту без Bearer-токена.
func writeMissingToken(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteStatus(w, r, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
}

// currentUser аутентифицирует запрос по access-токену из контекста
// (его кладёт middleware.AuthBearer). При неудаче сам пишет ответ
// и возвращает ok=false.
func (h *Handlers) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeMissingToken(w, r)
		return nil, false
	}

	user, err := h.Service.Authenticate(r.Context(), token)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return nil, false
	}

	return user, true
}
