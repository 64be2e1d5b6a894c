package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-contacts-api/internal/service"
	"github.com/pribylovaa/go-contacts-api/internal/transport/http/httperrors"
	"github.com/pribylovaa/go-contacts-api/internal/transport/http/middleware"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// userResponse — проекция пользователя без хэша пароля и refresh-токена.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Signup — POST /auth/signup. Регистрирует пользователя и отвечает 201
// с проекцией аккаунта; письмо подтверждения уходит асинхронно.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in signupRequest
	if err := decodeStrict(r, &in); err != nil {
		writeInvalidArgument(w, r, "")
		return
	}

	user, err := h.Service.Signup(r.Context(), in.Email, in.Password, in.Username)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		Confirmed: user.Confirmed,
		CreatedAt: user.CreatedAt,
	})
}

// Login — POST /auth/login. Принимает форму OAuth2 password-flow
// (username=email, password) и отвечает 201 с парой токенов.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeInvalidArgument(w, r, "")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	pair, err := h.Service.Login(r.Context(), email, password)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// RefreshToken — GET /auth/refresh_token. Refresh-токен предъявляется
// в Authorization: Bearer; в ответ — новая пара, старый refresh отозван.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeMissingToken(w, r)
		return
	}

	pair, err := h.Service.RefreshTokens(r.Context(), token)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// ConfirmEmail — GET /auth/confirmed_email/{token}. Подтверждает почту
// по токену из письма; повторный переход по ссылке безопасен.
func (h *Handlers) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	already, err := h.Service.ConfirmEmail(r.Context(), token)
	if err != nil {
		writeTokenFlowError(w, r, err)
		return
	}

	msg := "Email confirmed"
	if already {
		msg = "Email is already confirmed"
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// RequestEmailConfirmation — POST /auth/request_email. Повторно шлёт письмо
// подтверждения. Для неизвестного адреса отвечает так же, как для известного.
func (h *Handlers) RequestEmailConfirmation(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if err := decodeStrict(r, &in); err != nil {
		writeInvalidArgument(w, r, "")
		return
	}

	already, err := h.Service.RequestEmailConfirmation(r.Context(), in.Email)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	msg := "Confirmation email sent, check your inbox"
	if already {
		msg = "Email is already confirmed"
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// RequestPasswordReset — POST /auth/password-reset. Шлёт письмо со ссылкой
// сброса; неизвестный адрес по контракту отвечает 404.
func (h *Handlers) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if err := decodeStrict(r, &in); err != nil {
		writeInvalidArgument(w, r, "")
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), in.Email); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset email sent, check your inbox"})
}

// ConfirmPasswordReset — POST /auth/password-reset/confirm. Устанавливает
// новый пароль по токену из письма.
func (h *Handlers) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var in passwordResetConfirmRequest
	if err := decodeStrict(r, &in); err != nil {
		writeInvalidArgument(w, r, "")
		return
	}

	if err := h.Service.ConfirmPasswordReset(r.Context(), in.Token, in.NewPassword); err != nil {
		writeTokenFlowError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated"})
}

// writeTokenFlowError — маппинг для эндпоинтов подтверждения по токену
// из письма: их контракт отвечает 400 на токенные ошибки и неизвестный
// аккаунт (вместо 401/404 из базовой таблицы). Сообщение для неизвестного
// аккаунта не отличается от битого токена, чтобы не раскрывать наличие
// адреса в базе.
func writeTokenFlowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		httperrors.WriteStatus(w, r, http.StatusBadRequest, "token_expired", "token expired")
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrNotFound):
		httperrors.WriteStatus(w, r, http.StatusBadRequest, "invalid_token", "invalid token")
	default:
		httperrors.WriteError(w, r, err)
	}
}
