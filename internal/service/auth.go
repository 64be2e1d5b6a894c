package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-contacts-api/internal/models"
	"github.com/pribylovaa/go-contacts-api/internal/pkg/log"
	"github.com/pribylovaa/go-contacts-api/internal/pkg/redact"
	"github.com/pribylovaa/go-contacts-api/internal/storage"
)

// Signup регистрирует нового пользователя в неподтверждённом состоянии
// и ставит в очередь письмо подтверждения почты. Ошибка постановки письма
// в очередь логируется и не проваливает регистрацию.
func (s *Service) Signup(ctx context.Context, email, password, username string) (*models.User, error) {
	const op = "service.auth.Signup"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyUsername)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		Username:     username,
		PasswordHash: hashedPassword,
		Confirmed:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.dispatchConfirmEmail(ctx, user)

	lg.Info("user_registered",
		"op", op,
		"email", redact.Email(normEmail),
	)

	return user, nil
}

// Login выполняет вход по email+пароль. Неизвестный email, неподтверждённая
// почта и неверный пароль наружу неразличимы (единый ErrInvalidCredentials).
// На успехе выпускает пару токенов и перезаписывает refresh-токен аккаунта,
// неявно отзывая предыдущий.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.Confirmed {
		lg.Debug("login_rejected_unconfirmed",
			"op", op,
			"email", redact.Email(normEmail),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issueTokenPair(user, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// RefreshTokens обновляет пару токенов по предъявленному refresh-токену.
// Предъявление токена, не совпадающего с сохранённым значением, сбрасывает
// сохранённый токен (защита от повторного использования украденного/устаревшего
// токена) и возвращает ErrTokenRevoked. Ротация безусловна и атомарна:
// условный UPDATE закрывает гонку конкурентных refresh-запросов.
func (s *Service) RefreshTokens(ctx context.Context, presented string) (*models.TokenPair, error) {
	const op = "service.auth.RefreshTokens"

	lg := log.From(ctx)

	subject, err := s.decodeToken(presented, PurposeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		lg.Warn("refresh_reuse_detected",
			"op", op,
			"email", redact.Email(user.Email),
		)

		if err := s.storage.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			lg.Error("refresh_clear_failed",
				"op", op,
				"err", err.Error(),
			)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	pair, err := s.issueTokenPair(user, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rotated, err := s.storage.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !rotated {
		// Конкурентный запрос успел заменить токен между чтением и UPDATE.
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	return pair, nil
}

// ConfirmEmail переводит аккаунт в подтверждённое состояние по токену
// с назначением email-verification. Переход одноразовый и идемпотентный:
// повторное подтверждение возвращает already=true без мутации.
func (s *Service) ConfirmEmail(ctx context.Context, token string) (already bool, err error) {
	const op = "service.auth.ConfirmEmail"

	subject, err := s.decodeToken(token, PurposeEmailVerification)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	if user.Confirmed {
		return true, nil
	}

	if err := s.storage.ConfirmEmail(ctx, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("email_confirmed",
		"op", op,
		"email", redact.Email(user.Email),
	)

	return false, nil
}

// RequestEmailConfirmation повторно отправляет письмо подтверждения.
// Для подтверждённого аккаунта возвращает already=true без отправки.
// Отсутствующий аккаунт — осознанный тихий no-op: ответ неотличим от
// успешной отправки, чтобы не допускать перебор адресов.
func (s *Service) RequestEmailConfirmation(ctx context.Context, email string) (already bool, err error) {
	const op = "service.auth.RequestEmailConfirmation"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Debug("request_email_unknown_account",
				"op", op,
				"email", redact.Email(normEmail),
			)
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	if user.Confirmed {
		return true, nil
	}

	s.dispatchConfirmEmail(ctx, user)

	return false, nil
}

// RequestPasswordReset выпускает токен сброса пароля и ставит письмо
// в очередь. Неизвестный email — ErrNotFound: эндпоинт по контракту
// раскрывает отсутствие аккаунта. Аккаунт не мутируется.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "service.auth.RequestPasswordReset"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.issueToken(user.Email, PurposePasswordReset, s.cfg.VerifyTokenTTL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.notifier.PasswordReset(ctx, user.Email, user.Username, token); err != nil {
		lg.Warn("password_reset_dispatch_failed",
			"op", op,
			"email", redact.Email(user.Email),
			"err", err.Error(),
		)
	}

	return nil
}

// ConfirmPasswordReset устанавливает новый пароль по токену сброса.
// Хэш пароля перезаписывается, активный refresh-токен сбрасывается.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	const op = "service.auth.ConfirmPasswordReset"

	subject, err := s.decodeToken(token, PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("password_reset_confirmed",
		"op", op,
		"email", redact.Email(user.Email),
	)

	return nil
}

// Authenticate проверяет access-токен и возвращает пользователя.
// Используется HTTP-слоем для защищённых эндпоинтов.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "service.auth.Authenticate"

	subject, err := s.decodeToken(accessToken, PurposeAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// dispatchConfirmEmail выпускает токен подтверждения и ставит письмо в очередь.
// Любая ошибка здесь только логируется: уведомление не должно проваливать
// породивший его запрос.
func (s *Service) dispatchConfirmEmail(ctx context.Context, user *models.User) {
	const op = "service.auth.dispatchConfirmEmail"

	lg := log.From(ctx)

	token, err := s.issueToken(user.Email, PurposeEmailVerification, s.cfg.VerifyTokenTTL, time.Now().UTC())
	if err != nil {
		lg.Error("verification_token_issue_failed",
			"op", op,
			"err", err.Error(),
		)
		return
	}

	if err := s.notifier.ConfirmEmail(ctx, user.Email, user.Username, token); err != nil {
		lg.Warn("confirm_email_dispatch_failed",
			"op", op,
			"email", redact.Email(user.Email),
			"err", err.Error(),
		)
	}
}

// hashPassword хэширует пароль с помощью bcrypt (случайная соль,
// одинаковый пароль даёт разные хэши).
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем за константное время.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная,
// цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
