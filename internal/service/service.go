// service содержит бизнес-логику contacts-api:
// регистрацию и аутентификацию пользователей, выпуск/проверку токенов
// с тегом назначения, подтверждение почты, сброс пароля и операции
// над контактами через интерфейсы из пакетов storage и notify.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования при потокобезопасном хранилище.
//   - Ошибки возвращаются сентинелами и далее маппятся HTTP-слоем
//     на статус-коды (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/go-contacts-api/internal/config"
	"github.com/pribylovaa/go-contacts-api/internal/notify"
	"github.com/pribylovaa/go-contacts-api/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна, пользователь не найден
	// или почта не подтверждена. Причины не различаются наружу, чтобы не
	// допускать перебор аккаунтов. Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен некорректен по формату/подписи, выписан с другим
	// назначением или субъект не найден. Транспорт: HTTP 401
	// (HTTP 400 на эндпоинтах подтверждения почты/сброса пароля).
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк.
	// Транспорт: как у ErrInvalidToken.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — refresh-токен не совпал с сохранённым значением
	// (повторное использование после ротации) либо проиграл гонку ротации.
	// Транспорт: HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrNotFound — аккаунт или контакт не найден на операциях, которые
	// обязаны это раскрывать. Транспорт: HTTP 404
	// (HTTP 400 на эндпоинтах подтверждения токенов).
	ErrNotFound = errors.New("not found")

	// ErrInvalidEmail — e-mail имеет некорректный формат.
	// Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политикам сложности.
	// Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrEmptyUsername — отображаемое имя пустое. Транспорт: HTTP 400.
	ErrEmptyUsername = errors.New("username is empty")

	// ErrInvalidContact — данные контакта не проходят валидацию
	// (пустое имя, нулевая дата рождения). Транспорт: HTTP 400.
	ErrInvalidContact = errors.New("invalid contact data")
)

// Service описывает бизнес-логику contacts-api.
type Service struct {
	storage  storage.Storage
	notifier notify.Notifier
	cfg      config.AuthConfig
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, notifier notify.Notifier, cfg config.AuthConfig) *Service {
	return &Service{
		storage:  storage,
		notifier: notifier,
		cfg:      cfg,
	}
}
