package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-contacts-api/internal/models"
)

// TokenPurpose — назначение токена. Тег назначения зашит в claims и
// не позволяет использовать токен одного типа вместо другого.
type TokenPurpose string

const (
	PurposeAccess            TokenPurpose = "access"
	PurposeRefresh           TokenPurpose = "refresh"
	PurposeEmailVerification TokenPurpose = "email-verification"
	PurposePasswordReset     TokenPurpose = "password-reset"
)

type authClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// issueToken выпускает подписанный HS256-токен с субъектом (email),
// тегом назначения и абсолютным сроком действия.
func (s *Service) issueToken(subject string, purpose TokenPurpose, ttl time.Duration, now time.Time) (string, error) {
	const op = "service.token.issueToken"

	claims := authClaims{
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(s.cfg.Audience),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// decodeToken валидирует токен и возвращает субъект (email).
// Несовпадение назначения равнозначно недействительному токену.
func (s *Service) decodeToken(tokenStr string, expected TokenPurpose) (string, error) {
	const op = "service.token.decodeToken"

	token, err := jwt.ParseWithClaims(tokenStr, &authClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*authClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Purpose != string(expected) || claims.Subject == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims.Subject, nil
}

// issueTokenPair выпускает свежую пару access+refresh для пользователя.
// Сохранение refresh-токена на аккаунте — ответственность вызывающего кода:
// логин перезаписывает значение безусловно, ротация — условным UPDATE.
func (s *Service) issueTokenPair(user *models.User, now time.Time) (*models.TokenPair, error) {
	const op = "service.token.issueTokenPair"

	accessToken, err := s.issueToken(user.Email, PurposeAccess, s.cfg.AccessTokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.issueToken(user.Email, PurposeRefresh, s.cfg.RefreshTokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}
