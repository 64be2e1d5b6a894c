package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-contacts-api/internal/config"
	"github.com/pribylovaa/go-contacts-api/internal/models"
	"github.com/pribylovaa/go-contacts-api/mocks"
)

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "unit-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		VerifyTokenTTL:  24 * time.Hour,
		Issuer:          "contacts-api",
		Audience:        []string{"contacts-web"},
	}
}

func newServiceWithMock(t *testing.T) (*Service, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockSt := mocks.NewMockStorage(ctrl)
	svc := New(mockSt, mocks.NewMockNotifier(ctrl), testAuthCfg())
	return svc, mockSt, ctrl
}

func TestIssueToken_AndDecode_OK(t *testing.T) {
	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	now := time.Now().UTC()
	subject := "user@example.com"

	for _, purpose := range []TokenPurpose{PurposeAccess, PurposeRefresh, PurposeEmailVerification, PurposePasswordReset} {
		signed, err := svc.issueToken(subject, purpose, time.Minute, now)
		require.NoError(t, err)

		got, err := svc.decodeToken(signed, purpose)
		require.NoError(t, err)
		require.Equal(t, subject, got)
	}
}

func TestDecodeToken_PurposeMismatch(t *testing.T) {
	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	now := time.Now().UTC()

	// refresh-токен не принимается там, где ждут access, и наоборот.
	refresh, err := svc.issueToken("user@example.com", PurposeRefresh, time.Minute, now)
	require.NoError(t, err)

	_, err = svc.decodeToken(refresh, PurposeAccess)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)

	access, err := svc.issueToken("user@example.com", PurposeAccess, time.Minute, now)
	require.NoError(t, err)

	_, err = svc.decodeToken(access, PurposeRefresh)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.decodeToken(access, PurposeEmailVerification)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeToken_Expired(t *testing.T) {
	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	// ttl в прошлом с запасом больше leeway парсера.
	signed, err := svc.issueToken("user@example.com", PurposeAccess, -time.Minute, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.decodeToken(signed, PurposeAccess)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeToken_Garbage(t *testing.T) {
	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.decodeToken(raw, PurposeAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestDecodeToken_WrongAlg_WrongIssuer_WrongAudience(t *testing.T) {
	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	secret := []byte(testAuthCfg().JWTSecret)
	now := time.Now().UTC()

	t.Run("wrong alg", func(t *testing.T) {
		claims := jwt.MapClaims{
			"purpose": string(PurposeAccess),
			"iss":     testAuthCfg().Issuer,
			"sub":     "user@example.com",
			"aud":     testAuthCfg().Audience,
			"exp":     now.Add(time.Minute).Unix(),
			"iat":     now.Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.decodeToken(signed, PurposeAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := jwt.MapClaims{
			"purpose": string(PurposeAccess),
			"iss":     "another-issuer",
			"sub":     "user@example.com",
			"aud":     testAuthCfg().Audience,
			"exp":     now.Add(time.Minute).Unix(),
			"iat":     now.Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.decodeToken(signed, PurposeAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := jwt.MapClaims{
			"purpose": string(PurposeAccess),
			"iss":     testAuthCfg().Issuer,
			"sub":     "user@example.com",
			"aud":     []string{"unexpected-aud"},
			"exp":     now.Add(time.Minute).Unix(),
			"iat":     now.Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.decodeToken(signed, PurposeAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing purpose", func(t *testing.T) {
		claims := jwt.MapClaims{
			"iss": testAuthCfg().Issuer,
			"sub": "user@example.com",
			"aud": testAuthCfg().Audience,
			"exp": now.Add(time.Minute).Unix(),
			"iat": now.Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString(secret)
		require.NoError(t, err)

		_, err = svc.decodeToken(signed, PurposeAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		claims := jwt.MapClaims{
			"purpose": string(PurposeAccess),
			"iss":     testAuthCfg().Issuer,
			"sub":     "user@example.com",
			"aud":     testAuthCfg().Audience,
			"exp":     now.Add(time.Minute).Unix(),
			"iat":     now.Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte("another-secret"))
		require.NoError(t, err)

		_, err = svc.decodeToken(signed, PurposeAccess)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssueTokenPair_OK(t *testing.T) {
	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:    uuid.New(),
		Email: "user@example.com",
	}
	now := time.Now().UTC()

	pair, err := svc.issueTokenPair(user, now)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.WithinDuration(t, now.Add(svc.cfg.AccessTokenTTL), pair.AccessExpiresAt, time.Second)

	// Токены пары строго разделены по назначению.
	subject, err := svc.decodeToken(pair.AccessToken, PurposeAccess)
	require.NoError(t, err)
	require.Equal(t, user.Email, subject)

	subject, err = svc.decodeToken(pair.RefreshToken, PurposeRefresh)
	require.NoError(t, err)
	require.Equal(t, user.Email, subject)

	_, err = svc.decodeToken(pair.RefreshToken, PurposeAccess)
	require.Error(t, err)
}

func TestIssueTokenPair_UniquePerIssue(t *testing.T) {
	svc, _, ctrl := newServiceWithMock(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:    uuid.New(),
		Email: "user@example.com",
	}
	now := time.Now().UTC()

	// Две пары, выпущенные в один и тот же момент, не совпадают:
	// jti делает каждый выпуск уникальным, иначе ротация refresh-токена
	// была бы неотличима от повторного использования старого.
	a, err := svc.issueTokenPair(user, now)
	require.NoError(t, err)
	b, err := svc.issueTokenPair(user, now)
	require.NoError(t, err)

	require.NotEqual(t, a.AccessToken, b.AccessToken)
	require.NotEqual(t, a.RefreshToken, b.RefreshToken)
}
