package models

import "time"

// TokenPair — пара access/refresh токенов, выдаваемая при логине и ротации.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}
