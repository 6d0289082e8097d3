package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/cloo-solutions/diligence/internal/domain"
)

// StaticKeyAuth accepts a single pre-shared bearer token
type StaticKeyAuth struct {
	hash [sha256.Size]byte
}

// NewStaticKeyAuth creates a validator for the given token
func NewStaticKeyAuth(token string) *StaticKeyAuth {
	return &StaticKeyAuth{hash: hashToken(token)}
}

// ValidateAPIKey checks a presented token against the configured one
func (a *StaticKeyAuth) ValidateAPIKey(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrInvalidAPIKey
	}
	presented := hashToken(token)
	if subtle.ConstantTimeCompare(presented[:], a.hash[:]) != 1 {
		return domain.ErrInvalidAPIKey
	}
	return nil
}

// digests have equal length, as ConstantTimeCompare requires
func hashToken(token string) [sha256.Size]byte {
	return sha256.Sum256([]byte(token))
}
