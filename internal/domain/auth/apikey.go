// Package auth models administrator API keys.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/go-faster/errors"
)

// ScopeAdmin grants access to menu management and order administration.
const ScopeAdmin = "admin"

// ErrNotFound is returned when no key matches a hash.
var ErrNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// HasScope reports whether the key was granted scope.
func (k *APIKeyInfo) HasScope(scope string) bool {
	return slices.Contains(k.Scopes, scope)
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// HashKey returns the HMAC-SHA256 of key under pepper. Only this value is
// stored; raw keys never reach the database.
func HashKey(pepper []byte, key string) []byte {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return mac.Sum(nil)
}

// HashKeyHex is HashKey rendered as lowercase hex.
func HashKeyHex(pepper []byte, key string) string {
	return hex.EncodeToString(HashKey(pepper, key))
}
