package handler

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/foodking/internal/domain/auth"
)

// APIKeyHeader carries the admin API key.
const APIKeyHeader = "api_key"

type apiKeyCtxKey struct{}

// APIKeyFromContext returns the key that authenticated the request, if any.
func APIKeyFromContext(ctx context.Context) (*auth.APIKeyInfo, bool) {
	info, ok := ctx.Value(apiKeyCtxKey{}).(*auth.APIKeyInfo)
	return info, ok
}

// SecurityHandler authenticates admin requests via HMAC-SHA256 hashed API
// keys.
type SecurityHandler struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurityHandler creates a SecurityHandler with the given API key
// repository and HMAC pepper.
func NewSecurityHandler(apikeys auth.Repository, pepper []byte) *SecurityHandler {
	return &SecurityHandler{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Authenticate hashes key with the pepper, looks the hash up and compares it
// in constant time with the stored one. The key must carry the admin scope.
func (s *SecurityHandler) Authenticate(ctx context.Context, key string) (*auth.APIKeyInfo, error) {
	if key == "" {
		return nil, errUnauthorized
	}
	hash := auth.HashKey(s.pepper, key)

	info, err := s.apikeys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		if !errors.Is(err, auth.ErrNotFound) {
			zctx.From(ctx).Error("API key lookup failed", zap.Error(err))
		}
		return nil, errUnauthorized
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, errUnauthorized
	}
	if !info.HasScope(auth.ScopeAdmin) {
		return nil, errUnauthorized
	}
	return info, nil
}

// RequireAdmin rejects requests without a valid admin key with 401. The key
// is read from the api_key header or an "Authorization: Bearer" header.
func (s *SecurityHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := s.Authenticate(r.Context(), requestKey(r))
		if err != nil {
			fail(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), apiKeyCtxKey{}, info)
		ctx = zctx.With(ctx, zap.String("api_key_id", info.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
