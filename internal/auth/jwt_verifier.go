package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

var allowedAlgorithms = []string{"RS256", "ES256"}

// JWKSVerifier implements TokenVerifier using the identity provider's JWKS.
type JWKSVerifier struct {
	keyfunc jwt.Keyfunc
	issuer  string
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from jwksURL.
// Keys are cached and refreshed by keyfunc based on HTTP cache headers.
// An empty issuer disables the iss check.
func NewJWTVerifier(ctx context.Context, jwksURL, issuer string, logger *slog.Logger) (TokenVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL, "issuer", issuer)

	return newVerifier(jwks.Keyfunc, issuer, logger), nil
}

func newVerifier(kf jwt.Keyfunc, issuer string, logger *slog.Logger) *JWKSVerifier {
	return &JWKSVerifier{
		keyfunc: kf,
		issuer:  issuer,
		logger:  logger,
	}
}

// VerifyToken validates a JWT and extracts its claims
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(allowedAlgorithms)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.keyfunc, opts...)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, &domain.UnauthorizedError{Message: "invalid or expired token"}
	}

	// Prevent algorithm confusion attacks
	switch token.Method.Alg() {
	case "RS256", "ES256":
	default:
		v.logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg(), "allowed", allowedAlgorithms)
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, &domain.UnauthorizedError{Message: "token has no subject"}
	}

	return claims, nil
}

// Close is a no-op; keyfunc manages its own refresh goroutine lifetime
// through the context passed at construction.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
