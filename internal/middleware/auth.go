package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"promptvault/internal/auth"
	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/services"
	vaultSvc "promptvault/internal/domain/services/vault"
	"promptvault/internal/httputil"
	"promptvault/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Authenticator resolves bearer credentials to an Identity.
type Authenticator struct {
	verifier     auth.TokenVerifier
	tenants      services.TenantService
	apiKeys      vaultSvc.APIKeyService
	apiKeyPrefix string
	logger       *slog.Logger
}

// NewAuthenticator wires both credential kinds. verifier may be nil, in
// which case only API keys are accepted.
func NewAuthenticator(
	verifier auth.TokenVerifier,
	tenants services.TenantService,
	apiKeys vaultSvc.APIKeyService,
	apiKeyPrefix string,
	logger *slog.Logger,
) *Authenticator {
	return &Authenticator{
		verifier:     verifier,
		tenants:      tenants,
		apiKeys:      apiKeys,
		apiKeyPrefix: apiKeyPrefix,
		logger:       logger,
	}
}

// Middleware requires a bearer token on every route except /health and
// CORS preflights.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			httputil.RespondError(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		identity, err := a.authenticate(r, token)
		if err != nil {
			var httpErr domain.HTTPError
			if errors.As(err, &httpErr) {
				httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
				return
			}
			a.logger.ErrorContext(r.Context(), "authentication failed", "error", err)
			httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := telemetry.WithLogFields(r.Context(), telemetry.LogFields{
			OrganizationID: identity.OrganizationID,
			UserID:         identity.UserID,
		})
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("enduser.id", identity.UserID),
			attribute.String("promptvault.organization_id", identity.OrganizationID),
			attribute.String("promptvault.auth_method", string(identity.Method)),
		)

		next.ServeHTTP(w, httputil.WithIdentity(r.WithContext(ctx), identity))
	})
}

func (a *Authenticator) authenticate(r *http.Request, token string) (*models.Identity, error) {
	if auth.IsAPIKey(token, a.apiKeyPrefix) {
		return a.apiKeys.Authenticate(r.Context(), token)
	}

	if a.verifier == nil {
		return nil, &domain.UnauthorizedError{Message: "session tokens are not accepted; use an API key"}
	}

	claims, err := a.verifier.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	return a.tenants.ResolveSession(r.Context(), claims)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
