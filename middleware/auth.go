package middleware

import (
	"strings"
	"time"

	"github.com/fintrack/fintrack/logger"
	"github.com/fintrack/fintrack/repository"
	"github.com/fintrack/fintrack/response"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

/* ========================================================================
 * Auth Middleware
 * ========================================================================
 * Bearer token authentication. The verified token binds the request to
 * exactly one owner: the middleware rewrites the request context with
 * the owner identity, and everything downstream (repositories
 * included) operates inside that scope. No request parameter can name
 * an owner.
 * ======================================================================== */

const (
	authClaimsLocalKey = "auth_claims"

	defaultTokenTTL = 24 * time.Hour
)

// AuthConfig configures bearer token authentication.
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Secret   string        `yaml:"secret" mapstructure:"secret"`
	Issuer   string        `yaml:"issuer" mapstructure:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// Claims is the token payload. Owner is the tenant every database row
// of this user lives under.
type Claims struct {
	jwt.RegisteredClaims
	Owner  string   `json:"owner"`
	UserID string   `json:"user_id,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// GenerateToken issues a signed token for the given identity.
func GenerateToken(cfg *AuthConfig, owner, userID string, roles []string) (string, error) {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Owner:  strings.ToLower(strings.TrimSpace(owner)),
		UserID: userID,
		Roles:  roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken verifies a token and returns its claims.
func ParseToken(cfg *AuthConfig, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, err
	}
	if claims.Owner == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ClaimsFromContext extracts verified claims from fiber.Ctx.
func ClaimsFromContext(c fiber.Ctx) (*Claims, bool) {
	v := c.Locals(authClaimsLocalKey)
	if v == nil {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

// NewAuthMiddleware returns a Fiber middleware verifying bearer tokens
// and binding the owner to the request context.
func NewAuthMiddleware(cfg *AuthConfig, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.NewNop()
	}

	return func(c fiber.Ctx) error {
		if !cfg.Enabled {
			return c.Next()
		}
		if cfg.Secret == "" {
			log.Error("auth middleware misconfigured: missing secret")
			return response.InternalError(c, "auth misconfigured")
		}

		header := c.Get(fiber.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			return response.Unauthorized(c, "missing bearer token")
		}

		claims, err := ParseToken(cfg, strings.TrimSpace(tokenString))
		if err != nil {
			log.Warn("token verification failed",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			return response.Unauthorized(c, "invalid token")
		}

		c.Locals(authClaimsLocalKey, claims)
		c.SetContext(repository.WithOwner(c.Context(), repository.OwnerContext{
			Owner:  claims.Owner,
			UserID: claims.UserID,
			Roles:  claims.Roles,
		}))
		return c.Next()
	}
}
