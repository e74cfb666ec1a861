package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"spacos/internal/auth"
	"spacos/internal/config"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/uuid"
)

const (
	accessTokenExpiry  = 15 * time.Minute
	refreshTokenExpiry = 7 * 24 * time.Hour

	// AuthContextKey is the gin context key holding the caller's auth.Context.
	AuthContextKey = "authContext"

	apiKeyPrefix = "spk_"
)

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID    string        `json:"user_id"`
	OrgID     string        `json:"org_id"`
	Roles     []models.Role `json:"roles"`
	Email     string        `json:"email"`
	TokenType string        `json:"token_type"`
	jwt.RegisteredClaims
}

// APIKeyAuthenticator resolves an organization API key to an identity.
type APIKeyAuthenticator interface {
	Authenticate(ctx context.Context, secret string) (auth.Context, error)
}

func generateToken(user *models.User, member *models.TeamMember, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    user.ID,
		OrgID:     member.OrganizationID,
		Roles:     []models.Role{member.Role},
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "spacos-api",
			Subject:   user.ID,
			ID:        uuid.New(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// GenerateAccessToken generates a short-lived JWT access token scoped to
// one organization membership.
func GenerateAccessToken(user *models.User, member *models.TeamMember) (string, error) {
	return generateToken(user, member, "access", accessTokenExpiry)
}

// GenerateRefreshToken generates a long-lived JWT refresh token.
func GenerateRefreshToken(user *models.User, member *models.TeamMember) (string, error) {
	return generateToken(user, member, "refresh", refreshTokenExpiry)
}

func parseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ValidateRefreshToken parses and validates a refresh token JWT.
// Returns the claims if valid, or an error if the token is invalid,
// expired, or not a refresh token.
func ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	claims, err := parseToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	if claims.TokenType != "refresh" {
		return nil, fmt.Errorf("token is not a refresh token")
	}
	return claims, nil
}

// HashToken returns the SHA-256 hex digest of a token string.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func abortWith(c *gin.Context, appErr *apperrors.AppError, message string) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{"code": appErr.Code, "message": message},
	})
}

// AuthMiddleware accepts a JWT access token or an organization API key as
// the bearer credential and stores the resulting auth.Context on the gin
// context. keys may be nil, in which case API keys are rejected.
func AuthMiddleware(keys APIKeyAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperrors.ErrUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, apperrors.ErrUnauthorized, "Invalid authorization header format")
			return
		}
		credential := parts[1]

		var ac auth.Context
		if strings.HasPrefix(credential, apiKeyPrefix) {
			if keys == nil {
				abortWith(c, apperrors.ErrInvalidToken, "Invalid or expired token")
				return
			}
			resolved, err := keys.Authenticate(c.Request.Context(), credential)
			if err != nil {
				var appErr *apperrors.AppError
				if errors.As(err, &appErr) && appErr.StatusCode != http.StatusUnauthorized {
					abortWith(c, appErr, appErr.Message)
					return
				}
				abortWith(c, apperrors.ErrInvalidToken, "Invalid or expired token")
				return
			}
			ac = resolved
			c.Set("authMethod", "api_key")
		} else {
			claims, err := parseToken(credential)
			// Refresh tokens are not accepted as access tokens.
			if err != nil || claims.TokenType == "refresh" {
				abortWith(c, apperrors.ErrInvalidToken, "Invalid or expired token")
				return
			}
			ac = auth.New(claims.UserID, claims.OrgID, claims.Roles...)
			c.Set("email", claims.Email)
			c.Set("authMethod", "jwt")
		}

		if err := ac.Validate(); err != nil {
			abortWith(c, apperrors.ErrInvalidToken, "Invalid or expired token")
			return
		}

		c.Set(AuthContextKey, ac)
		c.Set("userID", ac.UserID)
		c.Set("orgID", ac.OrgID)
		c.Next()
	}
}

// GetAuthContext returns the auth.Context stored by AuthMiddleware.
func GetAuthContext(c *gin.Context) (auth.Context, bool) {
	v, ok := c.Get(AuthContextKey)
	if !ok {
		return auth.Context{}, false
	}
	ac, ok := v.(auth.Context)
	return ac, ok
}
