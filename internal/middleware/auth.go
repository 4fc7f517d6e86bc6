// Package middleware provides the HTTP middleware shared by every route group.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/andriinero/inkspace-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token issuer and audience written into and required on every session token.
const (
	TokenIssuer   = "inkspace-api"
	TokenAudience = "inkspace-client"
)

// LocalUserID is the fiber Locals key holding the authenticated user id.
const LocalUserID = "userID"

// Claims is the session token payload.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("authorization required")

// ParseToken validates an HS256 token signed with secret and returns its
// claims and the user id from the subject.
func ParseToken(secret, tokenString string) (*Claims, uint, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, 0, errors.New("invalid or expired token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, 0, errors.New("invalid user id in token")
	}
	return claims, uint(userID), nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", errMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

func attachIdentity(c *fiber.Ctx, userID uint) {
	c.Locals(LocalUserID, userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// authenticate resolves the caller from the bearer token.
func authenticate(c *fiber.Ctx, secret string) (uint, *models.AppError) {
	tokenString, err := bearerToken(c)
	if err != nil {
		return 0, models.NewUnauthorizedError("Authorization required")
	}
	_, userID, err := ParseToken(secret, tokenString)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}
	return userID, nil
}

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, authErr := authenticate(c, secret)
		if authErr != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, authErr)
		}
		attachIdentity(c, userID)
		return c.Next()
	}
}

// AccountLookup reports whether a user still exists.
type AccountLookup func(ctx context.Context, userID uint) (bool, error)

// RequireAccount is AuthRequired that also rejects tokens whose user has
// been deleted since the token was issued.
func RequireAccount(secret string, exists AccountLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, authErr := authenticate(c, secret)
		if authErr != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, authErr)
		}
		ok, err := exists(c.UserContext(), userID)
		if err != nil {
			Logger.ErrorContext(c.UserContext(), "account lookup failed", "user_id", userID, "error", err.Error())
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		}
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}
		attachIdentity(c, userID)
		return c.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through otherwise.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c)
		if err != nil {
			return c.Next()
		}
		if _, userID, err := ParseToken(secret, tokenString); err == nil {
			attachIdentity(c, userID)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok && id != 0
}
