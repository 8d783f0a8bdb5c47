package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTMiddleware authenticates a request from its bearer access token and
// stores the caller's id in c.Locals("user_id"). That local is the only actor
// identity protected handlers trust: posts, engagement, social, and uploads
// all read it rather than an id from the request body.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromHeader(c.Get("Authorization"), secretBytes)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

// userIDFromHeader extracts the bearer token and resolves it to a user id.
func userIDFromHeader(header string, secret []byte) (string, error) {
	token := bearerFromHeader(header)
	if token == "" {
		return "", errMissingBearer
	}

	parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", errTokenInvalid
	}
	return claims.UserID, nil
}

var (
	errMissingBearer = errors.New("missing bearer token")
	errTokenInvalid  = errors.New("token invalid")
)

// bearerFromHeader returns the token from an "Authorization: Bearer x" header,
// shared with the /auth/jwt/verify handler.
func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
