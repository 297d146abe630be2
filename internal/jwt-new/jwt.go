package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/storefront/internal/domain/models"
)

var ErrEmptySecret = errors.New("jwt secret is empty")

// NewToken генерирует JWT-токен для указанного пользователя с заданным временем жизни.
func NewToken(ctx context.Context, user *models.User, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", user.ID),
		"username": user.Username,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
