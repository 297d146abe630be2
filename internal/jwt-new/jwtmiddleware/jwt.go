package jwtmiddleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/storefront/internal/domain/models"
)

type contextKey string

const UserIDKey contextKey = "userID"

var (
	errMissingToken  = errors.New("missing token")
	errInvalidFormat = errors.New("invalid token format")
	errInvalidToken  = errors.New("invalid token")
	errInvalidClaims = errors.New("invalid token claims")
)

// NewJWTMiddleware создаёт middleware, которое пропускает только запросы с валидным JWT
func NewJWTMiddleware(secret string) func(http.Handler) http.Handler {
	if secret == "" {
		panic("JWT secret is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := parseRequest(r, secret)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDKey, userID)))
		})
	}
}

// NewOptionalJWTMiddleware кладёт userID в контекст, если токен валиден,
// иначе пропускает запрос как анонимный
func NewOptionalJWTMiddleware(secret string) func(http.Handler) http.Handler {
	if secret == "" {
		panic("JWT secret is not set")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := parseRequest(r, secret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDKey, userID)))
		})
	}
}

// parseRequest извлекает и проверяет токен из заголовка Authorization (формат: "Bearer <token>")
func parseRequest(r *http.Request, secret string) (int64, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, errInvalidFormat
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidClaims
	}

	// идентификатор пользователя хранится в поле "sub"
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errInvalidClaims
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, errInvalidClaims
	}
	return userID, nil
}

// FromContext извлекает userID из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// IdentityFromContext возвращает пользователя запроса; без userID в контексте — анонимного
func IdentityFromContext(ctx context.Context) models.Identity {
	if id, ok := FromContext(ctx); ok {
		return models.Authenticated(id)
	}
	return models.Anonymous()
}
