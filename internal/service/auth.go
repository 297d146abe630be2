package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	security "github.com/linemk/storefront/internal/jwt-new"
	"github.com/linemk/storefront/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	tokenTTL  time.Duration
	jwtSecret string
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration, jwtSecret string) *AuthService {
	return &AuthService{
		log:       log,
		userRepo:  userRepo,
		tokenTTL:  tokenTTL,
		jwtSecret: jwtSecret,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Login осуществляет аутентификацию пользователя.
// Если пользователь не найден, он создаётся (пароль хэшируется через bcrypt).
// Если найден, введённый пароль сравнивается с сохранённым хэшем.
// После успешной проверки выдаётся JWT-токен.
func (a *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "service.AuthService.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		logger.Info("user not found, creating new user")
		user, err = a.register(ctx, username, password)
		if err != nil {
			logger.Error("failed to register user", slog.Any("error", err))
			return "", fmt.Errorf("%s: %w", op, err)
		}
	case err != nil:
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	default:
		if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
			logger.Warn("invalid password")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL, a.jwtSecret)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}

func (a *AuthService) register(ctx context.Context, username, password string) (*models.User, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := a.userRepo.CreateUser(ctx, &models.User{Username: username, PassHash: passHash})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
