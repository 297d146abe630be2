package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/linemk/storefront/internal/service"
)

// AuthRequest — вход покупателя; неизвестный username регистрируется с этим паролем
type AuthRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150,excludesall= /"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AuthResponse — токен для корзины и оформления заказа
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

var validate = validator.New()

// AuthHandler обрабатывает POST /api/auth: вход или регистрация покупателя
func AuthHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid login request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Info("invalid login request", slog.Any("error", err))
			http.Error(w, "username must be 3-150 characters without spaces or slashes, password at least 8", http.StatusBadRequest)
			return
		}
		logger = logger.With(slog.String("username", req.Username))

		token, err := authService.Login(r.Context(), req.Username, req.Password)
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Info("customer login rejected")
			http.Error(w, "invalid username or password", http.StatusUnauthorized)
			return
		}
		if err != nil {
			writeError(w, logger, err)
			return
		}

		logger.Info("customer logged in")
		writeJSON(w, logger, http.StatusOK, AuthResponse{Token: token, Username: req.Username})
	}
}
