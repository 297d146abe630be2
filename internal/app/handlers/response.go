package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
)

// MessageResponse — ответ с текстом для пользователя
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeHTML(w http.ResponseWriter, logger *slog.Logger, fragment string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(fragment)); err != nil {
		logger.Error("failed to write fragment", slog.Any("error", err))
	}
}

// writeError переводит доменную ошибку в HTTP-статус и понятное сообщение
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, message := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, storage.ErrItemNotFound):
		status, message = http.StatusNotFound, "item not found"
	case errors.Is(err, storage.ErrCategoryNotFound):
		status, message = http.StatusNotFound, "category not found"
	case errors.Is(err, service.ErrNoActiveOrder):
		status, message = http.StatusNotFound, "You do not have an active order"
	case errors.Is(err, service.ErrItemNotInCart):
		status, message = http.StatusBadRequest, "This item was not in your cart"
	case errors.Is(err, service.ErrInvalidPaymentOption):
		status, message = http.StatusBadRequest, "Invalid payment option selected"
	case errors.Is(err, service.ErrNoBillingAddress):
		status, message = http.StatusBadRequest, "You have not added a billing address"
	case errors.Is(err, service.ErrEmptyCart):
		status, message = http.StatusBadRequest, "Your cart is empty"
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
	} else {
		logger.Info("request rejected", slog.Any("error", err))
	}
	http.Error(w, message, status)
}
