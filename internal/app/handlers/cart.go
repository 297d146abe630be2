package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/render"
	"github.com/linemk/storefront/internal/service"
)

var cartMessages = map[service.CartAction]string{
	service.ActionAdded:           "This item was added to your cart.",
	service.ActionQuantityUpdated: "This item quantity was updated.",
	service.ActionRemoved:         "This item was removed from your cart.",
}

// CartSummaryHandler обрабатывает GET /api/cart. Доступен и анонимному пользователю.
func CartSummaryHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartSummaryHandler"
		logger := log.With(slog.String("op", op))

		summary, err := cartService.Summary(r.Context(), jwtmiddleware.IdentityFromContext(r.Context()))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, summary)
	}
}

// CartFragmentHandler обрабатывает GET /fragments/cart — html превью корзины для шапки
func CartFragmentHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CartFragmentHandler"
		logger := log.With(slog.String("op", op))

		summary, err := cartService.Summary(r.Context(), jwtmiddleware.IdentityFromContext(r.Context()))
		if err != nil {
			writeError(w, logger, err)
			return
		}

		var buf bytes.Buffer
		if err := render.CartPreview(&buf, summary.Preview); err != nil {
			writeError(w, logger, err)
			return
		}
		writeHTML(w, logger, buf.String())
	}
}

// AddToCartHandler обрабатывает POST /api/cart/{slug}
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := log.With(slog.String("op", op))

		userID, slug, ok := cartRequest(w, r, logger)
		if !ok {
			return
		}

		action, err := cartService.AddToCart(r.Context(), userID, slug)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: cartMessages[action]})
	}
}

// RemoveFromCartHandler обрабатывает DELETE /api/cart/{slug}
func RemoveFromCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveFromCartHandler"
		logger := log.With(slog.String("op", op))

		userID, slug, ok := cartRequest(w, r, logger)
		if !ok {
			return
		}

		if err := cartService.RemoveFromCart(r.Context(), userID, slug); err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: cartMessages[service.ActionRemoved]})
	}
}

// RemoveSingleItemHandler обрабатывает DELETE /api/cart/{slug}/single
func RemoveSingleItemHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveSingleItemHandler"
		logger := log.With(slog.String("op", op))

		userID, slug, ok := cartRequest(w, r, logger)
		if !ok {
			return
		}

		action, err := cartService.RemoveSingleItem(r.Context(), userID, slug)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: cartMessages[action]})
	}
}

// OrderSummaryHandler обрабатывает GET /api/order-summary
func OrderSummaryHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderSummaryHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		summary, err := cartService.OrderSummary(r.Context(), userID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, summary)
	}
}

// cartRequest достаёт пользователя из контекста и slug товара из URL.
// При ошибке ответ уже записан.
func cartRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, string, bool) {
	userID, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("userID not found in context")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, "", false
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		logger.Error("slug parameter is missing")
		http.Error(w, "slug parameter is required", http.StatusBadRequest)
		return 0, "", false
	}
	return userID, slug, true
}
