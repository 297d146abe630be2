package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
)

// CheckoutRequest — форма оформления заказа
type CheckoutRequest struct {
	StreetAddress       string `json:"street_address" validate:"required,max=100"`
	ApartmentAddress    string `json:"apartment_address" validate:"required,max=100"`
	Country             string `json:"country" validate:"required,iso3166_1_alpha2"`
	Zip                 string `json:"zip" validate:"required,max=100"`
	SameShippingAddress bool   `json:"same_shipping_address"` // отдельный адрес доставки не хранится
	SaveInfo            bool   `json:"save_info"`
	PaymentOption       string `json:"payment_option" validate:"required"`
}

type CheckoutResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// PaymentRequest — подтверждение оплаты от клиента с идентификатором списания шлюза
type PaymentRequest struct {
	ChargeID string `json:"charge_id" validate:"required"`
}

type PaymentResponse struct {
	Message string          `json:"message"`
	Receipt service.Receipt `json:"receipt"`
}

// CheckoutHandler обрабатывает POST /api/checkout
func CheckoutHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CheckoutHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req CheckoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		redirect, err := checkoutService.Checkout(r.Context(), userID, service.CheckoutForm{
			StreetAddress:    req.StreetAddress,
			ApartmentAddress: req.ApartmentAddress,
			Country:          req.Country,
			Zip:              req.Zip,
			SaveInfo:         req.SaveInfo,
			PaymentOption:    req.PaymentOption,
		})
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, CheckoutResponse{RedirectURL: redirect})
	}
}

// PaymentHandler обрабатывает POST /api/payment/{method}
func PaymentHandler(log *slog.Logger, checkoutService service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PaymentHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req PaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		receipt, err := checkoutService.Pay(r.Context(), userID, chi.URLParam(r, "method"), req.ChargeID)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, PaymentResponse{Message: "Your order was successful!", Receipt: *receipt})
	}
}
