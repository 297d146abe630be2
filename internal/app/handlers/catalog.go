package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/storefront/internal/service"
)

// ItemsHandler обрабатывает GET /api/items — товары главной страницы
func ItemsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ItemsHandler"
		logger := log.With(slog.String("op", op))

		items, err := catalogService.ListItems(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, items)
	}
}

// ItemHandler обрабатывает GET /api/items/{slug}
func ItemHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ItemHandler"
		logger := log.With(slog.String("op", op))

		slug := chi.URLParam(r, "slug")
		if slug == "" {
			logger.Error("slug parameter is missing")
			http.Error(w, "slug parameter is required", http.StatusBadRequest)
			return
		}

		item, err := catalogService.GetItem(r.Context(), slug)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, item)
	}
}

// CategoryHandler обрабатывает GET /api/categories/{slug}
func CategoryHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CategoryHandler"
		logger := log.With(slog.String("op", op))

		slug := chi.URLParam(r, "slug")
		if slug == "" {
			logger.Error("slug parameter is missing")
			http.Error(w, "slug parameter is required", http.StatusBadRequest)
			return
		}

		page, err := catalogService.CategoryItems(r.Context(), slug)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, logger, http.StatusOK, page)
	}
}

func SlidesFragmentHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.SlidesFragmentHandler"))

		fragment, err := catalogService.SlidesFragment(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeHTML(w, logger, fragment)
	}
}

func CategoriesFragmentHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.CategoriesFragmentHandler"))

		fragment, err := catalogService.CategoriesFragment(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeHTML(w, logger, fragment)
	}
}
