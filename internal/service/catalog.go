package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/linemk/storefront/internal/cache"
	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/render"
	"github.com/linemk/storefront/internal/storage"
)

const (
	slidesFragmentKey     = "slides"
	categoriesFragmentKey = "categories"
)

// CatalogService отдаёт витрину: товары, категории и готовые html-фрагменты.
type CatalogService interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, slug string) (*models.Item, error)
	CategoryItems(ctx context.Context, slug string) (*CategoryPage, error)
	SlidesFragment(ctx context.Context) (string, error)
	CategoriesFragment(ctx context.Context) (string, error)
}

type CategoryPage struct {
	Category models.Category `json:"category"`
	Items    []models.Item   `json:"items"`
}

type catalogService struct {
	log         *slog.Logger
	catalogRepo storage.CatalogStorage
	fragments   cache.FragmentCache
	fragmentTTL time.Duration
}

func NewCatalogService(log *slog.Logger, catalogRepo storage.CatalogStorage, fragments cache.FragmentCache, fragmentTTL time.Duration) CatalogService {
	if fragments == nil {
		fragments = cache.Nop{}
	}
	return &catalogService{
		log:         log,
		catalogRepo: catalogRepo,
		fragments:   fragments,
		fragmentTTL: fragmentTTL,
	}
}

func (s *catalogService) ListItems(ctx context.Context) ([]models.Item, error) {
	const op = "service.CatalogService.ListItems"

	items, err := s.catalogRepo.ListItems(ctx)
	if err != nil {
		s.log.Error("failed to list items", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list items: %w", op, err)
	}
	return items, nil
}

func (s *catalogService) GetItem(ctx context.Context, slug string) (*models.Item, error) {
	const op = "service.CatalogService.GetItem"

	item, err := s.catalogRepo.GetItemBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// CategoryItems возвращает категорию по slug вместе с её активными товарами
func (s *catalogService) CategoryItems(ctx context.Context, slug string) (*CategoryPage, error) {
	const op = "service.CatalogService.CategoryItems"
	logger := s.log.With(slog.String("op", op), slog.String("slug", slug))

	category, err := s.catalogRepo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.catalogRepo.ListItemsByCategory(ctx, category.ID)
	if err != nil {
		logger.Error("failed to list category items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list category items: %w", op, err)
	}
	return &CategoryPage{Category: *category, Items: items}, nil
}

func (s *catalogService) SlidesFragment(ctx context.Context) (string, error) {
	const op = "service.CatalogService.SlidesFragment"

	return s.cachedFragment(ctx, op, slidesFragmentKey, func(w io.Writer) error {
		slides, err := s.catalogRepo.ListSlides(ctx)
		if err != nil {
			return err
		}
		return render.Slides(w, slides)
	})
}

func (s *catalogService) CategoriesFragment(ctx context.Context) (string, error) {
	const op = "service.CatalogService.CategoriesFragment"

	return s.cachedFragment(ctx, op, categoriesFragmentKey, func(w io.Writer) error {
		categories, err := s.catalogRepo.ListCategories(ctx)
		if err != nil {
			return err
		}
		return render.Categories(w, categories)
	})
}

// cachedFragment отдаёт фрагмент из кэша, а при промахе отрисовывает и кладёт его туда.
// Ошибки кэша только логируются.
func (s *catalogService) cachedFragment(ctx context.Context, op, key string, build func(w io.Writer) error) (string, error) {
	logger := s.log.With(slog.String("op", op), slog.String("key", key))

	cached, ok, err := s.fragments.Get(ctx, key)
	if err != nil {
		logger.Warn("failed to read fragment cache", slog.Any("error", err))
	}
	if ok {
		return cached, nil
	}

	var buf bytes.Buffer
	if err := build(&buf); err != nil {
		logger.Error("failed to build fragment", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to build fragment: %w", op, err)
	}

	fragment := buf.String()
	if err := s.fragments.Set(ctx, key, fragment, s.fragmentTTL); err != nil {
		logger.Warn("failed to write fragment cache", slog.Any("error", err))
	}
	return fragment, nil
}
