package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/storefront/internal/domain/models"
)

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrCategoryNotFound = errors.New("category not found")
)

const itemColumns = `i.id, i.title, i.price, i.discount_price, i.category_id, i.label, i.slug, i.stock_no, i.description, i.image, i.is_active`

// CatalogStorage описывает чтение каталога: категорий, товаров и слайдов.
type CatalogStorage interface {
	// ListItems возвращает активные товары в порядке добавления.
	ListItems(ctx context.Context) ([]models.Item, error)
	// ListItemsByCategory возвращает активные товары категории.
	ListItemsByCategory(ctx context.Context, categoryID int64) ([]models.Item, error)
	GetItemBySlug(ctx context.Context, slug string) (*models.Item, error)
	// GetItemBySlugTx получает товар внутри транзакции.
	GetItemBySlugTx(ctx context.Context, tx *sql.Tx, slug string) (*models.Item, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListSlides(ctx context.Context) ([]models.Slide, error)
}

type catalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) CatalogStorage {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items i
		WHERE i.is_active
		ORDER BY i.id`
	return r.queryItems(ctx, query)
}

func (r *catalogRepository) ListItemsByCategory(ctx context.Context, categoryID int64) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items i
		WHERE i.is_active AND i.category_id = $1
		ORDER BY i.id`
	return r.queryItems(ctx, query, categoryID)
}

func (r *catalogRepository) GetItemBySlug(ctx context.Context, slug string) (*models.Item, error) {
	return getItemBySlug(ctx, r.db, slug)
}

func (r *catalogRepository) GetItemBySlugTx(ctx context.Context, tx *sql.Tx, slug string) (*models.Item, error) {
	return getItemBySlug(ctx, tx, slug)
}

func getItemBySlug(ctx context.Context, q querier, slug string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + `
		FROM items i
		WHERE i.slug = $1`
	item, err := scanItem(q.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepository) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanItem(row scanner) (models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.Title, &item.Price, &item.DiscountPrice, &item.CategoryID,
		&item.Label, &item.Slug, &item.StockNo, &item.Description, &item.Image, &item.IsActive,
	)
	return item, err
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, title, slug, description, image, is_active
		FROM categories
		WHERE is_active
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.Image, &c.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *catalogRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c := &models.Category{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, title, slug, description, image, is_active FROM categories WHERE slug = $1", slug)
	if err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.Image, &c.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *catalogRepository) ListSlides(ctx context.Context) ([]models.Slide, error) {
	query := `SELECT id, caption1, caption2, link, image, is_active
		FROM slides
		WHERE is_active
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query slides: %w", err)
	}
	defer rows.Close()

	var slides []models.Slide
	for rows.Next() {
		var s models.Slide
		if err := rows.Scan(&s.ID, &s.Caption1, &s.Caption2, &s.Link, &s.Image, &s.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan slide: %w", err)
		}
		slides = append(slides, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slides, nil
}
