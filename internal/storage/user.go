package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/storefront/internal/domain/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// код ошибки postgres при нарушении уникальности
const uniqueViolation = "23505"

type UserStorage interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, username, pass_hash FROM users WHERE username = $1", username)
	return scanUser(row)
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, username, pass_hash FROM users WHERE id = $1", id)
	return scanUser(row)
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (username, pass_hash) VALUES ($1, $2) RETURNING id",
		user.Username, user.PassHash,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return user, nil
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Username, &user.PassHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
