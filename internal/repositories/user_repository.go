package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
    INSERT INTO users (name, email, password_hash, role, created_at)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
    `
	err := r.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `
    SELECT id, name, email, password_hash, role, created_at, updated_at
    FROM users
    WHERE email = $1
    `
	return r.scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := `
    SELECT id, name, email, password_hash, role, created_at, updated_at
    FROM users
    WHERE id = $1
    `
	return r.scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) scanUser(row *sql.Row) (models.User, error) {
	var (
		user      models.User
		updatedAt sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrUserNotFound
		}
		return models.User{}, err
	}
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}
	return user, nil
}
