package postgres

import (
	"context"
	"errors"

	"github.com/boardhall/lobby-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepository — identity lookup: id -> учётная запись.
// Таблицей users владеет auth-сервис, здесь только чтение.
type UserRepository struct {
	q querier
}

func NewUserRepositoryFromPool(q querier) *UserRepository {
	return &UserRepository{q: q}
}

func NewUserRepositoryFromTx(tx pgx.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.q.QueryRow(ctx,
		`SELECT id, display_name, avatar_url, created_at FROM users WHERE id=$1`,
		id).Scan(&u.ID, &u.DisplayName, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
