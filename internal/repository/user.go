package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goclinic/internal/domain/model"
)

// UserRepository - доступ к таблице users.
type UserRepository interface {
	// GetByID возвращает пользователя по subject.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// Upsert создаёт пользователя или обновляет имя, e-mail и CRM.
	Upsert(ctx context.Context, u *model.User) error
}

type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, crm, created_at, updated_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CRM, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) Upsert(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, name, email, crm)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, crm = EXCLUDED.crm, updated_at = NOW()
		RETURNING created_at, updated_at`

	if err := r.db.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.CRM).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("ошибка сохранения пользователя: %w", err)
	}
	return nil
}
