// users.go - профиль пользователя, синхронизируемый из claims токена.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/goclinic/internal/domain/model"
	"github.com/bigkaa/goclinic/internal/repository"
)

// Identity - данные вызывающего пользователя из JWT.
type Identity struct {
	Subject string
	Name    string
	Email   string
	CRM     *string
}

// UserService - сервис профилей пользователей.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// Get возвращает профиль пользователя id.
// Пользователь может читать только собственный профиль. Профиль создаётся
// при первом обращении и обновляется, если claims токена изменились.
func (s *UserService) Get(ctx context.Context, caller Identity, id string) (*model.User, error) {
	if caller.Subject == "" || id != caller.Subject {
		return nil, ErrForbidden
	}

	u, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		if sameProfile(u, caller) {
			return u, nil
		}
	case errors.Is(err, repository.ErrNotFound):
		u = &model.User{ID: id}
	default:
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	u.Name = caller.Name
	u.Email = caller.Email
	u.CRM = caller.CRM
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, fmt.Errorf("сохранение пользователя: %w", err)
	}

	s.logger.Info("Профиль пользователя синхронизирован",
		slog.String("user_id", id),
		slog.Bool("has_crm", u.HasCRM()),
	)
	return u, nil
}

func sameProfile(u *model.User, caller Identity) bool {
	if u.Name != caller.Name || u.Email != caller.Email {
		return false
	}
	switch {
	case u.CRM == nil && caller.CRM == nil:
		return true
	case u.CRM != nil && caller.CRM != nil:
		return *u.CRM == *caller.CRM
	default:
		return false
	}
}
