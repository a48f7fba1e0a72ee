package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/bigkaa/goclinic/internal/domain/model"
)

func TestUserRepo_Upsert(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	u := &model.User{ID: "user-1", Name: "Dra. Helena", Email: "helena@clinic.lan", CRM: strPtr("123456-SP")}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, u.Name, u.Email, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	if err := repo.Upsert(context.Background(), u); err != nil {
		t.Fatalf("Upsert() вернул ошибку: %v", err)
	}
	if !u.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, ожидается %v", u.UpdatedAt, now)
	}
	expectationsMet(t, mock)
}

func TestUserRepo_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "crm", "created_at", "updated_at"}).
			AddRow("user-1", "Dra. Helena", "helena@clinic.lan", strPtr("123456-SP"), now, now))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	u, err := repo.GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByID() вернул ошибку: %v", err)
	}
	if !u.HasCRM() {
		t.Error("HasCRM() = false, ожидается true")
	}

	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID(ghost) = %v, ожидается ErrNotFound", err)
	}
	expectationsMet(t, mock)
}
