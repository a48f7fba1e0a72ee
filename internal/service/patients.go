// patients.go - регистрация, чтение и удаление пациентов.
// Каждый врач видит только своих пациентов (owner_id = subject токена).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bigkaa/goclinic/internal/domain/document"
	"github.com/bigkaa/goclinic/internal/domain/model"
	"github.com/bigkaa/goclinic/internal/repository"
	"github.com/bigkaa/goclinic/internal/validation"
)

// PatientService - сервис карточек пациентов.
type PatientService struct {
	repo     repository.PatientRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewPatientService создаёт сервис пациентов.
func NewPatientService(repo repository.PatientRepository, logger *slog.Logger) *PatientService {
	return &PatientService{
		repo:     repo,
		validate: validation.Validator(),
		logger:   logger.With(slog.String("component", "patient_service")),
	}
}

// patientRecord - нормализованные данные пациента перед сохранением.
type patientRecord struct {
	Name     string  `json:"name" validate:"min=3,max=50"`
	Age      int     `json:"age" validate:"min=0,max=120"`
	Document string  `json:"document" validate:"document"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
}

// normalize обрезает имя и оставляет в документе и телефоне только цифры.
// Пустой телефон превращается в nil.
func normalize(in model.PatientInput) patientRecord {
	rec := patientRecord{
		Name:     strings.TrimSpace(in.Name),
		Age:      in.Age,
		Document: document.Digits(in.Document),
	}
	if in.Phone != nil {
		if d := document.Digits(*in.Phone); d != "" {
			rec.Phone = &d
		} else if strings.TrimSpace(*in.Phone) != "" {
			// Телефон без цифр - оставляем как есть, правило phone его отклонит
			raw := *in.Phone
			rec.Phone = &raw
		}
	}
	return rec
}

// Register проверяет и сохраняет нового пациента.
// Документ и телефон сохраняются только цифрами.
func (s *PatientService) Register(ctx context.Context, ownerID string, in model.PatientInput) (*model.Patient, error) {
	rec := normalize(in)
	if err := s.validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, describeValidation(err))
	}

	p := &model.Patient{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		Name:     rec.Name,
		Age:      rec.Age,
		Document: rec.Document,
		Phone:    rec.Phone,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: пациент с документом %s уже зарегистрирован", ErrConflict, document.Label(p.Document))
		}
		return nil, fmt.Errorf("сохранение пациента: %w", err)
	}

	s.logger.Info("Пациент зарегистрирован",
		slog.String("patient_id", p.ID),
		slog.String("owner_id", ownerID),
		slog.String("document_kind", document.KindOf(p.Document).String()),
	)
	return p, nil
}

// List возвращает страницу пациентов владельца и общее количество.
func (s *PatientService) List(ctx context.Context, ownerID string, limit, offset int) ([]*model.Patient, int, error) {
	patients, err := s.repo.List(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка пациентов: %w", err)
	}

	total, err := s.repo.Count(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт пациентов: %w", err)
	}

	return patients, total, nil
}

// Get возвращает пациента владельца по ID.
func (s *PatientService) Get(ctx context.Context, ownerID, id string) (*model.Patient, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение пациента: %w", err)
	}
	return p, nil
}

// Delete удаляет пациента владельца.
func (s *PatientService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление пациента: %w", err)
	}

	s.logger.Info("Пациент удалён",
		slog.String("patient_id", id),
		slog.String("owner_id", ownerID),
	)
	return nil
}

// describeValidation собирает имена полей, не прошедших проверку.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("поле %s не прошло проверку %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
