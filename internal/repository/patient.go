package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goclinic/internal/domain/model"
)

// PatientRepository - интерфейс CRUD для таблицы patients.
// Все операции ограничены владельцем (ownerID).
type PatientRepository interface {
	// Create сохраняет нового пациента и заполняет CreatedAt.
	Create(ctx context.Context, p *model.Patient) error
	// GetByID возвращает пациента владельца по UUID.
	GetByID(ctx context.Context, ownerID, id string) (*model.Patient, error)
	// List возвращает страницу пациентов владельца, новые первыми.
	List(ctx context.Context, ownerID string, limit, offset int) ([]*model.Patient, error)
	// Count возвращает количество пациентов владельца.
	Count(ctx context.Context, ownerID string) (int, error)
	// Delete удаляет пациента владельца.
	Delete(ctx context.Context, ownerID, id string) error
}

type patientRepo struct {
	db DBTX
}

// NewPatientRepository создаёт репозиторий пациентов.
func NewPatientRepository(db DBTX) PatientRepository {
	return &patientRepo{db: db}
}

const patientColumns = `id, owner_id, name, age, document, phone, created_at`

// Документ уникален в пределах владельца (миграция 000002).
const patientDocumentKey = "patients_owner_document_key"

func scanPatient(row pgx.Row) (*model.Patient, error) {
	p := &model.Patient{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Age, &p.Document, &p.Phone, &p.CreatedAt)
	return p, err
}

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error {
	query := `
		INSERT INTO patients (id, owner_id, name, age, document, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.Name, p.Age, p.Document, p.Phone,
	).Scan(&p.CreatedAt)
	if err != nil {
		if violates(err, patientDocumentKey) {
			return fmt.Errorf("%w: пациент с таким документом уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка создания пациента: %w", err)
	}
	return nil
}

func (r *patientRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE id = $1 AND owner_id = $2`, patientColumns)
	p, err := scanPatient(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пациента: %w", err)
	}
	return p, nil
}

func (r *patientRepo) List(ctx context.Context, ownerID string, limit, offset int) ([]*model.Patient, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM patients
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, patientColumns)

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пациентов: %w", err)
	}
	defer rows.Close()

	result := make([]*model.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования пациента: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *patientRepo) Count(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта пациентов: %w", err)
	}
	return count, nil
}

func (r *patientRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("ошибка удаления пациента: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
