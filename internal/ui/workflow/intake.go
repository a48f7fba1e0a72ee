package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bigkaa/goclinic/internal/api/dto"
	"github.com/bigkaa/goclinic/internal/ui/forms"
)

// IntakeState - состояние формы нового пациента.
type IntakeState int

const (
	// IntakeIdle - popover закрыт.
	IntakeIdle IntakeState = iota
	// IntakeEditing - popover открыт, форма редактируется.
	IntakeEditing
	// IntakeSubmitting - запрос регистрации выполняется.
	IntakeSubmitting
)

func (s IntakeState) String() string {
	switch s {
	case IntakeIdle:
		return "idle"
	case IntakeEditing:
		return "editing"
	case IntakeSubmitting:
		return "submitting"
	}
	return "unknown"
}

// ErrValidation - форма не прошла проверку, удалённый вызов не выполнялся.
// Ошибки полей доступны через Intake.Errors.
var ErrValidation = errors.New("workflow: форма содержит ошибки")

// Registrar регистрирует пациента в удалённом хранилище.
type Registrar interface {
	RegisterPatient(ctx context.Context, in dto.PatientInput) (*dto.Patient, error)
}

// Intake - автомат idle → editing → submitting → idle | editing.
type Intake struct {
	mu         sync.Mutex
	state      IntakeState
	form       forms.PatientForm
	errs       forms.FieldErrors
	registrar  Registrar
	invalidate InvalidateFunc
	logger     *slog.Logger
}

// NewIntake создаёт автомат в состоянии idle.
func NewIntake(registrar Registrar, invalidate InvalidateFunc, logger *slog.Logger) *Intake {
	return &Intake{
		registrar:  registrar,
		invalidate: invalidate,
		logger:     logger.With(slog.String("component", "ui.intake")),
	}
}

// State - текущее состояние.
func (in *Intake) State() IntakeState {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Form - текущие значения формы.
func (in *Intake) Form() forms.PatientForm {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.form
}

// Errors - ошибки полей последней проверки.
func (in *Intake) Errors() forms.FieldErrors {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.errs
}

// Open открывает форму: idle → editing. В editing ничего не меняет.
func (in *Intake) Open() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	switch in.state {
	case IntakeIdle:
		in.state = IntakeEditing
		return nil
	case IntakeEditing:
		return nil
	default:
		return ErrBusy
	}
}

// Close закрывает форму без отправки и очищает значения.
func (in *Intake) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state == IntakeSubmitting {
		return ErrBusy
	}
	in.reset()
	return nil
}

// Set меняет значение поля. Допустимо только в editing.
func (in *Intake) Set(field, value string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.state != IntakeEditing {
		return ErrInvalidTransition
	}
	return in.form.Set(field, value)
}

// Fill устанавливает все значения формы (Set для каждого поля).
func (in *Intake) Fill(f forms.PatientForm) error {
	for _, field := range forms.Fields {
		if err := in.Set(field, f.Value(field)); err != nil {
			return err
		}
	}
	return nil
}

// Submit проверяет форму и регистрирует пациента.
//
// Ошибки проверки: ErrValidation, состояние editing, вызова нет.
// Ошибка регистрации: состояние editing, значения сохранены.
// Успех: состояние idle, форма очищена, список пациентов помечен устаревшим.
func (in *Intake) Submit(ctx context.Context) (*dto.Patient, error) {
	in.mu.Lock()
	switch in.state {
	case IntakeSubmitting:
		in.mu.Unlock()
		return nil, ErrBusy
	case IntakeIdle:
		in.mu.Unlock()
		return nil, ErrInvalidTransition
	}

	input, errs := in.form.Validate()
	in.errs = errs
	if len(errs) > 0 {
		in.mu.Unlock()
		return nil, ErrValidation
	}
	in.state = IntakeSubmitting
	in.mu.Unlock()

	patient, err := in.registrar.RegisterPatient(ctx, input)

	in.mu.Lock()
	if err != nil {
		in.state = IntakeEditing
		in.mu.Unlock()
		return nil, fmt.Errorf("регистрация: %w", err)
	}
	in.reset()
	in.mu.Unlock()

	if in.invalidate != nil {
		if err := in.invalidate(ctx); err != nil {
			// Регистрация выполнена; устаревший список обновится по TTL.
			in.logger.Warn("Не удалось пометить список пациентов устаревшим",
				slog.String("error", err.Error()),
			)
		}
	}
	return patient, nil
}

func (in *Intake) reset() {
	in.state = IntakeIdle
	in.form = forms.PatientForm{}
	in.errs = nil
}
