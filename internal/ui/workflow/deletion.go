package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bigkaa/goclinic/internal/api/dto"
)

// DeletionState - состояние удаления пациента.
type DeletionState int

const (
	// DeletionIdle - диалог закрыт.
	DeletionIdle DeletionState = iota
	// DeletionConfirming - диалог подтверждения открыт.
	DeletionConfirming
	// DeletionDeleting - запрос удаления выполняется.
	DeletionDeleting
)

func (s DeletionState) String() string {
	switch s {
	case DeletionIdle:
		return "idle"
	case DeletionConfirming:
		return "confirming"
	case DeletionDeleting:
		return "deleting"
	}
	return "unknown"
}

// Deleter удаляет пациента в удалённом хранилище.
type Deleter interface {
	DeletePatient(ctx context.Context, id string) error
}

// Deletion - автомат idle → confirming → deleting → idle | confirming.
// Список пациентов до подтверждения удаления сервером не меняется.
type Deletion struct {
	mu         sync.Mutex
	state      DeletionState
	target     dto.Patient
	deleter    Deleter
	invalidate InvalidateFunc
	logger     *slog.Logger
}

// NewDeletion создаёт автомат в состоянии idle.
func NewDeletion(deleter Deleter, invalidate InvalidateFunc, logger *slog.Logger) *Deletion {
	return &Deletion{
		deleter:    deleter,
		invalidate: invalidate,
		logger:     logger.With(slog.String("component", "ui.deletion")),
	}
}

// State - текущее состояние.
func (d *Deletion) State() DeletionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Target - пациент, названный в диалоге.
func (d *Deletion) Target() dto.Patient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

// RequestDelete открывает диалог подтверждения для пациента.
func (d *Deletion) RequestDelete(p dto.Patient) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DeletionDeleting {
		return ErrBusy
	}
	d.state = DeletionConfirming
	d.target = p
	return nil
}

// Cancel закрывает диалог без удаления.
func (d *Deletion) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DeletionConfirming {
		return ErrInvalidTransition
	}
	d.state = DeletionIdle
	d.target = dto.Patient{}
	return nil
}

// Confirm удаляет пациента. Ошибка оставляет диалог открытым.
func (d *Deletion) Confirm(ctx context.Context) error {
	d.mu.Lock()
	switch d.state {
	case DeletionDeleting:
		d.mu.Unlock()
		return ErrBusy
	case DeletionIdle:
		d.mu.Unlock()
		return ErrInvalidTransition
	}
	d.state = DeletionDeleting
	id := d.target.ID
	d.mu.Unlock()

	err := d.deleter.DeletePatient(ctx, id)

	d.mu.Lock()
	if err != nil {
		d.state = DeletionConfirming
		d.mu.Unlock()
		return fmt.Errorf("удаление %s: %w", id, err)
	}
	d.state = DeletionIdle
	d.target = dto.Patient{}
	d.mu.Unlock()

	if d.invalidate != nil {
		if err := d.invalidate(ctx); err != nil {
			d.logger.Warn("Не удалось пометить список пациентов устаревшим",
				slog.String("patient_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
