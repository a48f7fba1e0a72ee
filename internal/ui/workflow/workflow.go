// Пакет workflow - конечные автоматы создания и удаления пациента.
//
// Автомат живёт в пределах одного HTTP-запроса: обработчик восстанавливает
// его из данных формы и выполняет переход. Ошибка удалённого вызова
// оставляет автомат в состоянии, из которого пользователь может повторить
// действие; автоматических повторов нет.
package workflow

import (
	"context"
	"errors"
)

// ErrInvalidTransition - переход недопустим из текущего состояния.
var ErrInvalidTransition = errors.New("workflow: недопустимый переход")

// ErrBusy - удалённый вызов уже выполняется.
var ErrBusy = errors.New("workflow: операция уже выполняется")

// InvalidateFunc помечает список пациентов устаревшим.
type InvalidateFunc func(ctx context.Context) error
