package dialog

import (
	"errors"
	"fmt"
)

// ErrNotFound возвращается шлюзом, когда login id или объект недвижимости не найден
var ErrNotFound = errors.New("record not found")

// ErrUnknownState — в сессии оказалось состояние вне допустимого набора
var ErrUnknownState = errors.New("unknown conversation state")

// PersistenceError — сбой хранилища во время перехода.
// Переход откатывается, пользователь получает общее сообщение об ошибке.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// persistenceErr оборачивает ошибку шлюза, если она еще не классифицирована
func persistenceErr(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
