// Пакет mode — конечный автомат режимов работы медиа-хранилища.
//
//   - rw — загрузка, отдача и удаление
//   - ro — только отдача (например, на время резервного копирования корня)
//
// Переход rw → ro свободный, обратный ro → rw требует confirm: true.
// Потокобезопасен через sync.RWMutex.
package mode

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// StorageMode — режим работы хранилища.
type StorageMode string

const (
	// ModeRW — чтение и запись
	ModeRW StorageMode = "rw"
	// ModeRO — только чтение
	ModeRO StorageMode = "ro"
)

// Operation — операция над медиа.
type Operation string

const (
	OpUpload   Operation = "upload"
	OpDownload Operation = "download"
	OpDelete   Operation = "delete"
)

// TransitionRecord — запись о переходе между режимами.
type TransitionRecord struct {
	From      StorageMode `json:"from"`
	To        StorageMode `json:"to"`
	Reason    string      `json:"reason,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// StateMachine — конечный автомат режимов.
type StateMachine struct {
	mu      sync.RWMutex
	current StorageMode
	history []TransitionRecord
}

// validTransitions — матрица допустимых переходов.
var validTransitions = map[StorageMode]map[StorageMode]bool{
	ModeRW: {ModeRO: true},
	ModeRO: {ModeRW: true},
}

// allowedOperations — матрица допустимых операций для каждого режима.
var allowedOperations = map[StorageMode]map[Operation]bool{
	ModeRW: {OpUpload: true, OpDownload: true, OpDelete: true},
	ModeRO: {OpDownload: true},
}

// needsConfirmation — переходы, требующие явного подтверждения.
var needsConfirmation = map[StorageMode]map[StorageMode]bool{
	ModeRO: {ModeRW: true},
}

// NewStateMachine создаёт конечный автомат с начальным режимом.
func NewStateMachine(initial StorageMode) (*StateMachine, error) {
	if !isValidMode(initial) {
		return nil, fmt.Errorf("недопустимый начальный режим: %q", initial)
	}

	return &StateMachine{
		current: initial,
		history: make([]TransitionRecord, 0),
	}, nil
}

// CurrentMode возвращает текущий режим работы.
func (sm *StateMachine) CurrentMode() StorageMode {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// TransitionTo выполняет переход в указанный режим.
// Переход в текущий режим — ошибка INVALID_TRANSITION.
func (sm *StateMachine) TransitionTo(target StorageMode, confirm bool, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !isValidMode(target) {
		return &TransitionError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("недопустимый целевой режим: %q", target),
		}
	}

	if !validTransitions[sm.current][target] {
		return &TransitionError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("переход %s → %s недопустим", sm.current, target),
		}
	}

	if needsConfirmation[sm.current][target] && !confirm {
		return &TransitionError{
			Code: CodeConfirmationRequired,
			Message: fmt.Sprintf("обратный переход %s → %s требует подтверждения (confirm: true)",
				sm.current, target),
		}
	}

	sm.history = append(sm.history, TransitionRecord{
		From:      sm.current,
		To:        target,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	sm.current = target

	return nil
}

// CanPerform проверяет, допустима ли операция в текущем режиме.
func (sm *StateMachine) CanPerform(op Operation) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return allowedOperations[sm.current][op]
}

// AllowedOperations возвращает отсортированный список операций текущего режима.
func (sm *StateMachine) AllowedOperations() []Operation {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ops := allowedOperations[sm.current]
	result := make([]Operation, 0, len(ops))
	for op := range ops {
		result = append(result, op)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// History возвращает историю переходов (копия).
func (sm *StateMachine) History() []TransitionRecord {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	result := make([]TransitionRecord, len(sm.history))
	copy(result, sm.history)
	return result
}

// Коды ошибок переходов.
const (
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
)

// TransitionError — ошибка перехода между режимами.
type TransitionError struct {
	Code    string
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func isValidMode(m StorageMode) bool {
	return m == ModeRW || m == ModeRO
}

// ParseMode преобразует строку в StorageMode.
func ParseMode(s string) (StorageMode, error) {
	m := StorageMode(s)
	if !isValidMode(m) {
		return "", fmt.Errorf("недопустимый режим: %q, допустимые: rw, ro", s)
	}
	return m, nil
}
