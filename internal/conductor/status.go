package conductor

import (
	"log/slog"
	"sync"
)

// Status is the UI-facing state of the current round trip.
type Status int

const (
	StatusIdle Status = iota
	StatusWaiting
	StatusSuccess
	StatusHasData
	StatusHasError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusWaiting:
		return "WAITING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusHasData:
		return "HAS_DATA"
	case StatusHasError:
		return "HAS_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Transition returns the status that results from requesting next while in
// current. Each requested status has exactly one guard; a request that fails
// its guard leaves current unchanged and reports false.
func Transition(current, next Status) (Status, bool) {
	switch next {
	case StatusWaiting:
		switch current {
		case StatusIdle, StatusSuccess, StatusHasData, StatusHasError:
			return next, true
		}
	case StatusSuccess:
		if current == StatusWaiting {
			return next, true
		}
	case StatusHasData:
		if current == StatusSuccess {
			return next, true
		}
	}
	return current, false
}

const maxHistory = 64

// Machine holds the current status and applies Transition to requests.
type Machine struct {
	mu       sync.RWMutex
	current  Status
	history  []Status
	logger   *slog.Logger
	onChange func(from, to Status)
}

// NewMachine returns a machine in StatusIdle. onChange may be nil.
func NewMachine(logger *slog.Logger, onChange func(from, to Status)) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		current:  StatusIdle,
		history:  []Status{StatusIdle},
		logger:   logger,
		onChange: onChange,
	}
}

// Current returns the current status.
func (m *Machine) Current() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// History returns the statuses the machine has been in, oldest first.
func (m *Machine) History() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dup := make([]Status, len(m.history))
	copy(dup, m.history)
	return dup
}

// Request asks for a move to next. Rejected requests are logged and leave
// the status unchanged.
func (m *Machine) Request(next Status) bool {
	m.mu.Lock()
	from := m.current
	to, ok := Transition(from, next)
	if ok {
		m.current = to
		m.history = append(m.history, to)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
	}
	m.mu.Unlock()

	if !ok {
		m.logger.Warn("status transition rejected",
			slog.String("from", from.String()),
			slog.String("requested", next.String()))
		return false
	}
	m.logger.Debug("status changed",
		slog.String("from", from.String()),
		slog.String("to", to.String()))
	if m.onChange != nil {
		m.onChange(from, to)
	}
	return true
}
