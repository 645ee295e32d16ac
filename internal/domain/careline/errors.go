package careline

import "errors"

var (
	// ErrNoIntake is returned when a register stage runs before the session
	// saved an Intake.
	ErrNoIntake = errors.New("no intake saved in this session")

	// ErrNotSelectable is returned when an attendance number is not among
	// the selector's candidates.
	ErrNotSelectable = errors.New("attendance number not selectable")

	// ErrInvalidInput wraps values that cannot be coerced to a field's type.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNothingToEdit is returned by edit operations while the Intake
	// dataset does not exist.
	ErrNothingToEdit = errors.New("nothing to edit")

	// ErrSessionNotFound is returned for unknown or expired register sessions.
	ErrSessionNotFound = errors.New("register session not found")
)
