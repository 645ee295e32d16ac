package careline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session carries the hospital and attendance number a Register-Intake save
// bound, for the remaining register stages of the same session.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu               sync.RWMutex
	hospital         string
	attendanceNumber string
	bound            bool
	lastUsed         time.Time
}

func NewSession(now time.Time) *Session {
	return &Session{ID: uuid.New(), CreatedAt: now, lastUsed: now}
}

// Bind records the Intake's hospital and attendance number.
func (s *Session) Bind(hospital, attendanceNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hospital = hospital
	s.attendanceNumber = attendanceNumber
	s.bound = true
}

// Context returns the bound values, or ErrNoIntake before the first Intake
// or when that Intake carried no attendance number to join on.
func (s *Session) Context() (hospital, attendanceNumber string, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.bound {
		return "", "", ErrNoIntake
	}
	if s.attendanceNumber == "" {
		return "", "", fmt.Errorf("%w: the saved intake has no attendance number", ErrNoIntake)
	}
	return s.hospital, s.attendanceNumber, nil
}

// Touch marks the session used at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	ID               uuid.UUID `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	IntakeSaved      bool      `json:"intake_saved"`
	Hospital         string    `json:"hospital"`
	AttendanceNumber string    `json:"attendance_number"`
}

func (s *Session) View() SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionView{
		ID:               s.ID,
		CreatedAt:        s.CreatedAt,
		IntakeSaved:      s.bound,
		Hospital:         s.hospital,
		AttendanceNumber: s.attendanceNumber,
	}
}

// SessionSource resolves register sessions by id.
type SessionSource interface {
	Get(id string) (*Session, error)
}
