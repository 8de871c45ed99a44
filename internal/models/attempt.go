package models

import "time"

// AttemptState is the persisted login throttle state of one device
type AttemptState struct {
	Count     int        `json:"count"`
	LockUntil *time.Time `json:"lockUntil,omitempty"`
}

// IsLocked reports whether the lock is set and has not yet elapsed at now
func (s AttemptState) IsLocked(now time.Time) bool {
	return s.LockUntil != nil && now.Before(*s.LockUntil)
}

// Remaining returns the time left on the lock, never negative
func (s AttemptState) Remaining(now time.Time) time.Duration {
	if s.LockUntil == nil {
		return 0
	}
	if d := s.LockUntil.Sub(now); d > 0 {
		return d
	}
	return 0
}
