package throttle

import (
	"fmt"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/models"
)

// Form labels
const (
	LabelLocked = "Locked ⛔"
	LabelLogin  = "Login"
)

// View is what the login form renders
type View struct {
	Locked         bool       `json:"locked"`
	Label          string     `json:"label"`
	Countdown      string     `json:"countdown,omitempty"`
	RemainingMs    int64      `json:"remainingMs"`
	LockUntil      *time.Time `json:"lockUntil,omitempty"`
	SubmitDisabled bool       `json:"submitDisabled"`
	Attempts       int        `json:"attempts"`
	AttemptsLeft   int        `json:"attemptsLeft"`
}

// NewView derives the form view from an attempt state
func NewView(state models.AttemptState, maxAttempts int, now time.Time) View {
	v := View{
		Label:        LabelLogin,
		Attempts:     state.Count,
		AttemptsLeft: max(maxAttempts-state.Count, 0),
	}
	if state.IsLocked(now) {
		remaining := state.Remaining(now)
		v.Locked = true
		v.Label = LabelLocked
		v.SubmitDisabled = true
		v.Countdown = FormatRemaining(remaining)
		v.RemainingMs = remaining.Milliseconds()
		v.LockUntil = state.LockUntil
		v.AttemptsLeft = 0
	}
	return v
}

// FormatRemaining renders d as M:SS, truncating partial seconds
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
