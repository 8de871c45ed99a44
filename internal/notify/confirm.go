package notify

import "context"

// Confirmation prompts
const ConfirmReadAll = "Mark all notifications as read?"

// Confirmer is the blocking confirmation step before a bulk action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed is the answer carried by a request, e.g. {"confirm": true}
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) (bool, error) {
	return bool(c), nil
}
