package ask

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user aborts a prompt (Ctrl-C, Esc, EOF).
// It ends the whole batch.
var ErrCancelled = errors.New("cancelled by user")

// ErrTooManyAttempts is returned when a question keeps failing validation
var ErrTooManyAttempts = errors.New("too many invalid answers")

// ValidationError is a rejected answer. It never leaves the engine; the
// message is shown and the question asked again.
type ValidationError struct {
	Question string
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for %s: %s", e.Question, e.Message)
}
