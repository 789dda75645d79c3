package gemini

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyPrompt is returned (wrapped in *AIError) when the prompt is blank.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrEmptyResponse is wrapped in *AIError when the model produced no text.
	ErrEmptyResponse = errors.New("model returned no text")
)

// AIError reports a failed generation. Reason is safe to show to users.
type AIError struct {
	Op     string
	Reason string
	Err    error
}

func (e *AIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gemini %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("gemini %s: %s: %v", e.Op, e.Reason, e.Err)
}

func (e *AIError) Unwrap() error { return e.Err }

// Timeout reports whether the call ran out of time.
func (e *AIError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// UnsupportedMediaError is returned for payloads the model cannot take inline.
type UnsupportedMediaError struct {
	MIMEType string
}

func (e *UnsupportedMediaError) Error() string {
	return fmt.Sprintf("unsupported media type %q", e.MIMEType)
}
