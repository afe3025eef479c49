package notify

import "fmt"

// Error wraps a failure to deliver a report through a notifier
type Error struct {
	Notifier string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Notifier, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
