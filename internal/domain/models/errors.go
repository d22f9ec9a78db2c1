package models

import "fmt"

// CollaboratorUnavailableError wraps a failure of an optional external service
// (URL intel, SMTP, Google Sheets). Callers log it and carry on.
type CollaboratorUnavailableError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorUnavailableError) Unwrap() error {
	return e.Err
}
