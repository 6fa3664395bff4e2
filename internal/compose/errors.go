package compose

import "fmt"

// ValidationError reports a structurally invalid draft. It is raised
// before any backend side effect and always maps to a field-level
// message the user can act on.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid draft: %s (%s): %s", e.Field, e.Rule, e.Message)
}

// ResolutionError reports a backend call that failed after validation
// passed. Creations completed before the failure are not rolled back;
// retrying the same draft is safe because already-resolved references
// are not re-created.
type ResolutionError struct {
	Err  error
	Step string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed %s: %v", e.Step, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
