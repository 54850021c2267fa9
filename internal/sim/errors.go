package sim

import "fmt"

// JobError wraps an ensemble failure with the job it came from.
type JobError struct {
	Name    string
	Index   int
	Wrapped error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %d (%s): %v", e.Index, e.Name, e.Wrapped)
}

func (e *JobError) Unwrap() error {
	return e.Wrapped
}
