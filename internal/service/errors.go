package service

import "fmt"

// NotFoundError reports an unknown visit or office id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StateTransitionError reports a lifecycle action attempted out of sequence,
// including duplicate ends and duplicate ratings.
type StateTransitionError struct {
	VisitID string
	State   string
	Action  string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s visit %s in state %s", e.Action, e.VisitID, e.State)
}

// ValidationError reports malformed input: out-of-range ratings, unknown
// enum values, missing required fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports a lost optimistic-concurrency race on a visit. The
// caller may retry the request.
type ConflictError struct {
	VisitID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent update on visit %s", e.VisitID)
}
