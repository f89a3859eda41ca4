package mdp

import "fmt"

// ModelError reports a structural problem with an MDP or MDPO found by
// CheckModel: an invalid action, a transition that does not normalize,
// or a target index out of range. StateID, ActionID, and OutcomeID are
// -1 when not applicable to the violation being reported.
type ModelError struct {
	StateID   int
	ActionID  int
	OutcomeID int
	Message   string
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("mdp: model error at state %d, action %d, outcome %d: %s",
		e.StateID, e.ActionID, e.OutcomeID, e.Message)
}

func newModelError(s, a, o int, format string, args ...interface{}) *ModelError {
	return &ModelError{StateID: s, ActionID: a, OutcomeID: o,
		Message: fmt.Sprintf(format, args...)}
}

// ArgumentError reports a malformed argument to a constructor or
// parser: a shape mismatch, a negative probability, or a bad policy
// length.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("mdp: argument error: %s", e.Message)
}

func newArgumentError(format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{Message: fmt.Sprintf(format, args...)}
}

// NumericError reports a numerical failure, such as normalizing a
// transition whose probabilities sum to (near) zero.
type NumericError struct {
	Message string
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("mdp: numeric error: %s", e.Message)
}

func newNumericError(format string, args ...interface{}) *NumericError {
	return &NumericError{Message: fmt.Sprintf(format, args...)}
}
