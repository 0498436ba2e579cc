package leaf

import "fmt"

// ValidationError is returned when a component is constructed from a
// malformed value.
type ValidationError struct {
	Component string
	Reason    string
}

func (e ValidationError) Error() string {
	if e.Component == "" {
		return "invalid component"
	}
	return fmt.Sprintf("invalid %s component: %s", e.Component, e.Reason)
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for malformed component input.
var ErrValidation = ValidationError{}
