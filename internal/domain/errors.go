package domain

import (
	"errors"
	"fmt"

	"github.com/totegamma/weird/leaf"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// StoreError wraps a failure of the component store transport.
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("component store unavailable: %s: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error { return e.Err }

func (e StoreError) Is(target error) bool {
	_, ok := target.(StoreError)
	if ok {
		return true
	}
	_, ok = target.(*StoreError)
	return ok
}

// ErrStoreUnavailable is the sentinel error for store transport failures.
var ErrStoreUnavailable = StoreError{}

var (
	ErrUnsupportedFederation = errors.New("federation not supported yet")
	ErrVerificationFailed    = errors.New("error validating DNS challenge")
)

// ErrValidation matches malformed component input.
var ErrValidation = leaf.ErrValidation
