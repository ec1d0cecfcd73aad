package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks input rejected before it reaches the store.
var ErrValidation = errors.New("validation failed")

// BatchError reports the tasks a bulk operation failed to process. Work done for the
// other tasks is kept.
type BatchError struct {
	Op     string
	Total  int
	Failed []int
	Errs   []error
}

func (e *BatchError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, id := range e.Failed {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%s: %d of %d failed (tasks %s)", e.Op, len(e.Failed), e.Total, strings.Join(ids, ", "))
}

func (e *BatchError) Unwrap() []error {
	return e.Errs
}
