package metrics

import (
	"errors"
	"fmt"
)

// ErrUnknownBand is returned for a severity band other than overall, low
// or high.
var ErrUnknownBand = errors.New("unknown severity band")

// PreconditionError reports aggregation input that cannot be grouped into
// per-model blocks. The caller must fix the tabulation; it is never retried.
type PreconditionError struct {
	Sequence  string // name of the offending input sequence
	Length    int
	GroupSize int
	Message   string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s (%s: length %d, group size %d)",
		e.Message, e.Sequence, e.Length, e.GroupSize)
}

// IsPreconditionError returns true if err is or wraps a PreconditionError.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
