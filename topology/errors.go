package topology

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedTopology is matched by every MalformedTopologyError.
var ErrMalformedTopology = errors.New("malformed topology")

// MalformedTopologyError reports the record of a topology description that
// could not be accepted.
type MalformedTopologyError struct {
	Record string
	Reason string
}

func (e *MalformedTopologyError) Error() string {
	return fmt.Sprintf("malformed topology: %s: %s", e.Record, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedTopology) hold.
func (e *MalformedTopologyError) Is(target error) bool {
	return target == ErrMalformedTopology
}

func malformed(record, format string, args ...any) error {
	return errors.WithStack(&MalformedTopologyError{
		Record: record,
		Reason: fmt.Sprintf(format, args...),
	})
}
