package farfield

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCoordinateNotFound is returned when a selection names a frequency,
// theta or phi value that is not on the dataset's axes.
var ErrCoordinateNotFound = errors.New("coordinate value not in dataset")

// MissingFieldError reports that a view or column lookup needs columns the
// dataset does not have. The dataset itself remains usable.
type MissingFieldError struct {
	View    string
	Missing []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field for %s: %s", e.View, strings.Join(e.Missing, ", "))
}
