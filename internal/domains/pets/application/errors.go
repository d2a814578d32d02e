package application

import (
	"errors"
	"fmt"
)

// ErrInvalidInput signals the request cannot be applied to a pet.
var ErrInvalidInput = errors.New("invalid pet input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
