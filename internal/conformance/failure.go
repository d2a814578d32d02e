package conformance

import (
	"fmt"
	"strings"

	"github.com/Apurer/petstore-api-tests/internal/shared/httpstatus"
)

// Failure is the error returned by a scenario whose assertion did not hold.
type Failure struct {
	Scenario string
	Step     string
	Field    string
	Expected any
	Actual   any
	// Status is the status symbol the step asserted on. Zero for body assertions.
	Status httpstatus.Status
	Diff   string
	Err    error
}

func (f *Failure) Error() string {
	var b strings.Builder
	if f.Scenario != "" {
		b.WriteString(f.Scenario)
		b.WriteString(": ")
	}
	b.WriteString(f.Step)
	switch {
	case f.Err != nil && f.Field == "":
		fmt.Fprintf(&b, ": %v", f.Err)
	case f.Diff != "":
		fmt.Fprintf(&b, ": %s mismatch (-want +got):\n%s", f.Field, f.Diff)
	default:
		fmt.Fprintf(&b, ": %s: expected %v, got %v", f.Field, f.Expected, f.Actual)
		if f.Err != nil {
			fmt.Fprintf(&b, " (%v)", f.Err)
		}
	}
	return b.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}
