package petstore

import (
	"errors"
	"fmt"
	"unicode/utf8"

	apierrors "github.com/Apurer/petstore-api-tests/internal/shared/errors"
	"github.com/Apurer/petstore-api-tests/internal/shared/httpstatus"
)

var (
	// ErrDecode wraps every failure to parse a response body.
	ErrDecode = errors.New("decode petstore response")
	// ErrMissingID is returned when a response body carries no pet id.
	ErrMissingID = errors.New("petstore response has no id")
)

// UnexpectedStatusError reports a response whose status differs from the expected one.
type UnexpectedStatusError struct {
	Method  string
	Path    string
	Want    httpstatus.Status
	Got     int
	Body    string
	TraceID string
	Problem *apierrors.ProblemDetail
}

func (e *UnexpectedStatusError) Error() string {
	msg := fmt.Sprintf("%s %s: expected status %s, got %s", e.Method, e.Path, e.Want, httpstatus.Describe(e.Got))
	if e.Problem != nil {
		msg = fmt.Sprintf("%s (%s)", msg, e.Problem.Error())
	} else if e.Body != "" {
		msg = fmt.Sprintf("%s, body: %s", msg, truncate(e.Body, 512))
	}
	if e.TraceID != "" {
		msg = fmt.Sprintf("%s (trace ID: %s)", msg, e.TraceID)
	}
	return msg
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
