// Package httpstatus names the HTTP status codes the conformance scenarios assert on.
//
// The table is intentionally closed: it lists the five codes the pet-store
// service is expected to produce and nothing else.
package httpstatus

import "strconv"

// Status is a {code, message} pair.
type Status struct {
	code    int
	message string
}

var (
	OK                  = Status{code: 200, message: "OK"}
	BadRequest          = Status{code: 400, message: "Bad Request"}
	Unauthorized        = Status{code: 401, message: "Unauthorized"}
	NotFound            = Status{code: 404, message: "Not Found"}
	InternalServerError = Status{code: 500, message: "Internal Server Error"}
)

var table = []Status{OK, BadRequest, Unauthorized, NotFound, InternalServerError}

// Code returns the numeric status code.
func (s Status) Code() int { return s.code }

// Message returns the reason phrase.
func (s Status) Message() string { return s.message }

// String renders "<code> <message>".
func (s Status) String() string {
	return strconv.Itoa(s.code) + " " + s.message
}

// Is reports whether the given numeric code matches this status.
func (s Status) Is(code int) bool {
	return s.code == code
}

// Lookup finds the status registered for code.
func Lookup(code int) (Status, bool) {
	for _, s := range table {
		if s.code == code {
			return s, true
		}
	}
	return Status{}, false
}

// Describe renders a code using the table when possible and the bare number otherwise.
func Describe(code int) string {
	if s, ok := Lookup(code); ok {
		return s.String()
	}
	return strconv.Itoa(code)
}

// All returns the registered statuses in ascending code order.
func All() []Status {
	return append([]Status{}, table...)
}
