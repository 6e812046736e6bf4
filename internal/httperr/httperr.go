// Package httperr carries protocol-level failures that must become an
// HTTP response instead of tearing down the server.
package httperr

import "fmt"

type Error struct {
	Status int
	Reason string
	Body   string
}

func New(status int, reason, body string) *Error {
	return &Error{Status: status, Reason: reason, Body: body}
}

func (e *Error) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Reason, e.Body)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Reason)
}
