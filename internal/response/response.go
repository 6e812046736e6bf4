// Package response serializes HTTP/1.1 responses onto a byte stream.
package response

import (
	"fmt"
	"io"

	"github.com/tixx/currency-converter/internal/headers"
)

// Response is a fully materialized reply. Reason is free text; callers
// that need a Content-Length must set it themselves to match Body.
type Response struct {
	Status  int
	Reason  string
	Headers *headers.Headers
	Body    []byte
}

// New returns a Response with the canonical reason phrase for status and
// an empty header list.
func New(status int) *Response {
	return &Response{
		Status:  status,
		Reason:  DefaultReason(status),
		Headers: headers.New(),
	}
}

// DefaultReason covers the statuses this server emits.
func DefaultReason(status int) string {
	switch status {
	case 200:
		return "OK"
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 406:
		return "Not Acceptable"
	case 494:
		return "Request Header Too Large"
	case 500:
		return "Internal Server Error"
	case 505:
		return "HTTP Version Not Supported"
	}
	return ""
}

type writerState int

const (
	stateInitialized writerState = iota
	stateStatusWritten
	stateHeadersWritten
	stateBodyWritten
)

// Writer emits the pieces of a response in wire order. Calls out of
// order fail instead of producing a malformed stream.
type Writer struct {
	w     io.Writer
	state writerState
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:     w,
		state: stateInitialized,
	}
}

func (w *Writer) WriteStatusLine(status int, reason string) error {
	if w.state != stateInitialized {
		return fmt.Errorf("status line already written or called out of order")
	}

	statusLine := fmt.Sprintf("HTTP/1.1 %d %s\r\n", status, reason)
	_, err := w.w.Write([]byte(statusLine))
	if err != nil {
		return err
	}

	w.state = stateStatusWritten
	return nil
}

// WriteHeaders emits each field in the order supplied, then the blank
// line ending the header block.
func (w *Writer) WriteHeaders(h *headers.Headers) error {
	if w.state != stateStatusWritten {
		return fmt.Errorf("status line not written or headers already written")
	}
	for _, f := range h.All() {
		headerLine := fmt.Sprintf("%s: %s\r\n", f.Name, f.Value)
		_, err := w.w.Write([]byte(headerLine))
		if err != nil {
			return err
		}
	}
	_, err := w.w.Write([]byte("\r\n"))
	if err != nil {
		return err
	}

	w.state = stateHeadersWritten
	return nil
}

// WriteBody writes p verbatim. Encoding the body and advertising its
// length are the caller's responsibility.
func (w *Writer) WriteBody(p []byte) (int, error) {
	if w.state != stateHeadersWritten {
		return 0, fmt.Errorf("headers not written or body already written")
	}

	n, err := w.w.Write(p)
	if err != nil {
		return 0, err
	}

	w.state = stateBodyWritten
	return n, nil
}

// WriteResponse serializes resp in full. A nil or empty body ends the
// response right after the header block.
func (w *Writer) WriteResponse(resp *Response) error {
	if err := w.WriteStatusLine(resp.Status, resp.Reason); err != nil {
		return err
	}
	h := resp.Headers
	if h == nil {
		h = headers.New()
	}
	if err := w.WriteHeaders(h); err != nil {
		return err
	}
	if len(resp.Body) > 0 {
		if _, err := w.WriteBody(resp.Body); err != nil {
			return err
		}
	}
	return nil
}
