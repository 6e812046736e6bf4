// Package request reads an HTTP/1.1 request head off a raw byte stream.
package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tixx/currency-converter/internal/headers"
	"github.com/tixx/currency-converter/internal/httperr"
)

const (
	stateInitialized = iota
	stateParsingHeaders
	stateDone
)

// MaxHeaderCount bounds the number of header lines in one request.
const MaxHeaderCount = 100

const bufferSize = 1024

type Request struct {
	Method  string
	Target  string
	Version string

	// Path is the hierarchical portion of Target, computed once at
	// construction. Query string and fragment are stripped.
	Path string

	Headers *headers.Headers

	// Body exposes whatever the peer sent past the header block. It is
	// valid until the owning connection closes.
	Body io.Reader

	state int
}

func pathFromTarget(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		return target[:i]
	}
	return target
}

type requestLine struct {
	method  string
	target  string
	version string
}

func parseRequestLine(data []byte) (*requestLine, int, error) {
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		if len(data) > headers.MaxLineBytes {
			return nil, 0, httperr.New(400, "Bad Request", "Request line is too long")
		}
		return nil, 0, nil
	}
	if idx+1 > headers.MaxLineBytes {
		return nil, 0, httperr.New(400, "Bad Request", "Request line is too long")
	}

	line := string(bytes.TrimSuffix(data[:idx], []byte("\r")))

	words := strings.Fields(line)
	if len(words) != 3 {
		return nil, 0, httperr.New(400, "Bad Request", "Malformed request line")
	}

	if words[2] != "HTTP/1.1" {
		return nil, 0, httperr.New(505, "HTTP Version Not Supported", "")
	}

	return &requestLine{
		method:  words[0],
		target:  words[1],
		version: words[2],
	}, idx + 1, nil
}

func (r *Request) parse(data []byte) (int, error) {
	totalBytesParsed := 0

	for r.state != stateDone {
		n, err := r.parseSingle(data[totalBytesParsed:])
		if err != nil {
			return totalBytesParsed, err
		}

		if n == 0 {
			break
		}

		totalBytesParsed += n
	}
	return totalBytesParsed, nil
}

func (r *Request) parseSingle(data []byte) (int, error) {
	switch r.state {
	case stateInitialized:
		parsed, bytesConsumed, err := parseRequestLine(data)
		if err != nil {
			return 0, err
		}

		if bytesConsumed == 0 {
			return 0, nil
		}

		r.Method = parsed.method
		r.Target = parsed.target
		r.Version = parsed.version
		r.Path = pathFromTarget(parsed.target)
		r.state = stateParsingHeaders

		return bytesConsumed, nil

	case stateParsingHeaders:
		n, done, err := r.Headers.Parse(data)
		if err != nil {
			if errors.Is(err, headers.ErrLineTooLong) {
				return 0, httperr.New(494, "Request header too large", "")
			}
			return 0, httperr.New(400, "Bad Request", err.Error())
		}

		if n == 0 {
			return 0, nil
		}

		if !done && r.Headers.Len() > MaxHeaderCount {
			return 0, httperr.New(494, "Too many headers", "")
		}

		if done {
			r.state = stateDone
		}

		return n, nil

	case stateDone:
		return 0, fmt.Errorf("error: trying to read data in a done state")

	default:
		return 0, fmt.Errorf("error: unknown state")
	}
}

// FromReader reads from reader until one full request head was parsed.
// A clean EOF ends the head the way a line-based read loop sees it: any
// unterminated tail counts as a final line and the header block closes,
// so a half-closed peer still gets an answer. Protocol violations come
// back as *httperr.Error; read failures (peer reset) come back as plain
// errors, meaning no response can or should be written.
func FromReader(reader io.Reader) (*Request, error) {
	buf := make([]byte, bufferSize)
	readToIndex := 0

	request := &Request{
		state:   stateInitialized,
		Headers: headers.New(),
	}

	for request.state != stateDone {
		if readToIndex == len(buf) {
			newBuf := make([]byte, len(buf)*2)
			copy(newBuf, buf)
			buf = newBuf
		}

		n, err := reader.Read(buf[readToIndex:])
		readToIndex += n

		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		bytesConsumed, parseErr := request.parse(buf[:readToIndex])
		if parseErr != nil {
			return nil, parseErr
		}

		if bytesConsumed > 0 {
			remaining := readToIndex - bytesConsumed
			copy(buf, buf[bytesConsumed:readToIndex])
			readToIndex = remaining
		}

		if errors.Is(err, io.EOF) {
			if request.state != stateDone {
				tail := make([]byte, readToIndex+1)
				copy(tail, buf[:readToIndex])
				tail[readToIndex] = '\n'
				if _, parseErr := request.parse(tail); parseErr != nil {
					return nil, parseErr
				}
				if request.state == stateParsingHeaders {
					request.state = stateDone
				}
				readToIndex = 0
			}
			break
		}
	}

	request.Body = io.MultiReader(bytes.NewReader(buf[:readToIndex]), reader)
	return request, nil
}

// ValidateHost enforces the mandatory Host header. The value must equal
// serverName, or serverName suffixed with the listen port; anything else
// is treated as a request for a different virtual host.
func (r *Request) ValidateHost(serverName string, port int) *httperr.Error {
	host, ok := r.Headers.Get("Host")
	if !ok {
		return httperr.New(400, "Bad Request", "Host header is missing")
	}
	if host != serverName && host != fmt.Sprintf("%s:%d", serverName, port) {
		return httperr.New(404, "Not Found", "Invalid host")
	}
	return nil
}
