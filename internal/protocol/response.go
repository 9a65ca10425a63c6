package protocol

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Discriminates the variants of [Response].
type ResponseType string

const (
	TypeStdout ResponseType = "stdout" // Captured standard output.
	TypeStderr ResponseType = "stderr" // Captured standard error.
	TypeExit   ResponseType = "exit"   // Exit code; terminal for a launched command.
	TypeError  ResponseType = "error"  // Request failed; terminal, no exit follows.
)

// A single message sent from the server to the client.
//
// Only the field belonging to Type is meaningful: Data for stdout and stderr,
// Code for exit, Message for error. The JSON form carries only that field.
type Response struct {
	Type    ResponseType
	Data    string
	Code    int
	Message string
}

// Returns a stdout response carrying data.
func Stdout(data string) *Response {
	return &Response{Type: TypeStdout, Data: data}
}

// Returns a stderr response carrying data.
func Stderr(data string) *Response {
	return &Response{Type: TypeStderr, Data: data}
}

// Returns an exit response carrying the exit code.
func Exit(code int) *Response {
	return &Response{Type: TypeExit, Code: code}
}

// Returns an error response carrying message.
func Error(message string) *Response {
	return &Response{Type: TypeError, Message: message}
}

// Reports whether no further responses follow for the same request.
func (r *Response) Terminal() bool {
	return r.Type == TypeExit || r.Type == TypeError
}

type streamWire struct {
	Type ResponseType `json:"type"`
	Data string       `json:"data"`
}

type exitWire struct {
	Type ResponseType `json:"type"`
	Code int          `json:"code"`
}

type errorWire struct {
	Type    ResponseType `json:"type"`
	Message string       `json:"message"`
}

// Returns the wire shape of the response, which carries only the field that
// belongs to its type.
func (r Response) wire() (any, error) {
	switch r.Type {
	case TypeStdout, TypeStderr:
		return streamWire{Type: r.Type, Data: r.Data}, nil
	case TypeExit:
		return exitWire{Type: r.Type, Code: r.Code}, nil
	case TypeError:
		return errorWire{Type: r.Type, Message: r.Message}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidResponse, "unknown response type %q", r.Type)
	}
}

// Encodes only the field that belongs to the response type.
//
// json.Marshal always escapes <, > and & inside a Marshaler; use [Writer]
// for the bytes that go on the wire.
func (r Response) MarshalJSON() ([]byte, error) {
	v, err := r.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type    ResponseType `json:"type"`
		Data    string       `json:"data"`
		Code    int          `json:"code"`
		Message string       `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch wire.Type {
	case TypeStdout, TypeStderr, TypeExit, TypeError:
	default:
		return errors.Wrapf(ErrInvalidResponse, "unknown response type %q", wire.Type)
	}

	*r = Response{Type: wire.Type, Data: wire.Data, Code: wire.Code, Message: wire.Message}
	return nil
}

// Decodes a single response line.
func DecodeResponse(line []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(line), &resp); err != nil {
		if errors.Is(err, ErrInvalidResponse) {
			return nil, err
		}
		return nil, errors.Wrap(ErrInvalidResponse, err.Error())
	}
	return &resp, nil
}

// Writes responses as newline-delimited JSON.
//
// Each response is handed to the underlying writer in a single Write call,
// so responses reach the peer as soon as they are produced.
type Writer struct {
	enc *json.Encoder
}

// Creates a [Writer] on top of w.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// Writes one response line.
//
// The wire struct is encoded directly so the encoder's HTML escaping setting
// applies to the payload; output text goes out byte for byte.
func (w *Writer) Write(resp *Response) error {
	v, err := resp.wire()
	if err != nil {
		return err
	}
	return w.enc.Encode(v)
}
