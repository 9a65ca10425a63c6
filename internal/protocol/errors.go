package protocol

import "github.com/pkg/errors"

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidResponse = errors.New("invalid response")
)

// Describes why a request line could not be decoded.
//
// The message is the bare parser detail so it can be shown to the client
// as-is. Matches [ErrInvalidRequest] under errors.Is.
type DecodeError struct {
	Detail string
}

func (e *DecodeError) Error() string {
	return e.Detail
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidRequest
}
