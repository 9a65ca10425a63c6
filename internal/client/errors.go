package client

import "github.com/pkg/errors"

var (
	ErrClient    = errors.New("client error")
	ErrRemote    = errors.New("bridge reported an error")
	ErrNotSocket = errors.New("not a socket")
	ErrNoExit    = errors.New("connection closed before exit")
)

// An error response sent by the bridge. Matches [ErrRemote] under errors.Is.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
