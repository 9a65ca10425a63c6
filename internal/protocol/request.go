package protocol

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// A request to run the target executable.
//
// Only Command is required. Args holds the arguments that follow the program
// name; the program name itself is supplied by the server.
type Request struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
	Stdin   string            `json:"stdin,omitempty"`
}

// Decodes a request, accepting any JSON value for command.
//
// A command that is not a string can never name the target, so it decodes
// to the empty string and is refused as a disallowed command rather than
// as malformed JSON.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	var wire struct {
		plain
		Command json.RawMessage `json:"command"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = Request(wire.plain)
	if len(wire.Command) > 0 {
		var command string
		if err := json.Unmarshal(wire.Command, &command); err == nil {
			r.Command = command
		}
	}
	return nil
}

// Decodes a single request line.
//
// The line must hold one JSON object; trailing whitespace, including a
// carriage return, is tolerated. Any other value (array, string, null) or an
// optional field of the wrong type is rejected with a [*DecodeError]. A
// command of the wrong type is not an error; see [Request.UnmarshalJSON].
func DecodeRequest(line []byte) (*Request, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, &DecodeError{Detail: err.Error()}
		}
		return nil, &DecodeError{Detail: "request must be a JSON object"}
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, &DecodeError{Detail: err.Error()}
	}
	return &req, nil
}

// Encodes the request as a single newline-terminated line.
func EncodeRequest(req *Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	return append(data, '\n'), nil
}
