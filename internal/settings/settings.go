package settings

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Default interval between liveness log lines.
const DefaultHeartbeat = time.Minute

var ErrSettings = errors.New("invalid settings")

// Contents of the configuration file. Nil or empty fields are unset.
type File struct {
	Socket         string         `yaml:"socket"`
	Target         string         `yaml:"target"`
	MaxConnections *int           `yaml:"max_connections"`
	Heartbeat      *time.Duration `yaml:"heartbeat"`
}

// Effective settings after defaults, file and overrides are combined.
type Settings struct {
	Socket         string        // Socket path. Empty means the built-in default.
	Target         string        // Target executable. Empty means the built-in default.
	MaxConnections int           // Zero means unlimited.
	Heartbeat      time.Duration // Zero disables the heartbeat.
}

// Reads the configuration file at path.
//
// A missing file yields an empty [File] unless required is set, in which
// case it is an error. Unknown keys are rejected so typos do not go unnoticed.
func Load(path string, required bool) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return &File{}, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(ErrSettings, "%s: %v", path, err)
	}

	if err := f.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return &f, nil
}

// Checks that numeric values are in range.
func (f *File) Validate() error {
	if f.MaxConnections != nil && *f.MaxConnections < 0 {
		return errors.Wrapf(ErrSettings, "max_connections must not be negative, got %d", *f.MaxConnections)
	}
	if f.Heartbeat != nil && *f.Heartbeat < 0 {
		return errors.Wrapf(ErrSettings, "heartbeat must not be negative, got %s", *f.Heartbeat)
	}
	return nil
}

// Command-line or environment values. Empty strings and nil pointers are
// unset and fall through to the file.
type Overrides struct {
	Socket         string
	Target         string
	MaxConnections *int
	Heartbeat      *time.Duration
}

// Combines built-in defaults, the file and the overrides, in increasing
// order of precedence.
func Resolve(f *File, o Overrides) (Settings, error) {
	s := Settings{Heartbeat: DefaultHeartbeat}

	if f != nil {
		s.Socket = f.Socket
		s.Target = f.Target
		if f.MaxConnections != nil {
			s.MaxConnections = *f.MaxConnections
		}
		if f.Heartbeat != nil {
			s.Heartbeat = *f.Heartbeat
		}
	}

	if o.Socket != "" {
		s.Socket = o.Socket
	}
	if o.Target != "" {
		s.Target = o.Target
	}
	if o.MaxConnections != nil {
		s.MaxConnections = *o.MaxConnections
	}
	if o.Heartbeat != nil {
		s.Heartbeat = *o.Heartbeat
	}

	if s.MaxConnections < 0 {
		return Settings{}, errors.Wrapf(ErrSettings, "max connections must not be negative, got %d", s.MaxConnections)
	}
	if s.Heartbeat < 0 {
		return Settings{}, errors.Wrapf(ErrSettings, "heartbeat must not be negative, got %s", s.Heartbeat)
	}
	return s, nil
}
