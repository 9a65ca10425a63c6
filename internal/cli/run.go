package cli

import (
	"context"
	"io"
	"os"

	"github.com/cruciblehq/bridged/internal/client"
	"github.com/cruciblehq/bridged/internal/protocol"
)

// Represents the 'bridged run' command.
type RunCmd struct {
	Target string            `short:"t" env:"BRIDGE_TARGET" default:"claude" help:"Command name sent to the bridge." placeholder:"NAME"`
	Env    map[string]string `short:"e" help:"Environment variable for the remote process (repeatable)." placeholder:"KEY=VALUE"`
	Cwd    string            `help:"Working directory on the bridge host. Defaults to the bridge's own." placeholder:"DIR"`
	Stdin  bool              `help:"Forward standard input to the remote process."`
	Args   []string          `arg:"" optional:"" passthrough:"" help:"Arguments for the target."`

	stdin  io.Reader // Overrides os.Stdin in tests.
	stdout io.Writer // Overrides os.Stdout in tests.
	stderr io.Writer // Overrides os.Stderr in tests.
}

// Executes the run command.
//
// Sends one request to the bridge, copies the remote stdout and stderr to
// the local ones and exits with the remote exit code.
func (c *RunCmd) Run(ctx context.Context) error {
	req := &protocol.Request{
		Command: c.Target,
		Args:    c.Args,
		Env:     c.Env,
		Cwd:     c.Cwd,
	}

	if c.Stdin {
		data, err := io.ReadAll(orDefault(c.stdin, io.Reader(os.Stdin)))
		if err != nil {
			return err
		}
		req.Stdin = string(data)
	}

	conn, err := client.Dial(ctx, clientSocket())
	if err != nil {
		return err
	}
	defer conn.Close()

	code, err := conn.Exec(ctx, req, orDefault(c.stdout, io.Writer(os.Stdout)), orDefault(c.stderr, io.Writer(os.Stderr)))
	if err != nil {
		return err
	}

	if code != 0 {
		return &ExitError{Code: exitStatus(code)}
	}
	return nil
}

// Returns v unless it is nil, in which case def.
func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
