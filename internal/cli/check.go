package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/cruciblehq/bridged/internal/client"
)

// Represents the 'bridged check' command.
type CheckCmd struct {
	Timeout time.Duration `default:"5s" help:"How long to wait for the bridge to accept the connection."`
}

// Executes the check command.
//
// Succeeds if the socket exists and accepts a connection; no command is run.
func (c *CheckCmd) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	socketPath := clientSocket()
	if err := client.Probe(ctx, socketPath); err != nil {
		return err
	}

	fmt.Printf("bridge reachable at %s\n", socketPath)
	return nil
}
