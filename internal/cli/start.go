package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/cruciblehq/bridged/internal/paths"
	"github.com/cruciblehq/bridged/internal/server"
	"github.com/cruciblehq/bridged/internal/settings"
)

// Represents the 'bridged start' command.
type StartCmd struct {
	Target         string         `short:"t" env:"BRIDGE_TARGET" help:"Executable clients are allowed to run (default \"claude\")." placeholder:"NAME"`
	MaxConnections *int           `env:"BRIDGE_MAX_CONNECTIONS" help:"Maximum concurrent connections; 0 means unlimited." placeholder:"N"`
	Heartbeat      *time.Duration `env:"BRIDGE_HEARTBEAT" help:"Interval between liveness log lines; 0s disables them (default 1m)." placeholder:"DURATION"`
}

// Executes the start command.
//
// Starts the bridge on a Unix domain socket and blocks until the context is
// cancelled (e.g. via SIGINT or SIGTERM), then removes the socket and
// returns.
func (c *StartCmd) Run(ctx context.Context) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("bridged is running")

	<-ctx.Done()

	slog.Info("shutting down")
	return srv.Stop()
}

// Builds the server configuration from flags, environment and config file.
func (c *StartCmd) config() (server.Config, error) {
	path, required := RootCmd.Config, true
	if path == "" {
		path, required = paths.ConfigFile(), false
	}

	file, err := settings.Load(path, required)
	if err != nil {
		return server.Config{}, err
	}

	s, err := settings.Resolve(file, settings.Overrides{
		Socket:         RootCmd.Socket,
		Target:         c.Target,
		MaxConnections: c.MaxConnections,
		Heartbeat:      c.Heartbeat,
	})
	if err != nil {
		return server.Config{}, err
	}

	return server.Config{
		SocketPath:     s.Socket,
		Target:         s.Target,
		MaxConnections: s.MaxConnections,
		Heartbeat:      s.Heartbeat,
		Logger:         slog.Default(),
	}, nil
}
