package server

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cruciblehq/bridged/internal/paths"
	"github.com/cruciblehq/bridged/internal/protocol"
	"github.com/cruciblehq/bridged/internal/runtime"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

const (

	// Default target executable.
	DefaultTarget = "claude"

	// Upper bound for the startup version probe.
	versionProbeTimeout = 10 * time.Second

	// Bounds of the delay applied after consecutive accept failures.
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second

	// Sent to connections refused because the server is full.
	capacityMessage = "Bridge server at capacity. Please try again later."
)

// Holds server configuration.
type Config struct {
	SocketPath     string        // Unix socket path. Empty uses [paths.Socket].
	Target         string        // Target executable. Empty uses [DefaultTarget].
	MaxConnections int           // Maximum concurrent connections. Zero or negative means unlimited.
	Heartbeat      time.Duration // Interval between liveness log lines. Zero disables them.
	Logger         *slog.Logger  // Logger for server events. Nil uses [slog.Default].
}

// Snapshot of server counters.
type Stats struct {
	Active   int64         // Connections currently open.
	Requests int64         // Requests handed to the executor since start.
	Uptime   time.Duration // Time since [Server.Start].
}

// Listens on a Unix domain socket and runs the target for each request.
type Server struct {
	socketPath string              // Path to the Unix socket file.
	pidPath    string              // Path to the PID file beside the socket.
	runtime    *runtime.Runtime    // Executor bound to the target.
	slots      *semaphore.Weighted // Connection slots; nil when unlimited.
	heartbeat  time.Duration       // Interval between liveness log lines.
	log        *slog.Logger        // Server logger.
	listener   net.Listener        // Listener for incoming connections.
	watcher    *fsnotify.Watcher   // Watches the socket directory; nil if unavailable.
	startedAt  time.Time           // Timestamp when the server started.
	active     atomic.Int64        // Open connections.
	requests   atomic.Int64        // Executed requests.
	done       chan struct{}       // Closed on shutdown.
	stopOnce   sync.Once           // Guards shutdown.
	stopErr    error               // Result of the first Stop.
}

// Creates a new server instance.
//
// The target is resolved immediately; if it cannot be found on the search
// path the error matches [runtime.ErrTargetNotFound] and nothing is created
// on disk. The socket is not opened until [Server.Start] is called.
func New(cfg Config) (*Server, error) {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		socketPath = paths.Socket()
	}
	socketPath = filepath.Clean(socketPath)

	target := cfg.Target
	if target == "" {
		target = DefaultTarget
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	rt, err := runtime.New(target)
	if err != nil {
		return nil, err
	}

	var slots *semaphore.Weighted
	if cfg.MaxConnections > 0 {
		slots = semaphore.NewWeighted(int64(cfg.MaxConnections))
	}

	return &Server{
		socketPath: socketPath,
		pidPath:    paths.PIDFile(socketPath),
		runtime:    rt,
		slots:      slots,
		heartbeat:  cfg.Heartbeat,
		log:        log,
		done:       make(chan struct{}),
	}, nil
}

// Returns the path of the Unix socket.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Opens the Unix socket and begins accepting connections.
func (s *Server) Start() error {
	s.log.Info("target resolved", "target", s.runtime.Target(), "path", s.runtime.Path())
	s.probeVersion()

	listener, err := listen(s.socketPath, s.log)
	if err != nil {
		return err
	}

	s.listener = listener
	s.startedAt = time.Now()

	if err := writePID(s.pidPath); err != nil {
		s.log.Warn("failed to write PID file", "path", s.pidPath, "error", err)
	}

	if err := s.watchSocket(); err != nil {
		s.log.Warn("failed to watch socket directory", "error", err)
	}

	s.log.Info("server listening on socket", "path", s.socketPath, "pid", os.Getpid())

	go s.accept()
	if s.heartbeat > 0 {
		go s.beat()
	}
	return nil
}

// Logs the target's self-reported version. Failure is not fatal.
func (s *Server) probeVersion() {
	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()

	version, err := s.runtime.Version(ctx)
	if err != nil {
		s.log.Warn("could not get target version", "target", s.runtime.Target(), "error", err)
		return
	}
	s.log.Info("target version", "target", s.runtime.Target(), "version", version)
}

// Creates the Unix socket listener, removes any stale socket from a previous
// run, and applies permissions.
//
// An existing file at the socket path is always removed without checking
// whether another instance is still serving it.
func listen(socketPath string, log *slog.Logger) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), paths.DefaultDirMode); err != nil {
		return nil, errors.Wrapf(ErrServer, "failed to create socket directory: %v", err)
	}

	if err := os.Remove(socketPath); err == nil {
		log.Info("removed stale socket", "path", socketPath)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrServer, "failed to remove stale socket %s: %v", socketPath, err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, errors.Wrapf(ErrServer, "failed to listen on %s: %v", socketPath, err)
	}

	if err := os.Chmod(socketPath, paths.SocketMode); err != nil {
		listener.Close()
		return nil, errors.Wrapf(ErrServer, "failed to chmod socket %s: %v", socketPath, err)
	}

	return listener, nil
}

// Shuts down the server and cleans up resources.
//
// Closes the listener and removes the socket and PID files. Files that are
// already gone are not an error. Connections that are already open keep
// running until the process exits. Safe to call more than once.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)

		if s.watcher != nil {
			s.watcher.Close()
		}

		if s.listener != nil {
			s.listener.Close()
		}

		if err := removeIfExists(s.socketPath); err != nil {
			s.stopErr = errors.Wrapf(ErrServer, "failed to remove socket: %v", err)
		}
		if err := removeIfExists(s.pidPath); err != nil {
			s.log.Warn("failed to remove PID file", "path", s.pidPath, "error", err)
		}
	})
	return s.stopErr
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Returns a snapshot of the server counters.
func (s *Server) Stats() Stats {
	var uptime time.Duration
	if !s.startedAt.IsZero() {
		uptime = time.Since(s.startedAt).Truncate(time.Second)
	}
	return Stats{
		Active:   s.active.Load(),
		Requests: s.requests.Load(),
		Uptime:   uptime,
	}
}

// Accepts connections in a loop until the server shuts down.
//
// Accept failures are logged and retried with a growing delay so a
// persistent failure (e.g. file descriptor exhaustion) does not spin.
func (s *Server) accept() {
	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}

			backoff = min(max(backoff*2, minAcceptBackoff), maxAcceptBackoff)
			s.log.Error("accept error", "error", err, "retry", backoff)

			select {
			case <-s.done:
				return
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0

		if s.slots != nil && !s.slots.TryAcquire(1) {
			go s.reject(conn)
			continue
		}

		go s.handle(conn)
	}
}

// Refuses a connection because every slot is taken.
func (s *Server) reject(conn net.Conn) {
	defer conn.Close()

	s.log.Warn("connection refused, server at capacity", peerAttrs(conn)...)
	if err := protocol.NewWriter(conn).Write(protocol.Error(capacityMessage)); err != nil {
		s.log.Debug("write error", "error", err)
	}
}

// Processes a single connection.
//
// Reads newline-delimited requests until the peer closes the connection or
// an I/O error occurs, serving each line completely before reading the next.
// Empty lines are skipped. A trailing line without a newline is discarded.
// Commands run under a context that is never cancelled, so they complete
// even if the server stops meanwhile.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	s.active.Add(1)
	defer s.active.Add(-1)

	if s.slots != nil {
		defer s.slots.Release(1)
	}

	log := s.log.With("conn", uuid.NewString())
	log.Info("client connected", peerAttrs(conn)...)
	defer log.Info("client disconnected")

	ctx := context.Background()
	reader := bufio.NewReader(conn)
	w := protocol.NewWriter(conn)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				log.Debug("discarding incomplete line", "bytes", len(line))
			}
			log.Debug("connection closed", "reason", err)
			return
		}

		line = line[:len(line)-1]
		if len(line) == 0 {
			continue
		}

		if err := s.serve(ctx, log, w, line); err != nil {
			log.Debug("write error", "error", err)
			return
		}
	}
}

// Writes the daemon PID to the PID file beside the socket for external
// supervision.
func writePID(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), paths.DefaultFileMode)
}

// Removes path, treating a missing file as success.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
