package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"os"
	"time"

	"github.com/cruciblehq/bridged/internal/protocol"
	"github.com/pkg/errors"
)

// A connection to the bridge.
//
// Requests on one Client are sequential; use one Client per goroutine.
type Client struct {
	conn   net.Conn      // Connection to the bridge socket.
	reader *bufio.Reader // Buffered reader for response lines.
}

// Connects to the bridge listening on socketPath.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, errors.Wrapf(ErrClient, "failed to connect to %s: %v", socketPath, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Sends a request and waits for its outcome.
//
// Stdout and stderr payloads are written to the given writers as they
// arrive; nil writers discard them. Returns the exit code once the exit
// message is received. If the bridge answers with an error message, the
// returned error is a [*RemoteError]. Cancelling ctx aborts the wait but does
// not stop the remote process.
func (c *Client) Exec(ctx context.Context, req *protocol.Request, stdout, stderr io.Writer) (int, error) {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	line, err := protocol.EncodeRequest(req)
	if err != nil {
		return 0, err
	}

	if _, err := c.conn.Write(line); err != nil {
		return 0, c.ioError(ctx, err)
	}

	for {
		resp, err := c.next()
		if err != nil {
			return 0, c.ioError(ctx, err)
		}

		switch resp.Type {
		case protocol.TypeStdout:
			if _, err := io.WriteString(stdout, resp.Data); err != nil {
				return 0, err
			}
		case protocol.TypeStderr:
			if _, err := io.WriteString(stderr, resp.Data); err != nil {
				return 0, err
			}
		case protocol.TypeExit:
			return resp.Code, nil
		case protocol.TypeError:
			return 0, &RemoteError{Message: resp.Message}
		}
	}
}

// Reads the next response line.
func (c *Client) next() (*protocol.Response, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoExit
		}
		return nil, err
	}
	return protocol.DecodeResponse(line)
}

// Prefers the context error when an I/O failure was caused by cancellation.
func (c *Client) ioError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, ErrNoExit) || errors.Is(err, protocol.ErrInvalidResponse) {
		return err
	}
	return errors.Wrap(ErrClient, err.Error())
}

// Checks that a bridge is reachable at socketPath.
//
// The path must exist, be a socket and accept a connection. The connection
// is closed immediately without sending a request.
func Probe(ctx context.Context, socketPath string) error {
	info, err := os.Stat(socketPath)
	if err != nil {
		return errors.Wrapf(ErrClient, "%v", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return errors.Wrapf(ErrNotSocket, "%s", socketPath)
	}

	c, err := Dial(ctx, socketPath)
	if err != nil {
		return err
	}
	return c.Close()
}
