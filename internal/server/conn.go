package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ashokCh-dev/Academia-Portal/internal/logger"
	"github.com/ashokCh-dev/Academia-Portal/internal/portal"
)

// maxRequestLen caps a single request line. A client that sends more without
// a newline is disconnected rather than buffered without bound.
const maxRequestLen = 1024

// sessionState tracks where a connection is in its lifecycle. Role and
// username are bound exactly once, on the AUTH transition.
type sessionState int

const (
	stateUnauthenticated sessionState = iota
	stateAuthenticated
	stateClosed
)

type conn struct {
	server *Server
	conn   net.Conn

	state    sessionState
	role     string
	username string
}

func (s *Server) newConn(c net.Conn) *conn {
	return &conn{server: s, conn: c}
}

// serve runs the request loop: read one line, handle it, write one response
// line. Any read or write error ends the connection.
func (c *conn) serve(ctx context.Context) {
	defer c.conn.Close()
	logger.Debug("new connection from %s", c.conn.RemoteAddr())

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, maxRequestLen), maxRequestLen)
	for c.state != stateClosed {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				if errors.Is(err, bufio.ErrTooLong) {
					logger.Warn("dropping %s: request line exceeds %d bytes", c.conn.RemoteAddr(), maxRequestLen)
				} else {
					logger.Debug("read error from %s: %v", c.conn.RemoteAddr(), err)
				}
			}
			return
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		response := c.handleLine(ctx, line)
		if _, err := c.conn.Write([]byte(response + "\n")); err != nil {
			logger.Debug("write error to %s: %v", c.conn.RemoteAddr(), err)
			return
		}
	}
}

func (c *conn) handleLine(ctx context.Context, line string) string {
	switch c.state {
	case stateUnauthenticated:
		if strings.HasPrefix(line, "AUTH:") {
			return c.handleAuth(ctx, line)
		}
		// No protocol structure is disclosed before authentication.
		return "ERROR: Not authenticated"

	case stateAuthenticated:
		if line == "LOGOUT" {
			c.state = stateClosed
			logger.Info("user %q logged out", c.username)
			return "SUCCESS: Logged out"
		}
		return c.server.dispatcher.Dispatch(ctx, c.role, c.username, line)

	default:
		return "ERROR: Not authenticated"
	}
}

// handleAuth parses AUTH:<user>:<pass> and, on success, binds the session's
// role and username for the remainder of the connection.
func (c *conn) handleAuth(ctx context.Context, line string) string {
	rest := strings.TrimPrefix(line, "AUTH:")
	username, password, ok := strings.Cut(rest, ":")
	if !ok || username == "" || password == "" {
		return "ERROR:Invalid authentication format"
	}

	role, err := c.server.portal.Authenticate(ctx, username, password)
	if err != nil {
		logger.Debug("authentication failed for %q: %v", username, err)
		return "ERROR:" + portal.MessageOf(err)
	}

	c.state = stateAuthenticated
	c.role = role
	c.username = username
	logger.Info("user %q authenticated as %s", username, role)
	return "SUCCESS:" + role
}
