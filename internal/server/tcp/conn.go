package tcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"

	"distsocial/internal/logging"
	"distsocial/internal/protocol"
)

// conn carries the dispatcher state of one connection: the codec over the
// socket and the session token, empty until a successful join. A connection
// holds at most one active token for its whole lifetime.
type conn struct {
	srv    *Server
	codec  *protocol.Codec
	logger logging.Logger
	token  string
}

func (s *Server) handleConn(ctx context.Context, nc net.Conn) {
	c := &conn{
		srv:    s,
		codec:  protocol.NewCodec(nc),
		logger: s.logger.With("remote", nc.RemoteAddr().String()),
	}

	defer func() {
		if c.token != "" {
			s.sessions.Remove(c.token)
		}
		nc.Close()
		s.untrack(nc)
		c.logger.Info(ctx, "connection closed")
	}()

	c.logger.Info(ctx, "connection accepted")

	for {
		line, err := c.codec.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				c.logger.Warn(ctx, "read failed", "error", err)
			}
			return
		}
		if line == "" {
			return
		}
		c.logger.Debug(ctx, "request received", "line", line)

		resp := c.handle(ctx, line)

		if err := c.codec.Send(resp); err != nil {
			c.logger.Warn(ctx, "write failed", "error", err)
			return
		}
	}
}

// handle processes one request line. Any fault a handler lets escape is
// contained here: the client gets a generic error and the connection lives on.
func (c *conn) handle(ctx context.Context, line string) (resp protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(ctx, "request handler fault", "panic", r)
			resp = protocol.Error(msgInternal)
		}
	}()
	return c.dispatch(ctx, line)
}

// dispatch identifies the command by top-level key presence and routes it.
func (c *conn) dispatch(ctx context.Context, line string) protocol.Response {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return protocol.Error(msgBadJSON)
	}

	switch {
	case hasKey(raw, "join"):
		return c.handleJoin(ctx, raw)
	case hasKey(raw, "bio"):
		return c.handleBio(ctx, raw)
	case hasKey(raw, "post"):
		return c.handlePost(ctx, raw)
	case hasKey(raw, "directmessage"):
		return c.handleDirectMessage(ctx, raw)
	default:
		return protocol.Error(msgInvalidCommand)
	}
}

func hasKey(raw map[string]json.RawMessage, key string) bool {
	_, ok := raw[key]
	return ok
}

func hasAll(fields map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return false
		}
	}
	return true
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
