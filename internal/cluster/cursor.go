package cluster

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/litetable/litetable-verifier/internal/litetable"
)

// Cursor is an open, stateful scan session over one cluster. It is owned by
// exactly one worker and is never safe for concurrent use.
type Cursor struct {
	conn        net.Conn
	reader      *bufio.Reader
	readTimeout time.Duration

	mu        sync.Mutex
	exhausted bool
	closed    bool
}

// Next pulls exactly one row from the session. It returns (nil, nil) once
// the scan is exhausted and keeps returning that on further calls. A read
// failure, including an expired session lease, is a session error: the
// cursor is dead and the owning partition task must fail.
func (c *Cursor) Next(ctx context.Context) (*litetable.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exhausted {
		return nil, nil
	}
	if c.closed {
		return nil, fmt.Errorf("%w: cursor is closed", ErrSession)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSession, err)
	}

	deadline := time.Now().Add(c.readTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetReadDeadline(deadline)

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read next row: %v", ErrSession, err)
	}

	kind, payload := decodeReply(bytes.TrimRight(line, "\r\n"))
	switch kind {
	case replyRow:
		var wire litetable.WireRow
		if err = json.Unmarshal(payload, &wire); err != nil {
			return nil, fmt.Errorf("%w: malformed row payload: %v", ErrSession, err)
		}
		return wire.Flatten(), nil
	case replyEnd:
		c.exhausted = true
		return nil, nil
	case replyError:
		return nil, fmt.Errorf("%w: server reported: %s", ErrSession, payload)
	default:
		return nil, fmt.Errorf("%w: unexpected reply line", ErrSession)
	}
}

// Close releases the session's connection. It is safe to call more than
// once; only the first call does any work.
func (c *Cursor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
