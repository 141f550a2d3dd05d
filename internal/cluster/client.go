package cluster

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/litetable/litetable-verifier/internal/scan"
)

// ErrSession marks a failure opening or reading a scan session. A session
// error is fatal to the partition that owns the session; the partition may
// be retried from scratch since scans are read-only.
var ErrSession = errors.New("scan session error")

const (
	defaultDialTimeout = 10 * time.Second
	// defaultReadTimeout is the per-pull lease on an open session. A scan
	// that stays idle past it is considered expired by the server, so the
	// client gives up at the same point.
	defaultReadTimeout = 60 * time.Second
)

// Client opens scans against one LiteTable cluster over its native line
// protocol. One scan owns one connection.
type Client struct {
	address     string
	enableTLS   bool
	serverName  string
	dialTimeout time.Duration
	readTimeout time.Duration
}

type Config struct {
	Address     string
	EnableTLS   bool
	ServerName  string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, errors.New("address is required"))
	}
	if c.DialTimeout < 0 {
		errGrp = append(errGrp, errors.New("dial timeout cannot be negative"))
	}
	if c.ReadTimeout < 0 {
		errGrp = append(errGrp, errors.New("read timeout cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// New creates a scan client for the cluster at cfg.Address.
func New(cfg *Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = defaultDialTimeout
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = defaultReadTimeout
	}

	return &Client{
		address:     cfg.Address,
		enableTLS:   cfg.EnableTLS,
		serverName:  cfg.ServerName,
		dialTimeout: dialTimeout,
		readTimeout: readTimeout,
	}, nil
}

// Address returns the cluster address the client dials.
func (c *Client) Address() string {
	return c.address
}

// OpenScan dials the cluster, submits one SCAN query and returns a cursor
// over the streamed result. The cursor owns the connection; Close releases
// it.
func (c *Client) OpenScan(ctx context.Context, table string, spec *scan.Spec) (*Cursor, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: table is required", ErrSession)
	}
	if spec == nil {
		return nil, fmt.Errorf("%w: scan spec is required", ErrSession)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", ErrSession, c.address, err)
	}

	query := spec.Query(table)
	_ = conn.SetWriteDeadline(time.Now().Add(c.dialTimeout))
	if _, err = conn.Write(append([]byte(query), '\n')); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: failed to submit scan to %s: %v", ErrSession, c.address, err)
	}

	return &Cursor{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		readTimeout: c.readTimeout,
	}, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.dialTimeout}
	if !c.enableTLS {
		return dialer.DialContext(ctx, "tcp", c.address)
	}

	tlsDialer := &tls.Dialer{
		NetDialer: dialer,
		Config: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: c.serverName,
		},
	}
	return tlsDialer.DialContext(ctx, "tcp", c.address)
}
