package job

import (
	"context"
	"time"

	"github.com/litetable/litetable-verifier/internal/cluster"
	"github.com/litetable/litetable-verifier/internal/peers"
	"github.com/litetable/litetable-verifier/internal/scan"
	"github.com/litetable/litetable-verifier/internal/verify"
)

// clusterScanner adapts a cluster client to the Scanner interface the
// verifier consumes.
type clusterScanner struct {
	client *cluster.Client
}

func (c *clusterScanner) OpenScan(ctx context.Context, table string, spec *scan.Spec) (verify.Cursor, error) {
	return c.client.OpenScan(ctx, table, spec)
}

// NewClusterScanner wraps a cluster client as a Scanner.
func NewClusterScanner(client *cluster.Client) verify.Scanner {
	return &clusterScanner{client: client}
}

// NewPeerDialer returns the standard PeerDialer: a scan client built from
// the resolved descriptor, sharing the job's timeout settings.
func NewPeerDialer(dialTimeout, readTimeout time.Duration) PeerDialer {
	return func(desc *peers.Descriptor) (verify.Scanner, error) {
		client, err := cluster.New(&cluster.Config{
			Address:     desc.Address,
			EnableTLS:   desc.EnableTLS,
			ServerName:  desc.ServerName,
			DialTimeout: dialTimeout,
			ReadTimeout: readTimeout,
		})
		if err != nil {
			return nil, err
		}
		return NewClusterScanner(client), nil
	}
}

// registryResolver resolves peers against the metadata registry with a
// transient connection per call.
type registryResolver struct {
	cfg *peers.RegistryConfig
}

func (r *registryResolver) Resolve(ctx context.Context, peerID string) (*peers.Descriptor, error) {
	return peers.Resolve(ctx, r.cfg, peerID)
}

// NewRegistryResolver returns a PeerResolver backed by the metadata
// registry.
func NewRegistryResolver(cfg *peers.RegistryConfig) PeerResolver {
	return &registryResolver{cfg: cfg}
}
