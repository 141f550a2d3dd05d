package peers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

//go:generate mockgen -destination=resolver_mock.go -package=peers -source=resolver.go

const keyPrefix = "litetable:replication:peer:"

var (
	// ErrPeerNotFound means no peer with the given id is registered.
	ErrPeerNotFound = errors.New("replication peer not found")
	// ErrRegistryUnavailable means the metadata registry could not be
	// reached or answered with a transport failure.
	ErrRegistryUnavailable = errors.New("peer registry unavailable")
)

// Descriptor is the resolved connection information for a replication peer.
// It is immutable once resolved and shared read-only by every partition
// worker for the duration of one job.
type Descriptor struct {
	Address    string `json:"address"`
	EnableTLS  bool   `json:"enable_tls"`
	ServerName string `json:"server_name,omitempty"`
}

func (d *Descriptor) validate() error {
	if d.Address == "" {
		return fmt.Errorf("peer config has no address")
	}
	return nil
}

// registry is the slice of the metadata store the resolver needs. The redis
// client satisfies it through the adapter in redis.go.
type registry interface {
	// Fetch returns the raw peer document for a key. found is false when the
	// key does not exist; err is reserved for transport failures.
	Fetch(ctx context.Context, key string) (value []byte, found bool, err error)
}

// Resolver looks up replication peers in the metadata registry.
type Resolver struct {
	registry registry
}

// Resolve fetches the stored configuration for peerID and extracts its
// connection descriptor. ErrPeerNotFound is returned for an unregistered
// peer and ErrRegistryUnavailable when the registry cannot be reached.
func (r *Resolver) Resolve(ctx context.Context, peerID string) (*Descriptor, error) {
	if peerID == "" {
		return nil, fmt.Errorf("%w: empty peer id", ErrPeerNotFound)
	}

	raw, found, err := r.registry.Fetch(ctx, keyPrefix+peerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrPeerNotFound, peerID)
	}

	var desc Descriptor
	if err = json.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("failed to decode peer config for %s: %w", peerID, err)
	}
	if err = desc.validate(); err != nil {
		return nil, fmt.Errorf("invalid peer config for %s: %w", peerID, err)
	}

	return &desc, nil
}
