package peers

import (
	"context"
	"errors"
	"fmt"

	rdb "github.com/redis/go-redis/v9"
)

// RegistryConfig locates the metadata registry holding peer configurations.
type RegistryConfig struct {
	Addr string
	DB   int
}

func (c *RegistryConfig) validate() error {
	if c.Addr == "" {
		return errors.New("registry address is required")
	}
	return nil
}

// redisRegistry adapts the redis client to the registry interface.
type redisRegistry struct {
	client *rdb.Client
}

func (r *redisRegistry) Fetch(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, rdb.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Resolve opens a transient connection to the registry, resolves peerID and
// releases the connection. The connection never outlives the call: this
// happens once per job at submission time, before any worker is scheduled.
func Resolve(ctx context.Context, cfg *RegistryConfig, peerID string) (*Descriptor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := rdb.NewClient(&rdb.Options{Addr: cfg.Addr, DB: cfg.DB})
	defer func() {
		_ = client.Close()
	}()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	r := &Resolver{registry: &redisRegistry{client: client}}
	return r.Resolve(ctx, peerID)
}
