package repository

import "context"

// KV is the key-value capability the task store persists through. Values are
// opaque text; Read reports found=false for a missing key without an error.
type KV interface {
	Read(ctx context.Context, key string) (value string, found bool, err error)
	Write(ctx context.Context, key, value string) error
}

// Pinger is implemented by backends that can report liveness for readiness
// probes.
type Pinger interface {
	Ping(ctx context.Context) error
}
