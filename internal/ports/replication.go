package ports

import "context"

// SnapshotLink carries encoded snapshots between the two instances of a match.
type SnapshotLink interface {
	// Send delivers payload to the remote instance.
	Send(ctx context.Context, payload []byte) error
	// Receive blocks until the next payload from the remote instance arrives.
	Receive(ctx context.Context) ([]byte, error)
	// Close releases the link. Pending and later Receive calls fail.
	Close() error
}
