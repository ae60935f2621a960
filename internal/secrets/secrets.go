// Package secrets provides access to the external secret store holding the
// OAuth credential blob and the webhook signing key.
package secrets

import "context"

// Store reads and writes opaque secret strings keyed by identifier.
type Store interface {
	// Get returns the secret value stored under id.
	Get(ctx context.Context, id string) (string, error)

	// Put overwrites the secret value stored under id.
	Put(ctx context.Context, id string, value string) error
}
