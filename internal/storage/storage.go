// internal/storage/storage.go
package storage

import "github.com/traveller-vtt/dv/internal/host"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	host.Store
	host.Seeder
}
