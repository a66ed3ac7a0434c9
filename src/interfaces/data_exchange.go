package interfaces

import "sleep-observer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for sharing the ambient snapshot with
// dashboard clients (HTTP/WebSocket push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a payload to every connected listener.
	Broadcast(payload interface{})

	// -----------------------------------------------------------------------------
	// SetSnapshot replaces the served snapshot and broadcasts it.
	SetSnapshot(snapshot models.MEnvironmentSnapshot)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
