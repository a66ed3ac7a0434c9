package interfaces

import (
	"context"
	"sync"
)

// -----------------------------------------------------------------------------
// ISnapshotSource produces partial environment updates in live-feed wire form
// (a JSON object holding any subset of the snapshot fields).
// -----------------------------------------------------------------------------

type ISnapshotSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Start begins producing patches
	// ctx: controls the lifecycle (cancellation stops the source)
	// outputChan: channel to push wire patches to
	// wg: WaitGroup to signal when the source has fully stopped (also on a failed Start)
	Start(ctx context.Context, outputChan chan<- []byte, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates the source (legacy/manual stop)
	// Cancelling the context passed to Start is enough in most cases.
	Stop() error
}
