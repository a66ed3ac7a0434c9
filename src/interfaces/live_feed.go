package interfaces

import "context"

// -----------------------------------------------------------------------------
// IFeedConnection is one open real-time connection. *websocket.Conn satisfies it.
// -----------------------------------------------------------------------------

type IFeedConnection interface {
	// ReadMessage blocks for the next frame. Any error ends the connection.
	ReadMessage() (messageType int, data []byte, err error)

	// Close releases the connection; calling it twice is harmless.
	Close() error
}

// -----------------------------------------------------------------------------
// IFeedDialer opens feed connections.
// -----------------------------------------------------------------------------

type IFeedDialer interface {
	Dial(ctx context.Context, url string) (IFeedConnection, error)
}
