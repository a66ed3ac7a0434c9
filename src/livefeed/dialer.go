package livefeed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sleep-observer/src/interfaces"

	"github.com/gorilla/websocket"
)

// WebsocketDialer opens feed connections with gorilla/websocket.
type WebsocketDialer struct {
	dialer *websocket.Dialer
	header http.Header
}

// NewWebsocketDialer builds a dialer; a non-positive timeout uses gorilla's default.
func NewWebsocketDialer(handshakeTimeout time.Duration, userAgent string) *WebsocketDialer {
	d := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		d.HandshakeTimeout = handshakeTimeout
	}
	header := http.Header{}
	if userAgent != "" {
		header.Set("User-Agent", userAgent)
	}
	return &WebsocketDialer{dialer: &d, header: header}
}

func (w *WebsocketDialer) Dial(ctx context.Context, url string) (interfaces.IFeedConnection, error) {
	conn, resp, err := w.dialer.DialContext(ctx, url, w.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// isCloseFrame reports whether err is an orderly close rather than a transport failure.
func isCloseFrame(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce)
}
