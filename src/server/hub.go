package server

import (
	"encoding/json"
	"net/http"

	"sleep-observer/src/livefeed"
	"sleep-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			// Send current state on connect
			client.send <- s.currentMessage("snapshot")

		case client := <-s.refresh:
			if _, ok := s.clients[client]; ok {
				select {
				case client.send <- s.currentMessage("snapshot"):
				default:
				}
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.connections.Store(int64(len(s.clients)))
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect so the hub never blocks
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.connections.Store(int64(len(s.clients)))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// SetSnapshot replaces the served snapshot, records it and pushes it to clients.
func (s *DashboardServer) SetSnapshot(snapshot models.MEnvironmentSnapshot) {
	s.stateMutex.Lock()
	s.storeLocked(snapshot)
	s.stateMutex.Unlock()

	s.Broadcast(s.currentMessage("update"))
}

// -----------------------------------------------------------------------------

// ApplyPatch merges a wire patch (sensor relay) into the served snapshot.
// Returns false when the patch is malformed or changes nothing.
func (s *DashboardServer) ApplyPatch(payload []byte) bool {
	s.stateMutex.Lock()
	next, changed, ok := livefeed.MergeSnapshot(s.latest.Clone(), payload)
	if ok && changed {
		s.storeLocked(next)
	}
	s.stateMutex.Unlock()

	if !ok {
		s.Logger.Debug("Dropped malformed sensor patch")
		return false
	}
	if !changed {
		return false
	}
	s.Broadcast(s.currentMessage("update"))
	return true
}

// storeLocked swaps in a snapshot and records it. Caller holds stateMutex.
// History is appended under the same lock so records keep write order.
func (s *DashboardServer) storeLocked(snapshot models.MEnvironmentSnapshot) {
	s.latest = snapshot.Clone()
	s.latestAt = s.opts.Now()
	s.opts.History.Append(models.MSnapshotRecord{At: s.latestAt, Snapshot: s.latest})
}

// -----------------------------------------------------------------------------

// Broadcast queues a payload for every websocket client. Drops when the
// queue is full or the server is stopping.
func (s *DashboardServer) Broadcast(message interface{}) {
	select {
	case <-s.done:
	case s.broadcast <- message:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update")
	}
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

func (s *DashboardServer) currentMessage(kind string) models.MEnvironmentMessage {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	snap := s.latest.Clone()
	return models.MEnvironmentMessage{
		Type:     kind,
		At:       s.latestAt,
		Snapshot: snap,
		Grades:   gradesFor(snap),
	}
}

func (s *DashboardServer) connectionCount() int {
	return int(s.connections.Load())
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		send: make(chan interface{}, 16),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage answers {"command":"refresh"} with the current snapshot.
// Anything that is not JSON closes the connection.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "refresh" {
		return
	}

	select {
	case s.refresh <- client:
	case <-s.done:
	}
}
