package livefeed

import (
	"math"
	"time"

	"sleep-observer/src/interfaces"
)

// Backoff parameters for unexpected closes.
const (
	MaxAttempt = 6
	BaseDelay  = 500 * time.Millisecond
)

// Status is the connection lifecycle phase.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusOpen
	StatusReconnecting
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusReconnecting:
		return "reconnecting"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// State is owned by the client loop and only changed through Transition.
type State struct {
	Status         Status
	Attempt        int
	Generation     uint64 // current connection; events from older ones are stale
	TimerPending   bool
	TimerSeq       uint64
	ClosedByCaller bool
}

// BackoffDelay is round(500ms * 2^attempt).
func BackoffDelay(attempt int) time.Duration {
	ms := math.Round(float64(BaseDelay/time.Millisecond) * math.Pow(2, float64(attempt)))
	return time.Duration(ms) * time.Millisecond
}

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// Event is an input to the state machine.
type Event interface{ isEvent() }

type (
	// EventStart begins the first connection attempt.
	EventStart struct{}
	// EventUnavailable reports that no connection primitive exists.
	EventUnavailable struct{}
	// EventOpened carries a freshly dialed connection.
	EventOpened struct {
		Gen  uint64
		Conn interfaces.IFeedConnection
	}
	// EventMessage is one inbound frame.
	EventMessage struct {
		Gen     uint64
		Payload []byte
	}
	// EventError is a transport error on an open connection.
	EventError struct{ Gen uint64 }
	// EventClosed is the end of a connection, including failed dials.
	EventClosed struct{ Gen uint64 }
	// EventTimerFired is the reconnect timer expiring.
	EventTimerFired struct{ Seq uint64 }
	// EventTeardown is the caller shutting the client down.
	EventTeardown struct{}
)

func (EventStart) isEvent()       {}
func (EventUnavailable) isEvent() {}
func (EventOpened) isEvent()      {}
func (EventMessage) isEvent()     {}
func (EventError) isEvent()       {}
func (EventClosed) isEvent()      {}
func (EventTimerFired) isEvent()  {}
func (EventTeardown) isEvent()    {}

// -----------------------------------------------------------------------------
// Effects
// -----------------------------------------------------------------------------

// Effect is a side effect the client loop performs after a transition.
type Effect interface{ isEffect() }

type (
	// Dial opens connection Gen.
	Dial struct{ Gen uint64 }
	// CloseConn closes (or aborts the dial of) connection Gen.
	CloseConn struct{ Gen uint64 }
	// CancelTimer stops the pending reconnect timer.
	CancelTimer struct{}
	// ScheduleReconnect arms the single reconnect timer.
	ScheduleReconnect struct {
		Delay time.Duration
		Seq   uint64
	}
	// Merge applies a wire message to the snapshot.
	Merge struct{ Payload []byte }
	// LogUnavailable reports the missing connection primitive.
	LogUnavailable struct{}
)

func (Dial) isEffect()              {}
func (CloseConn) isEffect()         {}
func (CancelTimer) isEffect()       {}
func (ScheduleReconnect) isEffect() {}
func (Merge) isEffect()             {}
func (LogUnavailable) isEffect()    {}

// -----------------------------------------------------------------------------

// Transition is the whole reconnect policy. It is pure: the same state and
// event always give the same result.
func Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case EventStart:
		if s.Status != StatusIdle || s.ClosedByCaller {
			return s, nil
		}
		s.Status = StatusConnecting
		s.Generation++
		return s, []Effect{Dial{Gen: s.Generation}}

	case EventUnavailable:
		if s.Status == StatusClosed {
			return s, nil
		}
		s.Status = StatusClosed
		return s, []Effect{LogUnavailable{}}

	case EventOpened:
		if e.Gen != s.Generation || s.Status != StatusConnecting || s.ClosedByCaller {
			return s, []Effect{CloseConn{Gen: e.Gen}}
		}
		s.Status = StatusOpen
		s.Attempt = 0
		if s.TimerPending {
			s.TimerPending = false
			return s, []Effect{CancelTimer{}}
		}
		return s, nil

	case EventMessage:
		if e.Gen != s.Generation || s.Status != StatusOpen {
			return s, nil
		}
		return s, []Effect{Merge{Payload: e.Payload}}

	case EventError:
		if e.Gen != s.Generation || !s.live() {
			return s, nil
		}
		// the close that follows drives the reconnect
		return s, []Effect{CloseConn{Gen: e.Gen}}

	case EventClosed:
		if e.Gen != s.Generation || !s.live() || s.ClosedByCaller {
			return s, nil
		}
		s.Attempt = min(MaxAttempt, s.Attempt+1)
		s.Status = StatusReconnecting
		s.TimerPending = true
		s.TimerSeq++
		return s, []Effect{
			CloseConn{Gen: e.Gen},
			ScheduleReconnect{Delay: BackoffDelay(s.Attempt), Seq: s.TimerSeq},
		}

	case EventTimerFired:
		if !s.TimerPending || e.Seq != s.TimerSeq || s.ClosedByCaller {
			return s, nil
		}
		s.TimerPending = false
		s.Status = StatusConnecting
		s.Generation++
		return s, []Effect{Dial{Gen: s.Generation}}

	case EventTeardown:
		if s.ClosedByCaller {
			return s, nil
		}
		var effects []Effect
		s.ClosedByCaller = true
		if s.TimerPending {
			s.TimerPending = false
			effects = append(effects, CancelTimer{})
		}
		if s.live() {
			effects = append(effects, CloseConn{Gen: s.Generation})
		}
		s.Status = StatusClosed
		return s, effects
	}
	return s, nil
}

func (s State) live() bool {
	return s.Status == StatusConnecting || s.Status == StatusOpen
}
