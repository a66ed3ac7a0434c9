package livefeed

import (
	"context"
	"sync"

	"sleep-observer/src/interfaces"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"

	"github.com/google/uuid"
)

// Options configures a Client.
type Options struct {
	Endpoint  string
	Dialer    interfaces.IFeedDialer // nil: no connection primitive, the client never connects
	Scheduler Scheduler
	Defaults  models.MEnvironmentDefaults
	Logger    *logger.Logger
	Metrics   *Metrics
	// Backlog is the per-subscriber channel capacity (minimum 1).
	Backlog int
	// OnStateChange runs on the client loop after every state change and must not block.
	OnStateChange func(State)
}

// Client keeps one environment snapshot fresh from a real-time feed. A single
// loop goroutine owns the connection, the reconnect timer and the state;
// dial and read goroutines only post events tagged with their generation.
type Client struct {
	endpoint      string
	dialer        interfaces.IFeedDialer
	scheduler     Scheduler
	logger        *logger.Logger
	metrics       *Metrics
	backlog       int
	onStateChange func(State)

	events chan Event
	stop   chan struct{}
	done   chan struct{}

	lifecycle sync.Mutex
	started   bool
	stopped   bool

	// loop-owned
	state     State
	conns     map[uint64]interfaces.IFeedConnection
	dials     map[uint64]context.CancelFunc
	stopTimer func() bool

	mu          sync.RWMutex
	snapshot    models.MEnvironmentSnapshot
	published   State
	subscribers map[int]chan models.MEnvironmentSnapshot
	nextSubID   int
	subsClosed  bool
}

// -----------------------------------------------------------------------------

// NewClient creates an idle client seeded with the configured defaults.
func NewClient(opts Options) *Client {
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger(nil, "LiveFeed")
	}
	c := &Client{
		endpoint:      opts.Endpoint,
		dialer:        opts.Dialer,
		scheduler:     opts.Scheduler,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		backlog:       max(1, opts.Backlog),
		onStateChange: opts.OnStateChange,
		events:        make(chan Event),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		conns:         make(map[uint64]interfaces.IFeedConnection),
		dials:         make(map[uint64]context.CancelFunc),
		snapshot:      models.NewSnapshotFromDefaults(opts.Defaults),
		subscribers:   make(map[int]chan models.MEnvironmentSnapshot),
	}
	c.metrics.Observe(c.state)
	return c
}

// -----------------------------------------------------------------------------

// Start launches the loop and the first connection attempt. Without an
// endpoint it returns ErrNoEndpoint and the client stays idle. Calling Start
// again, or after Teardown, does nothing.
func (c *Client) Start() error {
	if c.endpoint == "" {
		c.logger.Warning("No live feed endpoint configured, snapshot stays at defaults")
		return ErrNoEndpoint
	}

	c.lifecycle.Lock()
	if c.started || c.stopped {
		c.lifecycle.Unlock()
		return nil
	}
	c.started = true
	c.lifecycle.Unlock()

	go c.run()

	if c.dialer == nil {
		c.post(EventUnavailable{})
	} else {
		c.post(EventStart{})
	}
	return nil
}

// Teardown stops the client for good: the pending timer is cancelled, the
// open connection is closed and no reconnect happens afterwards. It blocks
// until the loop has exited and is safe to call any number of times.
func (c *Client) Teardown() {
	c.lifecycle.Lock()
	if c.stopped {
		c.lifecycle.Unlock()
		<-c.done
		return
	}
	c.stopped = true
	started := c.started
	c.lifecycle.Unlock()

	if !started {
		c.closeSubscribers()
		close(c.done)
		return
	}
	close(c.stop)
	<-c.done
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of the current snapshot.
func (c *Client) Snapshot() models.MEnvironmentSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Clone()
}

// State returns the last published connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.published
}

// Endpoint is the resolved feed URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Subscribe returns a channel that receives a copy of the snapshot now and
// after every change. Slow readers only ever see the latest snapshot. The
// channel is closed by cancel or Teardown.
func (c *Client) Subscribe() (<-chan models.MEnvironmentSnapshot, func()) {
	ch := make(chan models.MEnvironmentSnapshot, c.backlog)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subsClosed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = ch
	ch <- c.snapshot.Clone()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subscribers[id]; ok {
			delete(c.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// -----------------------------------------------------------------------------
// Event loop
// -----------------------------------------------------------------------------

func (c *Client) run() {
	defer close(c.done)
	for {
		select {
		case ev := <-c.events:
			c.apply(ev)
		case <-c.stop:
			c.apply(EventTeardown{})
			c.releaseAll()
			c.closeSubscribers()
			return
		}
	}
}

// post hands an event to the loop. It returns false once the loop has exited.
func (c *Client) post(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *Client) apply(ev Event) {
	prev := c.state
	next, effects := Transition(prev, ev)
	c.state = next

	if opened, ok := ev.(EventOpened); ok && next.Status == StatusOpen && prev.Status == StatusConnecting {
		c.adopt(opened)
	}
	for _, eff := range effects {
		c.perform(eff, ev)
	}

	if next != prev {
		c.mu.Lock()
		c.published = next
		c.mu.Unlock()
		c.metrics.Observe(next)
		if next.Status != prev.Status {
			c.logger.Debug("Live feed %s -> %s (attempt %d)", prev.Status, next.Status, next.Attempt)
		}
		if c.onStateChange != nil {
			c.onStateChange(next)
		}
	}
}

func (c *Client) perform(eff Effect, cause Event) {
	switch e := eff.(type) {
	case Dial:
		c.stopTimer = nil
		ctx, cancel := context.WithCancel(context.Background())
		c.dials[e.Gen] = cancel
		go c.dial(ctx, e.Gen, uuid.NewString())

	case CloseConn:
		if opened, ok := cause.(EventOpened); ok && opened.Gen == e.Gen && c.conns[e.Gen] == nil {
			opened.Conn.Close()
		}
		c.release(e.Gen)

	case CancelTimer:
		if c.stopTimer != nil {
			c.stopTimer()
			c.stopTimer = nil
		}

	case ScheduleReconnect:
		if c.stopTimer != nil {
			c.stopTimer()
		}
		seq := e.Seq
		c.stopTimer = c.scheduler.AfterFunc(e.Delay, func() {
			c.post(EventTimerFired{Seq: seq})
		})
		c.metrics.ReconnectScheduled()
		c.logger.Info("Live feed closed, reconnecting in %v (attempt %d)", e.Delay, c.state.Attempt)

	case Merge:
		c.merge(e.Payload)

	case LogUnavailable:
		c.logger.Error("No real-time connection support available, live feed disabled")
	}
}

// adopt takes ownership of a freshly opened connection and starts its reader.
func (c *Client) adopt(ev EventOpened) {
	if cancel, ok := c.dials[ev.Gen]; ok {
		cancel()
		delete(c.dials, ev.Gen)
	}
	c.conns[ev.Gen] = ev.Conn
	c.logger.Info("Live feed connected to %s", c.endpoint)
	go c.read(ev.Gen, ev.Conn)
}

func (c *Client) release(gen uint64) {
	if cancel, ok := c.dials[gen]; ok {
		cancel()
		delete(c.dials, gen)
	}
	if conn, ok := c.conns[gen]; ok {
		conn.Close()
		delete(c.conns, gen)
	}
}

func (c *Client) releaseAll() {
	for gen := range c.dials {
		c.release(gen)
	}
	for gen := range c.conns {
		c.release(gen)
	}
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
}

// -----------------------------------------------------------------------------
// Connection goroutines
// -----------------------------------------------------------------------------

func (c *Client) dial(ctx context.Context, gen uint64, id string) {
	c.logger.Debug("Dialing live feed %s (connection %s)", c.endpoint, id)
	conn, err := c.dialer.Dial(ctx, c.endpoint)
	if err != nil {
		c.logger.Warning("Live feed dial failed (connection %s): %v", id, err)
		c.post(EventClosed{Gen: gen})
		return
	}
	if !c.post(EventOpened{Gen: gen, Conn: conn}) {
		conn.Close()
	}
}

func (c *Client) read(gen uint64, conn interfaces.IFeedConnection) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !isCloseFrame(err) {
				c.post(EventError{Gen: gen})
			}
			c.post(EventClosed{Gen: gen})
			return
		}
		if !c.post(EventMessage{Gen: gen, Payload: data}) {
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Snapshot fan-out
// -----------------------------------------------------------------------------

func (c *Client) merge(payload []byte) {
	c.mu.RLock()
	prior := c.snapshot
	c.mu.RUnlock()

	next, changed, ok := MergeSnapshot(prior, payload)
	if !ok {
		c.metrics.Dropped()
		c.logger.Debug("Dropped malformed live feed message (%d bytes)", len(payload))
		return
	}
	c.metrics.Merged()
	if !changed {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = next
	for _, ch := range c.subscribers {
		offerLatest(ch, next.Clone())
	}
}

// offerLatest sends without blocking, evicting the oldest queued snapshot if needed.
func offerLatest(ch chan models.MEnvironmentSnapshot, s models.MEnvironmentSnapshot) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (c *Client) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subscribers {
		close(ch)
		delete(c.subscribers, id)
	}
	c.subsClosed = true
}
