package datasource

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"sleep-observer/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name    string
	patch   []byte
	failErr error
	stopped bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Start(ctx context.Context, out chan<- []byte, wg *sync.WaitGroup) error {
	if s.failErr != nil {
		wg.Done()
		return s.failErr
	}
	go func() {
		defer wg.Done()
		out <- s.patch
		<-ctx.Done()
	}()
	return nil
}

func (s *stubSource) Stop() error {
	s.stopped = true
	return nil
}

func TestManagerStartsAndStopsSources(t *testing.T) {
	log := logger.NewLoggerWithWriter(nil, "Test", io.Discard)
	ok := &stubSource{name: "bedroom", patch: []byte(`{"temperature":21}`)}
	broken := &stubSource{name: "hall", failErr: errors.New("refused")}
	m := NewMultiSourceManager(nil, log)
	require.NoError(t, m.AddSource(ok))
	require.NoError(t, m.AddSource(broken))
	assert.Error(t, m.AddSource(ok))
	assert.Equal(t, []string{"bedroom", "hall"}, m.Names())
	got, err := m.GetSource("hall")
	require.NoError(t, err)
	assert.Same(t, broken, got)
	_, err = m.GetSource("attic")
	assert.Error(t, err)

	out := make(chan []byte, 4)
	var wg sync.WaitGroup
	require.NoError(t, m.Start(context.Background(), out, &wg))
	assert.Error(t, m.Start(context.Background(), out, &wg))

	assert.JSONEq(t, `{"temperature":21}`, string(<-out))

	require.NoError(t, m.Stop())
	wg.Wait()
	require.NoError(t, m.Stop())
}

func TestManagerAddWhileRunningAndRemove(t *testing.T) {
	log := logger.NewLoggerWithWriter(nil, "Test", io.Discard)
	m := NewMultiSourceManager(nil, log)

	out := make(chan []byte, 1)
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Start(ctx, out, &wg))

	late := &stubSource{name: "late", patch: []byte(`{"humidity":40}`)}
	require.NoError(t, m.AddSource(late))
	assert.JSONEq(t, `{"humidity":40}`, string(<-out))

	require.NoError(t, m.RemoveSource("late"))
	assert.True(t, late.stopped)
	assert.Error(t, m.RemoveSource("late"))

	cancel()
	wg.Wait()
}
