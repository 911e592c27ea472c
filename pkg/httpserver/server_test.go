package httpserver_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/httpserver"
)

type running struct {
	srv  *httpserver.Server
	addr string
	done chan error
}

func start(t *testing.T, ctx context.Context, h http.Handler, opts ...httpserver.Option) *running {
	t.Helper()
	started := make(chan string, 1)
	opts = append([]httpserver.Option{
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(time.Second),
		httpserver.WithStartHook(func(addr string) { started <- addr }),
	}, opts...)

	r := &running{srv: httpserver.New(opts...), done: make(chan error, 1)}
	go func() { r.done <- r.srv.Run(ctx, h) }()

	select {
	case r.addr = <-started:
	case err := <-r.done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}
	return r
}

func (r *running) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("run did not finish")
		return nil
	}
}

func TestRunAndCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := start(t, ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	resp, err := http.Get("http://" + r.addr)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	require.NoError(t, r.wait(t))
	require.NoError(t, r.srv.Shutdown(context.Background()))
}

func TestManualShutdown(t *testing.T) {
	t.Parallel()

	r := start(t, context.Background(), http.NotFoundHandler())
	require.NoError(t, r.srv.Shutdown(context.Background()))
	require.NoError(t, r.wait(t))
}

func TestStartError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := httpserver.New(httpserver.WithAddr(ln.Addr().String()))
	err = srv.Run(context.Background(), http.NotFoundHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestShutdownHooks(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string, err error) func(context.Context) error {
		return func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return err
		}
	}
	boom := errors.New("boom")

	ctx, cancel := context.WithCancel(context.Background())
	r := start(t, ctx, http.NotFoundHandler(),
		httpserver.WithShutdownHook("connections", record("connections", boom)),
		httpserver.WithShutdownHook("limiter", record("limiter", nil)),
	)
	cancel()

	err := r.wait(t)
	assert.ErrorIs(t, err, httpserver.ErrShutdown)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"connections", "limiter"}, order)

	// Repeated calls report the first result without rerunning hooks.
	assert.ErrorIs(t, r.srv.Shutdown(context.Background()), boom)
	assert.Len(t, order, 2)
}

func TestRunTwice(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := start(t, ctx, http.NotFoundHandler())

	err := r.srv.Run(ctx, http.NotFoundHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart)

	cancel()
	require.NoError(t, r.wait(t))
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { httpserver.WithAddr("") })
	assert.Panics(t, func() { httpserver.WithReadTimeout(0) })
	assert.Panics(t, func() { httpserver.WithShutdownHook("x", nil) })
	assert.Panics(t, func() { httpserver.WithStartHook(nil) })
}
