package events

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/zishang520/socket.io/v2/socket"
)

const DefaultSocketPath = "/socket.io"

// SocketIOBroadcaster pushes events to every connected socket.io client.
type SocketIOBroadcaster struct {
	io   *socket.Server
	path string

	observers atomic.Int32
	connected chan struct{}
	connOnce  sync.Once

	mu        sync.Mutex
	srv       *http.Server
	done      chan struct{}
	closeOnce sync.Once
}

// NewSocketIOBroadcaster creates a socket.io server mounted at path. An
// empty path uses DefaultSocketPath.
func NewSocketIOBroadcaster(path string) *SocketIOBroadcaster {
	if path == "" {
		path = DefaultSocketPath
	}
	path = "/" + strings.Trim(path, "/")

	opts := socket.DefaultServerOptions()
	opts.SetPath(path)

	b := &SocketIOBroadcaster{
		io:        socket.NewServer(nil, opts),
		path:      path,
		connected: make(chan struct{}),
		done:      make(chan struct{}),
	}

	b.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		b.observers.Add(1)
		b.connOnce.Do(func() { close(b.connected) })
		logger.Op.WithFields(map[string]interface{}{"sid": string(client.Id())}).Info("Observer connected")
		client.On("disconnect", func(...any) {
			b.observers.Add(-1)
			logger.Op.WithFields(map[string]interface{}{"sid": string(client.Id())}).Info("Observer disconnected")
		})
	})

	return b
}

// Path returns the mount path of the socket.io endpoint.
func (b *SocketIOBroadcaster) Path() string {
	return b.path
}

// Handler returns the http.Handler serving the socket.io endpoint.
func (b *SocketIOBroadcaster) Handler() http.Handler {
	return b.io.ServeHandler(nil)
}

// Observers returns the number of connected clients.
func (b *SocketIOBroadcaster) Observers() int {
	return int(b.observers.Load())
}

// Publish implements Broadcaster.
func (b *SocketIOBroadcaster) Publish(event string, payload any) {
	if err := b.io.Sockets().Emit(event, payload); err != nil {
		logger.Op.WithFields(map[string]interface{}{"event": event}).Warnf("Broadcast failed: %v", err)
	}
}

// Listen binds addr and serves the socket.io endpoint in the background
// until ctx is done or Close is called. The listener is accepting
// connections when Listen returns.
func (b *SocketIOBroadcaster) Listen(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(b.path+"/", b.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	b.mu.Lock()
	b.srv = srv
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Op.WithFields(map[string]interface{}{"addr": ln.Addr().String()}).Errorf("Event server stopped: %v", err)
		}
	}()

	logger.Op.WithFields(map[string]interface{}{"addr": ln.Addr().String(), "path": b.path}).Info("Serving workflow events")
	return ln.Addr(), nil
}

// WaitForObserver blocks until a client connects, ctx is done or timeout
// elapses. It reports whether a client is connected.
func (b *SocketIOBroadcaster) WaitForObserver(ctx context.Context, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-b.connected:
		return true
	case <-ctx.Done():
	case <-timer.C:
	}
	return b.Observers() > 0
}

// Shutdown gives connected clients linger to receive events still in
// flight, then closes the server.
func (b *SocketIOBroadcaster) Shutdown(linger time.Duration) error {
	if linger > 0 && b.Observers() > 0 {
		time.Sleep(linger)
	}
	return b.Close()
}

// Close disconnects every client and stops the HTTP listener if one is
// running. Calls after the first are no-ops.
func (b *SocketIOBroadcaster) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		b.io.Close(nil)

		b.mu.Lock()
		srv := b.srv
		b.mu.Unlock()

		if srv != nil {
			err = srv.Close()
		}
	})
	return err
}
