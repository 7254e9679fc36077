package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_ServesAndShutsDownInReverseOrder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := New(handler, Options{Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second, ShutdownTimeout: 2 * time.Second}, testLogger())

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string, err error) ShutdownFunc {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return err
		}
	}
	srv.OnShutdown("storage", record("storage", nil))
	srv.OnShutdown("redis", record("redis", errors.New("already closed")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		return !strings.HasSuffix(srv.Addr(), ":0")
	}, 2*time.Second, 10*time.Millisecond)

	_, port, err := net.SplitHostPort(srv.Addr())
	require.NoError(t, err)

	resp, err := http.Get("http://127.0.0.1:" + port)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis: already closed")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"redis", "storage"}, order)
}
