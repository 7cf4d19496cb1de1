package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/workerpool/internal/config"
	"github.com/ygrebnov/workerpool/internal/hello"
)

func get(t *testing.T, addr, path string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write([]byte("GET " + path + " HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)
	body, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(body)
}

func TestServe_StopsAfterMaxConns(t *testing.T) {
	cfg := config.Default()
	cfg.PoolSize = 2
	cfg.MaxConns = 2

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	pages := fstest.MapFS{
		"hello.html": {Data: []byte("hi")},
		"404.html":   {Data: []byte("nope")},
	}

	served := make(chan error, 1)
	go func() {
		served <- serve(context.Background(), cfg, ln, logger, hello.New(pages, 0, logger))
	}()

	require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nhi", get(t, ln.Addr().String(), "/"))
	require.Equal(t, "HTTP/1.1 404 NOT FOUND\r\nContent-Length: 4\r\n\r\nnope", get(t, ln.Addr().String(), "/x"))

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatalf("serve did not return after two connections")
	}

	require.Contains(t, logs.String(), "connection limit reached; shutting down")
	require.Contains(t, logs.String(), "shutting down worker")
	require.Contains(t, logs.String(), "pool terminated")
}

func TestServe_ContextCancel(t *testing.T) {
	cfg := config.Default()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- serve(ctx, cfg, ln, slog.New(slog.DiscardHandler), hello.New(hello.DefaultPages(), 0, nil))
	}()

	require.Contains(t, get(t, ln.Addr().String(), "/"), "<h1>Hello!</h1>")
	cancel()

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatalf("serve ignored cancellation")
	}
}

func TestRelayCmd_RequiresUpstream(t *testing.T) {
	t.Setenv("RELAY_UPSTREAM", "")
	configPath := ""
	cmd := relayCmd(&configPath)
	cmd.SetArgs(nil)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	require.ErrorIs(t, cmd.Execute(), errNoUpstream)
}
