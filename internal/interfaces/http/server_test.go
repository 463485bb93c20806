package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/testutil"
)

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(config.ServerConfig{Port: 8080}, http.NewServeMux(), nil)

	assert.Equal(t, ":8080", s.srv.Addr)
	assert.Equal(t, defaultReadTimeout, s.srv.ReadTimeout)
	assert.Equal(t, defaultWriteTimeout, s.srv.WriteTimeout)
	assert.Equal(t, defaultShutdownTimeout, s.shutdownTimeout)
}

func TestNewServer_ConfiguredTimeouts(t *testing.T) {
	s := NewServer(config.ServerConfig{
		Port:            9000,
		ReadTimeout:     time.Second,
		WriteTimeout:    2 * time.Second,
		ShutdownTimeout: 3 * time.Second,
	}, http.NewServeMux(), nil)

	assert.Equal(t, time.Second, s.srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, s.srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, s.shutdownTimeout)
}

func TestServer_ServeAndStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	logger := testutil.NewMockLogger()
	s := NewServer(config.ServerConfig{}, mux, logger)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, <-done)
	assert.True(t, logger.HasMessage("info", "HTTP server stopped"))
}

//Personal.AI order the ending
