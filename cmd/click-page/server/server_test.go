package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerStartStop(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)

	addr, err := srv.Start()
	require.NoError(t, err)

	// Verify we got a real address (not :0)
	assert.NotEmpty(t, addr)
	assert.NotEqual(t, ":0", addr)
	t.Logf("Server started on %s", addr)

	assert.Equal(t, addr, srv.Addr())

	url := srv.URL()
	require.True(t, strings.HasPrefix(url, "http://localhost:"), "URL() = %q", url)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `id="testButton"`)
	assert.Contains(t, string(body), `id="result"`)
	assert.Contains(t, string(body), "Shift+Click detected!")
	assert.Contains(t, string(body), "Normal click detected")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// Verify server is stopped (should fail to connect)
	_, err = http.Get(url)
	assert.Error(t, err, "expected connection error after shutdown")
	assert.Empty(t, srv.URL())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":0", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
}

func TestServerDoubleStart(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	addr1, err := srv.Start()
	require.NoError(t, err)

	// Second start should return same address (no error)
	addr2, err := srv.Start()
	require.NoError(t, err)

	assert.Equal(t, addr1, addr2)
}

func TestServerRoutes(t *testing.T) {
	srv, err := NewServer(DefaultConfig())
	require.NoError(t, err)
	defer srv.Shutdown(context.Background())

	_, err = srv.Start()
	require.NoError(t, err)
	base := srv.URL()

	resp, err := http.Get(base + "healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Get(base + "missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(base, "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
