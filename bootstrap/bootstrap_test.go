package bootstrap

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"buffr-host/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return strconv.Itoa(port)
}

func TestServe_StopsWhenContextEnds(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	port := freePort(t)
	cfg := &config.Config{
		Env:           "test",
		Port:          port,
		RedisURL:      "redis://" + mr.Addr(),
		DatabaseURL:   ":memory:",
		DBMaxConns:    1,
		AutoMigrate:   true,
		SweepInterval: time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, cfg) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:" + port + "/health/json")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_RequiresRedis(t *testing.T) {
	err := Serve(context.Background(), &config.Config{DatabaseURL: ":memory:"})
	assert.Error(t, err)
}
