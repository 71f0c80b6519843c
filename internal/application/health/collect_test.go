package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buffr-host/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping() error { return p.err }

func newRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb
}

func TestCollect_NothingConnected(t *testing.T) {
	r := (&Collector{}).Collect(context.Background())
	assert.Equal(t, StatusIssue, r.Status)
	assert.Equal(t, "disconnected", r.Dependencies["database"].Status)
	assert.Equal(t, "disconnected", r.Dependencies["redis"].Status)
	assert.Equal(t, 0, r.Traffic.TotalRequests)
	assert.Equal(t, "100", r.Traffic.SuccessRate)
	assert.NotEmpty(t, r.Runtime.GoVersion)
}

func TestCollect_Traffic(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	now := time.UnixMilli(1_000_000 + 90_000)
	c := &Collector{Rdb: rdb, DB: pinger{}, Now: func() time.Time { return now }}

	r := c.Collect(ctx)
	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, "connected", r.Dependencies["redis"].Status)
	require.NotNil(t, r.Dependencies["database"].PingMs)
	seeded, err := rdb.Get(ctx, middleware.KeyStartTime).Result()
	require.NoError(t, err)
	assert.Equal(t, "1090000", seeded)

	require.NoError(t, rdb.Set(ctx, middleware.KeyReqTotal, "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqErrors, "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyResTime, "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyResCount, "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyStartTime, "1000000", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyLastReq, `{"method":"GET","path":"/api/v1/rooms","ip":"10.0.0.1"}`, 0).Err())

	r = c.Collect(ctx)
	assert.Equal(t, 10, r.Traffic.TotalRequests)
	assert.Equal(t, 2, r.Traffic.FailedCount)
	assert.Equal(t, 8, r.Traffic.SuccessCount)
	assert.Equal(t, "80.0", r.Traffic.SuccessRate)
	assert.Equal(t, "15.05", r.Traffic.AvgResponseTime)
	assert.Equal(t, "/api/v1/rooms", r.Traffic.LastRequest["path"])
	assert.EqualValues(t, 90, r.Runtime.UptimeSeconds)
}

func TestCollect_DatabaseDown(t *testing.T) {
	r := (&Collector{Rdb: newRedis(t), DB: pinger{err: errors.New("refused")}}).Collect(context.Background())
	assert.Equal(t, StatusIssue, r.Status)
	assert.Equal(t, "error", r.Dependencies["database"].Status)
	assert.Nil(t, r.Dependencies["database"].PingMs)
}

func TestCollect_Endpoints(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer up.Close()
	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	down.Close()

	c := &Collector{Rdb: newRedis(t), DB: pinger{}, Endpoints: []Endpoint{{Name: "stripe", URL: up.URL}, {Name: "frontend", URL: down.URL}}}
	r := c.Collect(context.Background())
	assert.Equal(t, "reachable", r.Dependencies["stripe"].Status)
	assert.Equal(t, "unreachable", r.Dependencies["frontend"].Status)
	assert.Equal(t, StatusOK, r.Status)
}

func TestRenderDashboard(t *testing.T) {
	r := (&Collector{Rdb: newRedis(t), DB: pinger{}}).Collect(context.Background())
	r.Traffic.LastRequest = map[string]interface{}{"method": "GET", "path": "/<script>", "ip": "10.0.0.1"}

	html, err := RenderDashboard(r)
	require.NoError(t, err)
	assert.Contains(t, html, "Buffr Host")
	assert.Contains(t, html, "All Systems Operational")
	assert.Contains(t, html, "database")
	assert.NotContains(t, html, "/<script>")

	r.Status = StatusIssue
	html, err = RenderDashboard(r)
	require.NoError(t, err)
	assert.Contains(t, html, "System Issues Detected")
}
