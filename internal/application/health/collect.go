package health

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"buffr-host/internal/middleware"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	StatusOK    = "ok"
	StatusIssue = "issue"

	depConnected    = "connected"
	depDisconnected = "disconnected"
	depError        = "error"
	depReachable    = "reachable"
	depUnreachable  = "unreachable"
)

// DBPinger is satisfied by database.Pinger.
type DBPinger interface {
	Ping() error
}

// Endpoint is an external HTTP dependency shown on the dashboard. Endpoints never
// change the overall status.
type Endpoint struct {
	Name string
	URL  string
}

// Report is the payload of /health/json and the dashboard.
type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

// MemoryInfo is in MiB.
type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
	Sys      int `json:"sys"`
}

type TrafficInfo struct {
	TotalRequests   int                    `json:"totalRequests"`
	SuccessCount    int                    `json:"successCount"`
	FailedCount     int                    `json:"failedCount"`
	SuccessRate     string                 `json:"successRate"`
	AvgResponseTime string                 `json:"avgResponseTime"`
	LastRequest     map[string]interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Collector gathers the health report.
type Collector struct {
	Rdb        *redis.Client
	DB         DBPinger
	Endpoints  []Endpoint
	HTTPClient *http.Client
	Now        func() time.Time
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Collect pings the database, Redis and every endpoint, and reads the traffic
// counters kept by the health marker middleware. The status is "ok" only when
// both the database and Redis answer.
func (c *Collector) Collect(ctx context.Context) Report {
	report := Report{Dependencies: make(map[string]DepStatus)}

	var mu sync.Mutex
	set := func(name string, dep DepStatus) {
		mu.Lock()
		report.Dependencies[name] = dep
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set("database", c.pingDB())
		return nil
	})
	for _, p := range c.Endpoints {
		g.Go(func() error {
			set(p.Name, c.checkEndpoint(gctx, p.URL))
			return nil
		})
	}

	startMs := c.now().UnixMilli()
	redisDep := DepStatus{Status: depDisconnected}
	report.Traffic = TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"}
	if c.Rdb != nil {
		start := time.Now()
		if err := c.Rdb.Ping(ctx).Err(); err != nil {
			redisDep.Status = depError
		} else {
			redisDep = DepStatus{Status: depConnected, PingMs: since(start)}
			report.Traffic, startMs = c.traffic(ctx, startMs)
		}
	}
	_ = g.Wait()
	report.Dependencies["redis"] = redisDep

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (c.now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	report.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{Alloc: mib(m.Alloc), HeapUsed: mib(m.HeapInuse), Sys: mib(m.Sys)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	report.Status = StatusIssue
	if report.Dependencies["database"].Status == depConnected && redisDep.Status == depConnected {
		report.Status = StatusOK
	}
	return report
}

func (c *Collector) pingDB() DepStatus {
	if c.DB == nil {
		return DepStatus{Status: depDisconnected}
	}
	start := time.Now()
	if err := c.DB.Ping(); err != nil {
		return DepStatus{Status: depError}
	}
	return DepStatus{Status: depConnected, PingMs: since(start)}
}

// traffic reads the counters and returns the recorded start time, seeding it
// on first use.
func (c *Collector) traffic(ctx context.Context, fallbackStart int64) (TrafficInfo, int64) {
	vals, err := c.Rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	info := TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"}
	if err != nil {
		return info, fallbackStart
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	start := fallbackStart
	if t, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		start = t
	} else {
		c.Rdb.Set(ctx, middleware.KeyStartTime, fallbackStart, 0)
	}

	info.TotalRequests, _ = strconv.Atoi(str(0))
	info.FailedCount, _ = strconv.Atoi(str(1))
	info.SuccessCount = info.TotalRequests - info.FailedCount
	if info.TotalRequests > 0 {
		info.SuccessRate = strconv.FormatFloat(float64(info.SuccessCount)/float64(info.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	if count, _ := strconv.Atoi(str(3)); count > 0 {
		info.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if raw := str(5); raw != "" {
		_ = json.Unmarshal([]byte(raw), &info.LastRequest)
	}
	return info, start
}

func (c *Collector) checkEndpoint(ctx context.Context, url string) DepStatus {
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return DepStatus{Status: depUnreachable}
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return DepStatus{Status: depUnreachable}
	}
	resp.Body.Close()
	return DepStatus{Status: depReachable, PingMs: since(start)}
}

func since(start time.Time) *int64 {
	ms := time.Since(start).Milliseconds()
	return &ms
}

func mib(b uint64) int {
	return int(b / 1024 / 1024)
}
