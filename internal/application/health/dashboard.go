package health

import (
	"bytes"
	"encoding/json"
	"html/template"
	"sort"
)

type dependencyRow struct {
	Name   string
	OK     bool
	Status string
	PingMs *int64
}

type dashboardView struct {
	Report
	Rows    []dependencyRow
	Payload template.JS
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Buffr Host · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>
    :root { --ink: #0f2a3d; --sea: #1d7fa6; --sand: #f4efe6; --muted: #6b7a88; --bad: #c0392b; }
    body { margin: 0; background: var(--sand); color: var(--ink); font-family: system-ui, sans-serif; }
    main { max-width: 960px; margin: 48px auto; padding: 0 20px; }
    h1 { font-size: 40px; margin: 0 0 6px; letter-spacing: -1px; }
    h1.issue { color: var(--bad); }
    .sub { color: var(--muted); margin: 0 0 28px; font-weight: 600; }
    .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(260px, 1fr)); gap: 16px; }
    .card { background: #fff; border-radius: 18px; padding: 24px; box-shadow: 0 12px 40px -20px rgba(15, 42, 61, 0.3); }
    .label { text-transform: uppercase; font-size: 11px; letter-spacing: 2px; color: var(--muted); font-weight: 800; margin-bottom: 14px; }
    .big { font-size: 34px; font-weight: 800; margin-bottom: 8px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; border-bottom: 1px solid #eef1f4; font-size: 14px; }
    .row:last-child { border-bottom: none; }
    .ok { color: var(--sea); font-weight: 700; }
    .err { color: var(--bad); font-weight: 700; }
    footer { margin-top: 20px; font-family: monospace; color: var(--muted); display: flex; gap: 18px; }
    button { background: var(--sea); color: #fff; border: none; border-radius: 10px; padding: 8px 16px; font-weight: 700; cursor: pointer; }
    #errors { margin-top: 16px; white-space: pre-wrap; font-family: monospace; font-size: 12px; }
  </style>
</head>
<body>
<main>
  {{if eq .Status "ok"}}<h1 id="headline">All Systems Operational</h1>{{else}}<h1 id="headline" class="issue">System Issues Detected</h1>{{end}}
  <p class="sub">Buffr Host API · {{.Runtime.Platform}} · {{.Runtime.GoVersion}}</p>
  <div class="grid">
    <section class="card">
      <div class="label">Traffic</div>
      <div class="big" id="total">{{.Traffic.TotalRequests}}</div>
      <div class="row"><span>Successful</span><span class="ok">{{.Traffic.SuccessCount}}</span></div>
      <div class="row"><span>Failed</span><span class="err">{{.Traffic.FailedCount}}</span></div>
      <div class="row"><span>Success rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
      <div class="row"><span>Avg latency</span><span>{{.Traffic.AvgResponseTime}} ms</span></div>
    </section>
    <section class="card">
      <div class="label">Runtime</div>
      <div class="big" id="uptime">{{.Runtime.UptimeSeconds}}s</div>
      <div class="row"><span>Heap in use</span><span>{{.Runtime.Memory.HeapUsed}} MB</span></div>
      <div class="row"><span>Allocated</span><span>{{.Runtime.Memory.Alloc}} MB</span></div>
      <div class="row"><span>Goroutines</span><span>{{.Runtime.Goroutines}}</span></div>
    </section>
    <section class="card">
      <div class="label">Dependencies</div>
      {{range .Rows}}<div class="row"><span>{{.Name}}</span><span class="{{if .OK}}ok{{else}}err{{end}}">{{.Status}}{{with .PingMs}} · {{.}} ms{{end}}</span></div>
      {{end}}
    </section>
  </div>
  <footer>
    {{with .Traffic.LastRequest}}<span>LAST {{index . "method"}} {{index . "path"}}</span><span>{{index . "ip"}}</span>{{else}}<span>No requests yet</span>{{end}}
    <button onclick="showErrors()">Error log</button>
  </footer>
  <div id="errors"></div>
</main>
<script>
  const initial = {{.Payload}};
  const fmt = (s) => { const h = Math.floor(s / 3600), m = Math.floor((s % 3600) / 60); return h + 'h ' + m + 'm ' + (s % 60) + 's'; };
  const paint = (d) => {
    document.getElementById('total').innerText = d.traffic.totalRequests;
    document.getElementById('uptime').innerText = fmt(d.runtime.uptimeSeconds);
  };
  async function showErrors() {
    const box = document.getElementById('errors');
    try {
      const r = await fetch('/health/errors');
      const list = await r.json();
      box.innerText = list.length === 0 ? 'No internal errors recorded.' : list.map(e => e.time + '  ' + e.method + ' ' + e.path + '\n  ' + e.message).join('\n');
    } catch (e) { box.innerText = 'Error loading logs.'; }
  }
  paint(initial);
  setInterval(async () => { try { const r = await fetch('/health/json'); paint(await r.json()); } catch (e) {} }, 15000);
</script>
</body>
</html>
`))

// RenderDashboard renders the status page for GET /.
func RenderDashboard(r Report) (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	view := dashboardView{Report: r, Payload: template.JS(payload)}
	for name, dep := range r.Dependencies {
		view.Rows = append(view.Rows, dependencyRow{
			Name:   name,
			OK:     dep.Status == depConnected || dep.Status == depReachable,
			Status: dep.Status,
			PingMs: dep.PingMs,
		})
	}
	sort.Slice(view.Rows, func(i, j int) bool { return view.Rows[i].Name < view.Rows[j].Name })

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
