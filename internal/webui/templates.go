package webui

import (
	"html/template"

	"github.com/automabit/silowatch/internal/types"
)

// Templates contains the HTML templates for the dashboard
var Templates = template.Must(template.New("").Funcs(template.FuncMap{
	"levelClass": func(level string) string {
		switch level {
		case "error", "fatal":
			return "log-error"
		case "warn":
			return "log-warn"
		case "debug":
			return "log-debug"
		default:
			return "log-info"
		}
	},
	"statusClass": func(status types.Status) string {
		switch status {
		case types.StatusAlert:
			return "red"
		case types.StatusAttention:
			return "amber"
		default:
			return "green"
		}
	},
	"reading": func(v *float64, unit string) string {
		if v == nil {
			return "-"
		}
		return types.FormatValue(*v) + unit
	},
	"offline": func(s types.SiloStatus) bool {
		return s.Disconnected()
	},
}).Parse(`
{{define "dashboard"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="refresh" content="5">
    <title>SiloWatch</title>
    <style>
        :root {
            --bg: #0f1419;
            --card: #1a1f26;
            --border: #2d3540;
            --text: #e6e9ed;
            --text-muted: #8b949e;
            --green: #3fb950;
            --amber: #d29922;
            --red: #f85149;
            --blue: #58a6ff;
        }
        body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: var(--bg); color: var(--text); }
        .container { max-width: 1200px; margin: 0 auto; padding: 1.5rem; }
        header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 1.5rem; }
        h1 { margin: 0; font-size: 1.5rem; }
        .muted { color: var(--text-muted); font-size: 0.75rem; }
        .stats-grid { display: grid; grid-template-columns: repeat(4, 1fr); gap: 1rem; margin-bottom: 1.5rem; }
        .card, .stat-card { background: var(--card); border: 1px solid var(--border); border-radius: 8px; }
        .stat-card { padding: 1rem; }
        .stat-label { color: var(--text-muted); font-size: 0.8rem; }
        .stat-value { font-size: 1.75rem; font-weight: 600; }
        .card { margin-bottom: 1.5rem; }
        .card-title { display: block; padding: 0.75rem 1rem; border-bottom: 1px solid var(--border); font-weight: 600; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.5rem 1rem; border-bottom: 1px solid var(--border); font-size: 0.875rem; }
        th { color: var(--text-muted); font-weight: 500; }
        .green { color: var(--green); }
        .amber { color: var(--amber); }
        .red { color: var(--red); }
        .blue { color: var(--blue); }
        .toast { padding: 0.5rem 1rem; border-left: 3px solid var(--blue); margin: 0.5rem 1rem; }
        .toast.critical, .toast.error { border-color: var(--red); }
        .toast.warning { border-color: var(--amber); }
        .toast.success { border-color: var(--green); }
        .empty { padding: 1rem; color: var(--text-muted); }
        .log-line { font-family: monospace; font-size: 0.75rem; padding: 0.125rem 1rem; }
        .log-error { color: var(--red); }
        .log-warn { color: var(--amber); }
        .log-debug { color: var(--text-muted); }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <div>
                <h1>SiloWatch</h1>
                <div class="muted">{{.Build.String}}</div>
            </div>
            <div class="muted">up {{.Uptime}}</div>
        </header>

        <div class="stats-grid">
            <div class="stat-card">
                <div class="stat-label">Silos</div>
                <div class="stat-value blue">{{len .Silos}}</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Active Alerts</div>
                <div class="stat-value {{if .Alerts}}red{{else}}green{{end}}">{{len .Alerts}}</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Notifications</div>
                <div class="stat-value blue">{{len .Toasts}}</div>
            </div>
            <div class="stat-card">
                <div class="stat-label">Cooldown</div>
                <div class="stat-value">{{.Cooldown}}</div>
            </div>
        </div>

        <div class="card">
            <span class="card-title">Silos</span>
            {{if .Silos}}
            <table>
                <tr><th>Silo</th><th>Product</th><th>Temperature</th><th>Humidity</th><th>Capacity</th><th>Status</th></tr>
                {{range .Silos}}
                <tr>
                    <td>{{.Name}}{{if offline .}} <span class="red">(offline)</span>{{end}}</td>
                    <td>{{.Product}}</td>
                    <td>{{reading .Temperature "°C"}}</td>
                    <td>{{reading .Humidity "%"}}</td>
                    <td>{{reading .Capacity "%"}}</td>
                    <td class="{{statusClass .Status}}">{{.Status}}</td>
                </tr>
                {{end}}
            </table>
            {{else}}
            <div class="empty">No readings received yet</div>
            {{end}}
        </div>

        <div class="card">
            <span class="card-title">Notifications</span>
            {{range .Toasts}}
            <div class="toast {{.Category}}"><strong>{{.Title}}</strong><br>{{.Message}}</div>
            {{else}}
            <div class="empty">Nothing to report</div>
            {{end}}
        </div>

        <div class="card">
            <span class="card-title">Recent Logs</span>
            {{range .Logs}}
            <div class="log-line {{levelClass .Level}}">{{.Timestamp.Format "15:04:05"}} {{.Level}} {{.Message}}</div>
            {{else}}
            <div class="empty">No log entries</div>
            {{end}}
        </div>
    </div>
</body>
</html>
{{end}}
`))
