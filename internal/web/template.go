package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/basin-controller/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"modeOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
	"hhmmss": func(sec uint32) string {
		return fmt.Sprintf("%d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Basin Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
pre.lcd { background: #1d3b1d; color: #b8f0b8; padding: 8px; display: inline-block; line-height: 1.3; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Basin Controller</h1>

<pre class="lcd" id="display">{{range .Lines}}{{.}}
{{end}}</pre>

<h2>State</h2>
<table>
<tr><th>Mode</th><td id="mode">{{modeOrUnknown (printf "%s" .Mode)}}</td></tr>
<tr><th>Clock</th><td>{{hhmmss .Clock}}</td></tr>
{{if .Remaining}}<tr><th>Remaining</th><td>{{.Remaining}}s</td></tr>{{end}}
<tr><th>Night mode</th><td>{{if .NightEnabled}}enabled{{else}}disabled{{end}}</td></tr>
{{if .Label}}<tr><th>Label</th><td>{{.Label}}</td></tr>{{end}}
{{if .SelfTest}}<tr><th>Self test</th><td>{{.SelfTest}}</td></tr>{{end}}
<tr><th>Ready</th><td>{{if .Running}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Outputs</h2>
<table>
<tr><th>Fill valve</th><td class="{{if .Outputs.Fill}}on{{else}}off{{end}}">{{onOff .Outputs.Fill}}</td></tr>
<tr><th>Clean valve</th><td class="{{if .Outputs.Clean}}on{{else}}off{{end}}">{{onOff .Outputs.Clean}}</td></tr>
<tr><th>Aux valve</th><td class="{{if .Outputs.Aux}}on{{else}}off{{end}}">{{onOff .Outputs.Aux}}</td></tr>
<tr><th>Enable</th><td class="{{if .Outputs.Enable}}on{{else}}off{{end}}">{{onOff .Outputs.Enable}}</td></tr>
</table>

<h2>Schedule</h2>
<table>
<tr><th>Fill every</th><td>{{hhmmss .Schedule.FillPeriod}}</td></tr>
<tr><th>Clean at</th><td>{{hhmmss .Schedule.CleanPeriod}} ({{.Schedule.FillsPerClean}} fills per clean)</td></tr>
<tr><th>Top-off</th><td>{{.Schedule.TopoffDuration}}s</td></tr>
<tr><th>Post-clean fill</th><td>{{.Schedule.FillDuration}}s</td></tr>
<tr><th>Clean</th><td>{{.Schedule.CleanDuration}}s</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Fills</th><td>{{.Counts.Fills}}</td></tr>
<tr><th>Cleans</th><td>{{.Counts.Cleans}}</td></tr>
<tr><th>Cancels</th><td>{{.Counts.Cancels}}</td></tr>
<tr><th>Dropped presses</th><td>{{.IntentOverwrites}}</td></tr>
<tr><th>Serial overflows</th><td>{{.SerialOverflows}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Frame</th><td>{{.Config.FrameMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
{{if .Config.SerialDevice}}<tr><th>Serial</th><td>{{.Config.SerialDevice}}</td></tr>{{end}}
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
