package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/sweeney/alpaca-heart/internal/logic"
	"github.com/sweeney/alpaca-heart/internal/status"
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
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"tenths": func(t int) string {
		return fmt.Sprintf("%.1f", float64(t)/10)
	},
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Alpaca Heart</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.cold { color: #1f6feb; font-weight: bold; }
.warm { color: #d1242f; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.swatch { display: inline-block; width: 1.2em; height: 1.2em; border: 1px solid #888; vertical-align: middle; margin-right: 6px; }
</style>
</head>
<body>
<h1>Alpaca Heart</h1>

<h2>Mood</h2>
<table>
<tr><th>Mood</th><td id="mood" class="{{if eq (stateOrUnknown (printf "%s" .Mood)) "COLD"}}cold{{else if eq (stateOrUnknown (printf "%s" .Mood)) "WARM"}}warm{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .Mood)}}</td></tr>
{{if .HasReading}}<tr><th>Temperature</th><td>{{.Reading.Celsius}}°C ({{tenths .Reading.Tenths}}, raw {{.Reading.Raw}})</td></tr>
<tr><th>Sampled</th><td>{{.LastSampleAt.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{else}}<tr><th>Temperature</th><td class="unknown">not sampled yet</td></tr>{{end}}
<tr><th>Threshold</th><td>{{.Config.Params.ColdThreshold}}°C</td></tr>
<tr><th>Tick</th><td>{{.Tick}}</td></tr>
</table>

<h2>Lights</h2>
<table>
<tr><th>Left eye</th><td><span class="swatch" style="background: {{.LeftEye}}"></span>{{.LeftEye}}</td></tr>
<tr><th>Right eye</th><td><span class="swatch" style="background: {{.RightEye}}"></span>{{.RightEye}}</td></tr>
<tr><th>Heart</th><td><span class="swatch" style="background: {{.Heart}}"></span>{{.Heart}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>Iterations</th><td>{{.Counts.Iterations}}</td></tr>
<tr><th>Samples</th><td>{{.Counts.Samples}}</td></tr>
<tr><th>Cold samples</th><td>{{.Counts.ColdSamples}}</td></tr>
<tr><th>Warm samples</th><td>{{.Counts.WarmSamples}}</td></tr>
<tr><th>Mood changes</th><td>{{.Counts.MoodChanges}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Variant</th><td>{{.Config.Variant}}</td></tr>
<tr><th>Delay</th><td>warm {{ms .Config.Params.WarmDelay}}ms, cold {{ms .Config.Params.ColdDelay}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

// swatch renders three duties as a CSS hex colour, each scaled by its own
// full-scale value.
func swatch(r, g, b, rMax, gMax, bMax uint16) string {
	return colorful.Color{
		R: float64(r) / float64(rMax),
		G: float64(g) / float64(gMax),
		B: float64(b) / float64(bMax),
	}.Clamped().Hex()
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	d := snap.Duties
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		LeftEye  string
		RightEye string
		Heart    string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		LeftEye:  swatch(d[logic.LeftRed], d[logic.LeftGreen], d[logic.LeftBlue], logic.EyeRedGreenMax, logic.EyeRedGreenMax, logic.EyeBlueMax),
		RightEye: swatch(d[logic.RightRed], d[logic.RightGreen], d[logic.RightBlue], logic.EyeRedGreenMax, logic.EyeRedGreenMax, logic.EyeBlueMax),
		Heart:    swatch(d[logic.HeartRed], d[logic.HeartGreen], d[logic.HeartBlue], 0xFFFF, 0xFFFF, 0xFFFF),
	}
	indexTmpl.Execute(w, data)
}
