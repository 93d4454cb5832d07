package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/alpaca-heart/internal/logic"
	"github.com/sweeney/alpaca-heart/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Variant:          logic.VariantExpressive,
		Params:           logic.ExpressiveParams(),
		Broker:           "tcp://192.168.1.200:1883",
		HTTPAddr:         ":80",
		StatusIntervalMs: 300000,
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

// coldFrame is a sampled frame with the right eye suppressed and the heart
// freshly triggered.
func coldFrame() logic.Frame {
	return logic.Frame{
		Tick:    100,
		Mood:    logic.MoodCold,
		Duties:  [logic.NumChannels]uint16{20000, 0, 0, 0, 0, 0, 3096, 0, 64535},
		Sampled: true,
		Reading: logic.Reading{Raw: 912, Tenths: 103, Celsius: 10},
		Changed: true,
	}
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(coldFrame())
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Mood != "COLD" {
		t.Errorf("Mood: got %q, want COLD", sj.Status.Mood)
	}
	if sj.Status.Temperature == nil {
		t.Fatal("expected temperature after a sample")
	}
	if sj.Status.Temperature.Celsius != 10 {
		t.Errorf("Temperature.Celsius: got %d, want 10", sj.Status.Temperature.Celsius)
	}
	if sj.Status.Outputs["heart_blue"] != 64535 {
		t.Errorf("heart_blue: got %d, want 64535", sj.Status.Outputs["heart_blue"])
	}
	if sj.Status.Outputs["right_red"] != 0 {
		t.Errorf("right_red: got %d, want 0", sj.Status.Outputs["right_red"])
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.MoodChanges != 1 {
		t.Errorf("Counts.MoodChanges: got %d, want 1", sj.Status.Counts.MoodChanges)
	}
	if sj.Status.Config.ColdDelayMs != 200 {
		t.Errorf("Config.ColdDelayMs: got %d, want 200", sj.Status.Config.ColdDelayMs)
	}
	if sj.Status.Config.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Config.Broker: got %q", sj.Status.Config.Broker)
	}
}

func TestJSONUnknownMoodBeforeFirstFrame(t *testing.T) {
	ts, _ := newTestServer(t)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Mood != "UNKNOWN" {
		t.Errorf("Mood before first frame: got %q, want UNKNOWN", sj.Status.Mood)
	}
	if sj.Status.Temperature != nil {
		t.Errorf("expected no temperature before first sample, got %+v", sj.Status.Temperature)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(coldFrame())

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	for _, want := range []string{`class="cold">COLD`, "10°C", "#ff0000", "#000000", "expressive"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLBeforeFirstSample(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "not sampled yet") {
		t.Error("expected placeholder before the first sample")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestPostRejected(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/", "/index.json"} {
		resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(`{"mood":"COLD"}`))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, resp.StatusCode)
		}
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Counts.Iterations != 0 {
		t.Errorf("expected 0 iterations initially, got %d", sj1.Status.Counts.Iterations)
	}

	tr.Update(coldFrame())
	warm := coldFrame()
	warm.Tick = 200
	warm.Mood = logic.MoodWarm
	warm.Reading = logic.Reading{Raw: 880, Tenths: 253, Celsius: 25}
	tr.Update(warm)
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.Mood != "WARM" {
		t.Errorf("Mood: got %q, want WARM", sj2.Status.Mood)
	}
	if sj2.Status.Tick != 200 {
		t.Errorf("Tick: got %d, want 200", sj2.Status.Tick)
	}
	if sj2.Status.Counts.Iterations != 2 {
		t.Errorf("Iterations: got %d, want 2", sj2.Status.Counts.Iterations)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestSwatch(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint16
		want    string
	}{
		{"off", 0, 0, 0, "#000000"},
		{"eye red", 20000, 0, 0, "#ff0000"},
		{"eye blue", 0, 0, 0xFFFF, "#0000ff"},
		{"eye white", 20000, 20000, 0xFFFF, "#ffffff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := swatch(tt.r, tt.g, tt.b, logic.EyeRedGreenMax, logic.EyeRedGreenMax, logic.EyeBlueMax)
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
