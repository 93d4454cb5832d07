// Command alpaca-heart drives the alpaca's eyes and heart from the on-board
// temperature sensor.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/physic"

	"github.com/sweeney/alpaca-heart/internal/config"
	"github.com/sweeney/alpaca-heart/internal/control"
	"github.com/sweeney/alpaca-heart/internal/gpio"
	"github.com/sweeney/alpaca-heart/internal/logic"
	"github.com/sweeney/alpaca-heart/internal/mqtt"
	"github.com/sweeney/alpaca-heart/internal/pwm"
	"github.com/sweeney/alpaca-heart/internal/sensor"
	"github.com/sweeney/alpaca-heart/internal/status"
	"github.com/sweeney/alpaca-heart/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.LookupEnv)
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "Usage of alpaca-heart:\n%s", config.Usage())
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if cfg.PrintConfig {
		if err := cfg.WriteYAML(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "print config: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		logger.Info("shutting down", "signal", s)
		cancel(signalCause{s})
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	line, err := gpio.NewRealStatusLine(cfg.StatusChip, cfg.StatusPin)
	if err != nil {
		return fmt.Errorf("init status line: %w", err)
	}

	sink, err := pwm.NewRealSink(cfg.Pins, physic.Frequency(cfg.PWMFrequencyHz)*physic.Hertz, cfg.Invert)
	if err != nil {
		line.Close()
		return fmt.Errorf("init pwm: %w", err)
	}

	source, err := sensor.NewSysfsSource(cfg.SensorPath)
	if err != nil {
		line.Close()
		sink.Close()
		return fmt.Errorf("init sensor: %w", err)
	}

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.NopPublisher{}
	if cfg.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.Broker, mqtt.ClientID(cfg.ClientID), logger)
		if err != nil {
			// Telemetry is optional; the lights run without it.
			logger.Warn("mqtt disabled", "broker", cfg.Broker, "error", err)
		} else {
			publisher = p
		}
	}

	d := newDaemon(cfg, logger, time.Now())
	d.sink = sink
	d.source = source
	d.line = line
	d.publisher = publisher
	d.mqttStatus = publisher

	if cfg.StatusInterval > 0 {
		ticker := time.NewTicker(cfg.StatusInterval)
		defer ticker.Stop()
		d.statusTick = ticker.C
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, d.tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", "addr", cfg.HTTPAddr)
	}

	return d.run(ctx)
}

// daemon wires the control loop to its drivers and to the telemetry outputs.
type daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	tracker    *status.Tracker
	sink       pwm.Sink
	source     sensor.Source
	line       gpio.StatusLine
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	statusTick <-chan time.Time
	now        func() time.Time
	wait       control.WaitFunc
}

func newDaemon(cfg *config.Config, logger *slog.Logger, start time.Time) *daemon {
	tracker := status.NewTracker(start, status.Config{
		Variant:          cfg.Variant,
		Params:           cfg.Params,
		Broker:           cfg.Broker,
		HTTPAddr:         cfg.HTTPAddr,
		StatusIntervalMs: cfg.StatusInterval.Milliseconds(),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	return &daemon{
		cfg:       cfg,
		logger:    logger,
		tracker:   tracker,
		publisher: mqtt.NopPublisher{},
		now:       time.Now,
	}
}

// run takes ownership of every driver and returns when ctx is cancelled or a
// driver fails. The outputs are blank on return either way.
func (d *daemon) run(ctx context.Context) error {
	defer func() {
		closeErr := errors.Join(d.sink.Close(), d.source.Close(), d.line.Close(), d.publisher.Close())
		if closeErr != nil {
			d.logger.Warn("closing drivers", "error", closeErr)
		}
	}()

	if err := d.line.Set(d.cfg.StatusHigh); err != nil {
		return fmt.Errorf("set status line: %w", err)
	}
	if err := pwm.Blank(d.sink); err != nil {
		return fmt.Errorf("blank outputs: %w", err)
	}

	events := make(chan mqtt.MoodEvent, 16)
	opts := []control.Option{control.WithObserver(control.ObserverFunc(func(f logic.Frame) {
		d.tracker.Update(f)
		if !f.Changed {
			return
		}
		select {
		case events <- d.moodEvent(f):
		default:
			d.logger.Warn("mood event dropped", "tick", f.Tick, "mood", f.Mood)
		}
	}))}
	if d.wait != nil {
		opts = append(opts, control.WithWait(d.wait))
	}

	loop, err := control.New(d.cfg.Params, d.sink, d.source, d.logger, opts...)
	if err != nil {
		return err
	}

	d.publishStatus("STARTUP", "")
	d.logger.Info("started",
		"variant", d.cfg.Variant,
		"cold_threshold", d.cfg.ColdThreshold,
		"warm_delay", d.cfg.WarmDelay,
		"cold_delay", d.cfg.ColdDelay,
		"broker", d.cfg.Broker,
	)

	telemetryCtx, stopTelemetry := context.WithCancel(context.Background())
	done := make(chan struct{})
	go d.telemetry(telemetryCtx, events, done)

	loopErr := loop.Run(ctx)
	stopTelemetry()
	<-done

	if err := loop.Blank(); err != nil {
		d.logger.Error("blank outputs on exit", "error", err)
	}

	reason := shutdownReason(ctx)
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		reason = "FATAL"
	}
	d.publishStatus("SHUTDOWN", reason)

	if reason == "FATAL" {
		return loopErr
	}
	return nil
}

// telemetry publishes mood changes and periodic status from one goroutine,
// so the loop never waits on the broker.
func (d *daemon) telemetry(ctx context.Context, events <-chan mqtt.MoodEvent, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e := <-events:
					d.publishMood(e)
				default:
					return
				}
			}
		case e := <-events:
			d.publishMood(e)
		case <-d.statusTick:
			if net := readNetworkInfo(); net != nil {
				d.tracker.SetNetwork(net)
			}
			d.publishStatus("STATUS", "")
		}
	}
}

func (d *daemon) moodEvent(f logic.Frame) mqtt.MoodEvent {
	prev := logic.MoodCold
	if f.Mood == logic.MoodCold {
		prev = logic.MoodWarm
	}
	return mqtt.MoodEvent{
		Timestamp: d.now(),
		Tick:      f.Tick,
		Mood:      f.Mood,
		Previous:  prev,
		Reading:   f.Reading,
	}
}

func (d *daemon) publishMood(e mqtt.MoodEvent) {
	if err := d.publisher.PublishMood(e); err != nil {
		d.logger.Warn("publish mood failed", "mood", e.Mood, "error", err)
	}
}

func (d *daemon) publishStatus(event, reason string) {
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
	snap := d.tracker.Snapshot()
	e := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   event != "STATUS",
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := d.publisher.PublishSystem(e); err != nil {
		d.logger.Warn("publish system event failed", "event", event, "error", err)
		return
	}
	d.logger.Debug("published system event", "event", event)
}

// signalCause records which signal cancelled the daemon.
type signalCause struct {
	sig os.Signal
}

func (s signalCause) Error() string {
	return "received " + s.sig.String()
}

func shutdownReason(ctx context.Context) string {
	var sc signalCause
	if errors.As(context.Cause(ctx), &sc) {
		switch sc.sig {
		case syscall.SIGINT:
			return "SIGINT"
		case syscall.SIGTERM:
			return "SIGTERM"
		}
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
