// Package config assembles the daemon configuration from defaults, a variant
// preset, an optional YAML file, an optional dotenv file, ALPACA_* environment
// variables and command-line flags, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/sweeney/alpaca-heart/internal/gpio"
	"github.com/sweeney/alpaca-heart/internal/logic"
	"github.com/sweeney/alpaca-heart/internal/pwm"
	"github.com/sweeney/alpaca-heart/internal/sensor"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ALPACA_"

// Config holds the configuration for the alpaca-heart daemon.
type Config struct {
	Variant      string `yaml:"variant"`
	logic.Params `yaml:",inline"`

	// Hardware
	Pins           [logic.NumChannels]string `yaml:"pins"`
	PWMFrequencyHz int                       `yaml:"pwm_frequency_hz"`
	Invert         bool                      `yaml:"invert"`
	SensorPath     string                    `yaml:"sensor_path"`
	StatusChip     string                    `yaml:"status_chip"`
	StatusPin      int                       `yaml:"status_pin"`
	StatusHigh     bool                      `yaml:"status_high"`

	// Service
	LogLevel       string        `yaml:"log_level"`
	HTTPAddr       string        `yaml:"http_addr"`       // empty disables the status page
	Broker         string        `yaml:"mqtt_broker"`     // empty disables telemetry
	ClientID       string        `yaml:"mqtt_client_id"`  // prefix; a random suffix is added
	StatusInterval time.Duration `yaml:"status_interval"` // 0 disables periodic STATUS

	// Sources and modes; not part of the printed config.
	ConfigFile  string `yaml:"-"`
	EnvFile     string `yaml:"-"`
	PrintConfig bool   `yaml:"-"`

	pinList []string
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Variant:        logic.VariantBaseline,
		Params:         logic.BaselineParams(),
		Pins:           pwm.DefaultPins,
		PWMFrequencyHz: int(pwm.DefaultFrequency / physic.Hertz),
		Invert:         true,
		SensorPath:     sensor.DefaultPath,
		StatusChip:     gpio.DefaultChip,
		StatusPin:      gpio.DefaultStatusPin,
		StatusHigh:     gpio.DefaultStatusHigh,
		LogLevel:       "info",
		ClientID:       "alpaca-heart",
		StatusInterval: 5 * time.Minute,
	}
}

// Load builds the effective configuration. args excludes the program name.
// lookup is normally os.LookupEnv.
func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	// First pass: only the flags that decide where the rest comes from.
	pre := Default()
	fs := pre.flagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	configFile := pre.ConfigFile
	if !fs.Changed("config") {
		configFile, _ = lookup(EnvPrefix + "CONFIG")
	}
	envFile := pre.EnvFile
	if !fs.Changed("env-file") {
		envFile, _ = lookup(EnvPrefix + "ENV_FILE")
	}

	// Process environment wins over the dotenv file, as with godotenv.Load.
	env := lookup
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		env = func(key string) (string, bool) {
			if v, ok := lookup(key); ok {
				return v, true
			}
			v, ok := vars[key]
			return v, ok
		}
	}

	var fileData []byte
	var fileVariant struct {
		Variant string `yaml:"variant"`
	}
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fileVariant); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
		fileData = data
	}

	variant := logic.VariantBaseline
	switch {
	case fs.Changed("variant"):
		variant = pre.Variant
	case envSet(env, "VARIANT"):
		variant, _ = env(EnvPrefix + "VARIANT")
	case fileVariant.Variant != "":
		variant = fileVariant.Variant
	}
	params, err := logic.ParamsForVariant(variant)
	if err != nil {
		return nil, err
	}

	c := Default()
	c.Variant = strings.ToLower(strings.TrimSpace(variant))
	c.Params = params
	if fileData != nil {
		if err := yaml.Unmarshal(fileData, c); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
		c.Variant = strings.ToLower(strings.TrimSpace(variant))
	}

	if err := c.loadEnv(env); err != nil {
		return nil, err
	}

	// Second pass: flags override everything, bound to the final config.
	fs = c.flagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.Changed("pins") {
		if err := c.setPins(c.pinList); err != nil {
			return nil, err
		}
	}
	if fs.Changed("variant") {
		c.Variant = strings.ToLower(strings.TrimSpace(c.Variant))
	}
	c.ConfigFile = configFile
	c.EnvFile = envFile

	return c, nil
}

func (c *Config) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("alpaca-heart", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML config file")
	fs.StringVar(&c.EnvFile, "env-file", c.EnvFile, "dotenv file with ALPACA_* variables")
	fs.BoolVar(&c.PrintConfig, "print-config", c.PrintConfig, "Print the effective config as YAML and exit")
	fs.StringVar(&c.Variant, "variant", c.Variant, "Behaviour preset (baseline, expressive)")

	fs.IntVar(&c.ColdThreshold, "cold-threshold", c.ColdThreshold, "Readings below this many °C are cold")
	fs.Uint16Var(&c.SamplingPeriod, "sampling-period", c.SamplingPeriod, "Ticks between temperature samples")
	fs.Uint16Var(&c.TriggerPeriod, "trigger-period", c.TriggerPeriod, "Ticks between heart beats")
	fs.Uint16Var(&c.LeadIn, "lead-in", c.LeadIn, "Ticks the lead-in flash fires before a beat")
	fs.Uint16Var(&c.DecayStep, "decay-step", c.DecayStep, "Pulse decay per iteration")
	fs.DurationVar(&c.WarmDelay, "warm-delay", c.WarmDelay, "Iteration delay while warm")
	fs.DurationVar(&c.ColdDelay, "cold-delay", c.ColdDelay, "Iteration delay while cold")
	fs.Float32Var(&c.HueSweep, "hue-sweep", c.HueSweep, "Full hue turns per tick range")
	fs.BoolVar(&c.SuppressEyeWhenCold, "suppress-eye", c.SuppressEyeWhenCold, "Turn the right eye off while cold")

	fs.StringSliceVar(&c.pinList, "pins", nil, "Comma-separated pin names for the nine channels")
	fs.IntVar(&c.PWMFrequencyHz, "pwm-frequency", c.PWMFrequencyHz, "PWM carrier frequency in Hz")
	fs.BoolVar(&c.Invert, "invert", c.Invert, "Invert PWM outputs (common-anode LEDs)")
	fs.StringVar(&c.SensorPath, "sensor", c.SensorPath, "IIO raw temperature attribute")
	fs.StringVar(&c.StatusChip, "status-chip", c.StatusChip, "GPIO chip for the status line")
	fs.IntVar(&c.StatusPin, "status-pin", c.StatusPin, "Status line offset (BCM numbering)")
	fs.BoolVar(&c.StatusHigh, "status-high", c.StatusHigh, "Drive the status line high instead of low")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "HTTP status address (empty to disable)")
	fs.StringVar(&c.Broker, "broker", c.Broker, "MQTT broker address (empty to disable)")
	fs.StringVar(&c.ClientID, "client-id", c.ClientID, "MQTT client id prefix")
	fs.DurationVar(&c.StatusInterval, "status-interval", c.StatusInterval, "Periodic STATUS interval (0 to disable)")
	return fs
}

// Usage returns the flag help text.
func Usage() string {
	return Default().flagSet().FlagUsages()
}

func envSet(env func(string) (string, bool), name string) bool {
	v, ok := env(EnvPrefix + name)
	return ok && v != ""
}

func (c *Config) setPins(pins []string) error {
	if len(pins) != logic.NumChannels {
		return fmt.Errorf("pins: want %d names, got %d", logic.NumChannels, len(pins))
	}
	for i, p := range pins {
		c.Pins[i] = strings.TrimSpace(p)
	}
	return nil
}

// Validate checks that the configuration can drive the hardware.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Params.Validate(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]logic.Channel, logic.NumChannels)
	for i, p := range c.Pins {
		ch := logic.Channel(i)
		if p == "" {
			errs = append(errs, fmt.Errorf("pin for %s is required", ch))
			continue
		}
		if prev, dup := seen[p]; dup {
			errs = append(errs, fmt.Errorf("pin %s used by both %s and %s", p, prev, ch))
		}
		seen[p] = ch
	}

	if c.PWMFrequencyHz <= 0 {
		errs = append(errs, errors.New("pwm_frequency_hz must be > 0"))
	}
	if c.SensorPath == "" {
		errs = append(errs, errors.New("sensor_path is required"))
	}
	if c.StatusChip == "" {
		errs = append(errs, errors.New("status_chip is required"))
	}
	if c.StatusPin < 0 {
		errs = append(errs, errors.New("status_pin must be >= 0"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.StatusInterval < 0 {
		errs = append(errs, errors.New("status_interval must be >= 0"))
	}
	if c.Broker != "" {
		u, err := url.Parse(c.Broker)
		if err != nil {
			errs = append(errs, fmt.Errorf("mqtt_broker: %w", err))
		} else if !validScheme[u.Scheme] || u.Host == "" {
			errs = append(errs, fmt.Errorf("mqtt_broker %q must look like tcp://host:port", c.Broker))
		}
	}
	return errors.Join(errs...)
}

var validScheme = map[string]bool{
	"tcp": true, "mqtt": true, "ssl": true, "tls": true, "mqtts": true, "ws": true, "wss": true,
}

// ParseLogLevel maps a config log level onto slog.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}
}

// NewLogger returns a text logger at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLogLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WriteYAML writes the effective configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
