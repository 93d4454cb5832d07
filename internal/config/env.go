package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// envLoader applies ALPACA_* variables, collecting every parse error.
type envLoader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envLoader) get(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envLoader) fail(name string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
}

func (e *envLoader) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envLoader) int(name string, dst *int) {
	if v, ok := e.get(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = n
	}
}

func (e *envLoader) uint16(name string, dst *uint16) {
	if v, ok := e.get(name); ok {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = uint16(n)
	}
}

func (e *envLoader) float32(name string, dst *float32) {
	if v, ok := e.get(name); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = float32(f)
	}
}

func (e *envLoader) bool(name string, dst *bool) {
	if v, ok := e.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = b
	}
}

func (e *envLoader) duration(name string, dst *time.Duration) {
	if v, ok := e.get(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = d
	}
}

func (c *Config) loadEnv(lookup func(string) (string, bool)) error {
	e := &envLoader{lookup: lookup}

	e.int("COLD_THRESHOLD", &c.ColdThreshold)
	e.uint16("SAMPLING_PERIOD", &c.SamplingPeriod)
	e.uint16("TRIGGER_PERIOD", &c.TriggerPeriod)
	e.uint16("LEAD_IN", &c.LeadIn)
	e.uint16("DECAY_STEP", &c.DecayStep)
	e.duration("WARM_DELAY", &c.WarmDelay)
	e.duration("COLD_DELAY", &c.ColdDelay)
	e.float32("HUE_SWEEP", &c.HueSweep)
	e.bool("SUPPRESS_EYE", &c.SuppressEyeWhenCold)

	if v, ok := e.get("PINS"); ok {
		if err := c.setPins(strings.Split(v, ",")); err != nil {
			e.fail("PINS", err)
		}
	}
	e.int("PWM_FREQUENCY", &c.PWMFrequencyHz)
	e.bool("INVERT", &c.Invert)
	e.str("SENSOR_PATH", &c.SensorPath)
	e.str("STATUS_CHIP", &c.StatusChip)
	e.int("STATUS_PIN", &c.StatusPin)
	e.bool("STATUS_HIGH", &c.StatusHigh)

	e.str("LOG_LEVEL", &c.LogLevel)
	e.str("HTTP_ADDR", &c.HTTPAddr)
	e.str("MQTT_BROKER", &c.Broker)
	e.str("MQTT_CLIENT_ID", &c.ClientID)
	e.duration("STATUS_INTERVAL", &c.StatusInterval)

	return errors.Join(e.errs...)
}
