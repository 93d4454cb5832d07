package logic

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Params are the tunable constants of the light show.
type Params struct {
	ColdThreshold       int           `yaml:"cold_threshold"`  // °C; readings below are cold
	SamplingPeriod      uint16        `yaml:"sampling_period"` // ticks between temperature samples
	TriggerPeriod       uint16        `yaml:"trigger_period"`  // ticks between heart beats
	LeadIn              uint16        `yaml:"lead_in"`         // ticks the lead-in flash fires before a beat
	DecayStep           uint16        `yaml:"decay_step"`
	WarmDelay           time.Duration `yaml:"warm_delay"`
	ColdDelay           time.Duration `yaml:"cold_delay"`
	HueSweep            float32       `yaml:"hue_sweep"` // full hue turns per tick range
	SuppressEyeWhenCold bool          `yaml:"suppress_eye_when_cold"`
}

// Variant names accepted by ParamsForVariant.
const (
	VariantBaseline   = "baseline"
	VariantExpressive = "expressive"
)

// BaselineParams returns the plain show: one fixed delay, both eyes always lit.
func BaselineParams() Params {
	return Params{
		ColdThreshold:  23,
		SamplingPeriod: 100,
		TriggerPeriod:  100,
		LeadIn:         20,
		DecayStep:      1000,
		WarmDelay:      100 * time.Millisecond,
		ColdDelay:      100 * time.Millisecond,
		HueSweep:       40,
	}
}

// ExpressiveParams slows the heart down and closes one eye when cold.
func ExpressiveParams() Params {
	p := BaselineParams()
	p.ColdDelay = 200 * time.Millisecond
	p.SuppressEyeWhenCold = true
	return p
}

// ParamsForVariant returns the preset with the given name.
func ParamsForVariant(name string) (Params, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case VariantBaseline, "":
		return BaselineParams(), nil
	case VariantExpressive:
		return ExpressiveParams(), nil
	default:
		return Params{}, fmt.Errorf("unknown variant %q (want %s or %s)", name, VariantBaseline, VariantExpressive)
	}
}

// Validate reports every parameter that would break the loop.
func (p Params) Validate() error {
	var errs []error
	if p.SamplingPeriod == 0 {
		errs = append(errs, errors.New("sampling_period must be > 0"))
	}
	if p.TriggerPeriod == 0 {
		errs = append(errs, errors.New("trigger_period must be > 0"))
	} else if p.LeadIn >= p.TriggerPeriod {
		errs = append(errs, fmt.Errorf("lead_in (%d) must be < trigger_period (%d)", p.LeadIn, p.TriggerPeriod))
	}
	if p.WarmDelay <= 0 || p.ColdDelay <= 0 {
		errs = append(errs, errors.New("warm_delay and cold_delay must be > 0"))
	}
	if p.HueSweep <= 0 {
		errs = append(errs, errors.New("hue_sweep must be > 0"))
	}
	return errors.Join(errs...)
}

// DelayFor returns the per-iteration delay for a mood.
func (p Params) DelayFor(m Mood) time.Duration {
	if m == MoodCold {
		return p.ColdDelay
	}
	return p.WarmDelay
}
