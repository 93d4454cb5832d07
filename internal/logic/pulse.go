package logic

// Heartbeat generates the heart pulse: a bright flash and a dim afterglow,
// both reloaded on a fixed tick cadence and decayed every iteration.
type Heartbeat struct {
	period    uint32
	leadIn    uint32
	decayStep uint16
	state     PulseState
}

// NewHeartbeat creates a generator with both amplitudes at zero.
func NewHeartbeat(p Params) *Heartbeat {
	return &Heartbeat{
		period:    uint32(p.TriggerPeriod),
		leadIn:    uint32(p.LeadIn),
		decayStep: p.DecayStep,
	}
}

// Trigger reloads the amplitudes if tick is a lead-in or beat tick.
// The lead-in only reloads the flash; the beat reloads both.
func (h *Heartbeat) Trigger(t Tick) {
	if h.period == 0 {
		return
	}
	if (uint32(t)+h.leadIn)%h.period == 0 {
		h.state.Bright = PulseFlash
	}
	if uint32(t)%h.period == 0 {
		h.state.Bright = PulseFlash
		h.state.Afterglow = PulseAfterglow
	}
}

// Decay subtracts one decay step from both amplitudes, flooring at zero.
func (h *Heartbeat) Decay() {
	h.state.Bright = saturatingSub(h.state.Bright, h.decayStep)
	h.state.Afterglow = saturatingSub(h.state.Afterglow, h.decayStep)
}

// Advance runs one iteration: trigger first, then decay.
func (h *Heartbeat) Advance(t Tick) PulseState {
	h.Trigger(t)
	h.Decay()
	return h.state
}

// State returns the current amplitudes.
func (h *Heartbeat) State() PulseState {
	return h.state
}

func saturatingSub(v, step uint16) uint16 {
	if v < step {
		return 0
	}
	return v - step
}
