package gate

// CapabilityAgentic is the caller capability flag that grants agentic use.
const CapabilityAgentic = "canUseAgentic"

// Caller identifies who submitted an objective and what they may do.
type Caller struct {
	ID           string          `json:"id"`
	Capabilities map[string]bool `json:"capabilities,omitempty"`
}

// Can reports whether the caller holds capability. Absent flags deny.
func (c Caller) Can(capability string) bool {
	return c.Capabilities[capability]
}

// FlagSource reports whether agentic execution is globally available.
type FlagSource interface {
	AgenticEnabled() bool
}

// StaticFlags is a FlagSource with a fixed value.
type StaticFlags bool

// AgenticEnabled implements FlagSource.
func (f StaticFlags) AgenticEnabled() bool { return bool(f) }

// AgenticAllowed returns false when the global flag is off, regardless of
// the caller. Otherwise the caller must hold CapabilityAgentic.
func AgenticAllowed(flags FlagSource, caller Caller) bool {
	if flags == nil || !flags.AgenticEnabled() {
		return false
	}
	return caller.Can(CapabilityAgentic)
}
