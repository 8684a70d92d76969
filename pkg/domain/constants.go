package domain

// Hook slot names, used by plans, events and introspection output.
const (
	SlotBefore = "before"
	SlotAfter  = "after"
	SlotAround = "around"
)

// Invocation outcomes reported by InvokeEvent.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomePanic = "panic"
)
