package domain

import "time"

// Handle identifies the hooks added by one augmentation so they can be
// detached later without disturbing hooks added by others.
type Handle struct {
	Target  TargetID
	ID      uint64
	Created bool // true when this augmentation created the binding
}

// BindingInfo is a read-only snapshot of a live binding.
type BindingInfo struct {
	Target  TargetID   `json:"target"`
	Hooks   HookCounts `json:"hooks"`
	Handles int        `json:"handles"`
	Since   time.Time  `json:"since"`
	Calls   uint64     `json:"calls"`
}
