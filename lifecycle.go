package depload

import (
	"github.com/4S1ght/depload/internal/container"
)

// Initializer is implemented by instances that need a second, possibly
// slow, setup step after construction. Start waits for Init to return
// before building the next service.
type Initializer = container.Initializer

// Destructor is implemented by instances holding resources that must be
// released on Stop.
type Destructor = container.Destructor

type Status = container.Status

const (
	StatusStandby      = container.StatusStandby
	StatusInitializing = container.StatusInitializing
	StatusRunning      = container.StatusRunning
	StatusStopping     = container.StatusStopping
	StatusStopped      = container.StatusStopped
)
