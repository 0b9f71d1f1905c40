package dashboard

import "sync/atomic"

// Mode is the screen shown by the runner.
type Mode int32

const (
	ModeDashboard Mode = iota
	ModeSetup
)

func (m Mode) String() string {
	switch m {
	case ModeDashboard:
		return "dashboard"
	case ModeSetup:
		return "setup"
	default:
		return "unknown"
	}
}

// State is the UI mode shared by the render and input loops.
type State struct {
	mode atomic.Int32
}

// Mode returns the current mode.
func (s *State) Mode() Mode {
	return Mode(s.mode.Load())
}

// EnterSetup switches from the dashboard to the setup view. It reports
// false if the setup view was already shown.
func (s *State) EnterSetup() bool {
	return s.mode.CompareAndSwap(int32(ModeDashboard), int32(ModeSetup))
}

// EnterDashboard switches back to the dashboard.
func (s *State) EnterDashboard() {
	s.mode.Store(int32(ModeDashboard))
}
