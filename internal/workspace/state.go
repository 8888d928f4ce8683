package workspace

// State describes the readiness of the index as a whole or of one file.
type State uint8

const (
	StateBuilding State = iota
	StateReady
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Reason explains a per-file degradation. Degraded files stay indexed as
// degraded until a later Apply for the same URI succeeds.
type Reason string

const (
	ReasonResourceCap Reason = "resource-cap-exceeded"
	ReasonLoadError   Reason = "load-error"
	ReasonParseError  Reason = "parse-error"
)
