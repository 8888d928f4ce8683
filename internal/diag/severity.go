package diag

// Severity ranks diagnostics. The numeric order is load-bearing: Bag
// sorts co-located diagnostics by descending severity and treats
// anything at SevError or above as a hard error.
type Severity uint8

const (
	// SevInfo marks advisory notes, such as a shadowing redeclaration.
	SevInfo Severity = iota
	// SevWarning marks suspicious but still analyzable code.
	SevWarning
	// SevError marks syntax or semantic failures.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
