package models

// Outcome is the result of resolving a single record ID.
type Outcome string

const (
	OutcomeFound      Outcome = "found"
	OutcomeNotFound   Outcome = "not_found"
	OutcomeStoreError Outcome = "store_error"
)

// Message returns the fixed response message clients have always received
// for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeFound:
		return "Hello"
	case OutcomeNotFound:
		return "No one"
	case OutcomeStoreError:
		return "Error"
	default:
		return ""
	}
}

func (o Outcome) String() string {
	return string(o)
}

// IsValid reports whether o is one of the defined outcomes.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeFound, OutcomeNotFound, OutcomeStoreError:
		return true
	}
	return false
}
