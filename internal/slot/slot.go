// Package slot holds the two mutually exclusive strings of a pipeline stage.
//
// Every stage keeps its input form (before processing) and its output form
// (after processing), but only one of them is live at a time. Setting one
// side drops the other.
package slot

// Side tells which form of a stage string is live.
type Side int

const (
	// Input is the unprocessed form (unmarked LaTeX, marked string, ...).
	Input Side = iota
	// Output is the processed form (marked LaTeX, tokenized string, ...).
	Output
)

func (s Side) String() string {
	if s == Output {
		return "output"
	}
	return "input"
}

// Slot is a tagged union of the two forms.
type Slot struct {
	side  Side
	value string
}

// In returns a slot whose input form is live.
func In(s string) Slot {
	return Slot{side: Input, value: s}
}

// Out returns a slot whose output form is live.
func Out(s string) Slot {
	return Slot{side: Output, value: s}
}

// Side reports the live side.
func (s Slot) Side() Side {
	return s.side
}

// Input returns the input form, or "" when the output form is live.
func (s Slot) Input() string {
	if s.side == Input {
		return s.value
	}
	return ""
}

// Output returns the output form, or "" when the input form is live.
func (s Slot) Output() string {
	if s.side == Output {
		return s.value
	}
	return ""
}
