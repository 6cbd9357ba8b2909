package dashboard

import "github.com/slingventas/sales-tracker-backend/internal/cycle"

// OpenIndex selects the open cycle. Index 0 is the most recent archived
// cycle, higher indexes are older.
const OpenIndex = -1

const (
	openDisplayName = "CICLO ACTUAL (En curso)"
	unnamedCycle    = "Ciclo sin nombre"
)

// Navigator walks the cycle list, newest first, starting at the open cycle.
type Navigator struct {
	Cycles []cycle.Cycle
	Index  int
}

// NewNavigator clamps index into the valid range; anything unknown falls
// back to the open cycle.
func NewNavigator(cycles []cycle.Cycle, index int) Navigator {
	if index < OpenIndex || index >= len(cycles) {
		index = OpenIndex
	}
	return Navigator{Cycles: cycles, Index: index}
}

// CanPrevious reports whether an older cycle exists.
func (n Navigator) CanPrevious() bool {
	return n.Index < len(n.Cycles)-1
}

// CanNext reports whether a newer view exists.
func (n Navigator) CanNext() bool {
	return n.Index > OpenIndex
}

// Previous moves towards older cycles. It stays put at the oldest one.
func (n Navigator) Previous() Navigator {
	if n.CanPrevious() {
		n.Index++
	}
	return n
}

// Next moves towards newer cycles, ending at the open cycle.
func (n Navigator) Next() Navigator {
	if n.CanNext() {
		n.Index--
	}
	return n
}

// IsOpen reports whether the open cycle is selected.
func (n Navigator) IsOpen() bool {
	return n.Index == OpenIndex
}

// CycleID is the id of the selected cycle, empty for the open one.
func (n Navigator) CycleID() string {
	if n.IsOpen() {
		return ""
	}
	return n.Cycles[n.Index].ID
}

// CycleName is the name of the selected archived cycle.
func (n Navigator) CycleName() string {
	if n.IsOpen() {
		return ""
	}
	return n.Cycles[n.Index].Name
}

func (n Navigator) DisplayName() string {
	if n.IsOpen() {
		return openDisplayName
	}
	name := n.Cycles[n.Index].Name
	if name == "" {
		name = unnamedCycle
	}
	return "HISTORIAL: " + name
}
