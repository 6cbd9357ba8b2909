package dashboard

import (
	"testing"

	"github.com/slingventas/sales-tracker-backend/internal/cycle"
)

func threeCycles() []cycle.Cycle {
	return []cycle.Cycle{
		{ID: "c3", Name: "Marzo"},
		{ID: "c2", Name: ""},
		{ID: "c1", Name: "Enero"},
	}
}

func TestNavigatorWalk(t *testing.T) {
	n := NewNavigator(threeCycles(), OpenIndex)
	if !n.IsOpen() || n.CanNext() || !n.CanPrevious() {
		t.Fatalf("unexpected start state %+v", n)
	}
	if n.DisplayName() != "CICLO ACTUAL (En curso)" || n.CycleID() != "" {
		t.Fatalf("open cycle display %q id %q", n.DisplayName(), n.CycleID())
	}

	n = n.Previous()
	if n.Index != 0 || n.DisplayName() != "HISTORIAL: Marzo" {
		t.Fatalf("after one Previous: %d %q", n.Index, n.DisplayName())
	}
	n = n.Previous()
	if n.DisplayName() != "HISTORIAL: Ciclo sin nombre" {
		t.Fatalf("unnamed cycle display %q", n.DisplayName())
	}
	n = n.Previous()
	if n.Index != 2 || n.CanPrevious() || n.CycleID() != "c1" {
		t.Fatalf("oldest cycle state %+v", n)
	}
	if n.Previous().Index != 2 {
		t.Fatal("Previous past the oldest cycle must stay put")
	}

	for i := 0; i < 5; i++ {
		n = n.Next()
	}
	if !n.IsOpen() {
		t.Fatalf("Next should stop at the open cycle, got %d", n.Index)
	}
}

func TestNavigatorWithoutCycles(t *testing.T) {
	n := NewNavigator(nil, OpenIndex)
	if n.CanPrevious() || n.CanNext() {
		t.Fatal("no cycles means no navigation")
	}
	if n.Previous().Index != OpenIndex {
		t.Fatal("Previous without cycles must stay on the open cycle")
	}
}

func TestNewNavigatorClampsIndex(t *testing.T) {
	for _, idx := range []int{-5, 3, 99} {
		if n := NewNavigator(threeCycles(), idx); !n.IsOpen() {
			t.Errorf("index %d should fall back to the open cycle, got %d", idx, n.Index)
		}
	}
	if n := NewNavigator(threeCycles(), 1); n.CycleID() != "c2" {
		t.Fatalf("index 1 should select c2, got %q", n.CycleID())
	}
}
