package lifecycle

import "testing"

func TestDrainingFlag(t *testing.T) {
	t.Cleanup(func() { SetDraining(false) })

	if IsDraining() {
		t.Fatal("draining should default to false")
	}
	SetDraining(true)
	if !IsDraining() {
		t.Error("expected draining after SetDraining(true)")
	}
	SetDraining(false)
	if IsDraining() {
		t.Error("expected not draining after SetDraining(false)")
	}
}
