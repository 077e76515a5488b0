package harvest

import (
	"errors"
	"testing"

	"FeedstockSourcing/internal/domain"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	sys, err := reg.Resolve("Cable CTL")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if sys.Family != CutToLength {
		t.Fatalf("unexpected family: %s", sys.Family)
	}

	_, err = reg.Resolve("Skyline Teleport")
	if !errors.Is(err, domain.ErrUnknownHarvestSystem) {
		t.Fatalf("expected ErrUnknownHarvestSystem, got %v", err)
	}
}

func TestRecoveryFraction(t *testing.T) {
	t.Parallel()

	fractions := domain.RecoveryFractions{WholeTree: 80, CutToLength: 50}
	cases := map[string]float64{
		"Ground-Based Mech WT":    80,
		"Ground-Based CTL":        50,
		"Ground-Based Manual Log": 0,
	}

	reg := DefaultRegistry()
	for name, want := range cases {
		sys, err := reg.Resolve(name)
		if err != nil {
			t.Fatalf("resolve %s: %v", name, err)
		}
		if got := sys.RecoveryFraction(fractions); got != want {
			t.Fatalf("%s: expected %.0f, got %.0f", name, want, got)
		}
	}
}

func TestNamesSorted(t *testing.T) {
	t.Parallel()

	names := DefaultRegistry().Names()
	if len(names) != 10 {
		t.Fatalf("expected 10 systems, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
