package profile

import (
	"errors"
	"slices"
	"testing"
)

func TestProfiler_ZeroValueIsNoop(t *testing.T) {
	stop, err := Profiler{}.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	stop.Stop()
}

func TestProfiler_UnknownMode(t *testing.T) {
	stop, err := Profiler{Mode: "bogus"}.Start()
	if stop == nil {
		t.Fatalf("Start returned a nil Stopper")
	}

	want := ErrUnknownMode
	if !Enabled {
		want = ErrDisabled
	}

	if !errors.Is(err, want) {
		t.Errorf("Start(bogus) = %v, want %v", err, want)
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("Modes = %v without profiling compiled in", modes)
		}

		return
	}

	if !slices.IsSorted(modes) {
		t.Errorf("Modes not sorted: %v", modes)
	}

	for _, want := range []string{"cpu", "heap", "trace"} {
		if !slices.Contains(modes, want) {
			t.Errorf("Modes missing %q: %v", want, modes)
		}
	}
}
