package cpuspec

import "testing"

func TestDeterminePerformanceCores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		brand string
		want  int
	}{
		{"intel 12th gen i7", "12th Gen Intel(R) Core(TM) i7-12700K", 8},
		{"intel 13th gen i5", "13th Gen Intel(R) Core(TM) i5-13600K", 6},
		{"intel 14th gen i3", "Intel(R) Core(TM) i3-14100", 4},
		{"intel core ultra 9", "Intel(R) Core(TM) Ultra 9 285K", 8},
		{"intel core ultra 5", "Intel(R) Core(TM) Ultra 5 225", 4},
		{"apple m1", "Apple M1", 4},
		{"apple m2 max", "Apple M2 Max", 12},
		{"apple m4 pro", "Apple M4 Pro", 8},
		{"non-hybrid amd", "AMD Ryzen 9 5950X 16-Core Processor", 0},
		{"unknown", "Generic CPU", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := determinePerformanceCores(tt.brand); got != tt.want {
				t.Errorf("determinePerformanceCores(%q) = %d, want %d", tt.brand, got, tt.want)
			}
		})
	}
}

func TestGetOptimalThreadCount(t *testing.T) {
	t.Parallel()

	// Whatever the host is, the recommendation must be a usable pool size.
	if got := GetCPUSpec().GetOptimalThreadCount(); got < 1 {
		t.Errorf("GetOptimalThreadCount() = %d, want at least 1", got)
	}

	// A known hybrid CPU is capped by the host's available CPUs.
	spec := CPUSpec{BrandName: "known hybrid", PerformanceCores: 2}
	if got := spec.GetOptimalThreadCount(); got < 1 || got > 2 {
		t.Errorf("GetOptimalThreadCount() = %d, want 1 or 2", got)
	}
}
