package limits

import "testing"

func TestResults_Clamp(t *testing.T) {
	tests := []struct {
		name string
		r    Results
		in   int
		want int
	}{
		{"zero uses default", DefaultResults, 0, 10},
		{"within range", DefaultResults, 25, 25},
		{"above cap", DefaultResults, 1000, 100},
		{"custom policy", Results{Default: 5, Cap: 20}, 0, 5},
		{"custom cap", Results{Default: 5, Cap: 20}, 21, 20},
		{"unset policy", Results{}, 0, 10},
		{"default above cap", Results{Default: 50, Cap: 20}, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Clamp(tt.in); got != tt.want {
				t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
