package statistics

import "testing"

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total int64
		want        float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 7, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{1, 16, 6.3},
		{3, 16, 18.8},
		{7, 7, 100},
		{9, 7, 100},
		{-1, 7, 0},
	}
	for _, tt := range tests {
		if got := Percent(tt.part, tt.total); got != tt.want {
			t.Fatalf("Percent(%d, %d) = %v, want %v", tt.part, tt.total, got, tt.want)
		}
	}
}
