package utils

import (
	"testing"
)

func TestClip(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-0.2, 0, 1, 0},
		{1.7, 0, 1, 1},
	}
	for _, tt := range tests {
		if got := Clip(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clip(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
