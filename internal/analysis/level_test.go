package analysis

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestDbFromLinear(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.0, 0.0},
		{0.5, -6.0206},
		{0.1, -20.0},
		{0.001, -60.0},
	}
	for _, tt := range tests {
		if got := dbFromLinear(tt.in); !approxEqual(got, tt.want, 0.001) {
			t.Errorf("dbFromLinear(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := dbFromLinear(0); !math.IsInf(got, -1) {
		t.Errorf("dbFromLinear(0) = %v, want -Inf", got)
	}
	if got := dbFromLinear(-0.5); !math.IsInf(got, -1) {
		t.Errorf("dbFromLinear(-0.5) = %v, want -Inf", got)
	}
}

func TestLinearFromDbRoundTrip(t *testing.T) {
	for _, db := range []float64{0, -6, -20, -47.5, -60, -90} {
		if got := dbFromLinear(linearFromDb(db)); !approxEqual(got, db, 1e-9) {
			t.Errorf("round trip of %v dB = %v", db, got)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestTokenNilSafe(t *testing.T) {
	var token *Token
	if token.Cancelled() {
		t.Error("nil token reports cancelled")
	}
	if err := checkCancel(nil, "anything"); err != nil {
		t.Errorf("checkCancel(nil) = %v, want nil", err)
	}
}

func TestCancelledErrorMessage(t *testing.T) {
	err := &CancelledError{Stage: "clipping"}
	want := "analysis cancelled during clipping"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(&CancelledError{Stage: "peak scan"}) {
		t.Error("IsCancelled(CancelledError) = false")
	}
	if !IsCancelled(fmt.Errorf("analysing: %w", &CancelledError{Stage: "silence"})) {
		t.Error("IsCancelled(wrapped CancelledError) = false")
	}
	if IsCancelled(errors.New("something else")) {
		t.Error("IsCancelled(other error) = true")
	}
	if IsCancelled(nil) {
		t.Error("IsCancelled(nil) = true")
	}
}
