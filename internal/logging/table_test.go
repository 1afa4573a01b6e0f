package logging

import (
	"math"
	"strings"
	"testing"
)

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0.0, 2, "0.00"},
		{"positive", 3.14159, 2, "3.14"},
		{"negative", -16.5, 1, "-16.5"},
		{"large", 12345.6789, 2, "12345.68"},
		{"small normal", 0.001, 3, "0.001"},
		{"very small scientific", 0.00001, 2, "1.00e-05"},
		{"nan", math.NaN(), 2, MissingValue},
		{"positive inf", math.Inf(1), 2, MissingValue},
		{"negative inf", math.Inf(-1), 2, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetric(tt.value, tt.decimals); got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricDB(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"normal level", -23.5, "-23.5"},
		{"loud", -0.1, "-0.1"},
		{"digital silence", math.Inf(-1), "< -120"},
		{"below floor", -150.0, "< -120"},
		{"nan", math.NaN(), MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetricDB(tt.value, 1); got != tt.want {
				t.Errorf("formatMetricDB(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatMetricSigned(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{2.5, "+2.5"},
		{-1.2, "-1.2"},
		{0.0, "+0.0"},
		{math.NaN(), MissingValue},
	}
	for _, tt := range tests {
		if got := formatMetricSigned(tt.value, 1); got != tt.want {
			t.Errorf("formatMetricSigned(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatMetricSeconds(t *testing.T) {
	if got := formatMetricSeconds(0.48); got != "0.5" {
		t.Errorf("formatMetricSeconds(0.48) = %q, want %q", got, "0.5")
	}
	if got := formatMetricSeconds(-1); got != MissingValue {
		t.Errorf("formatMetricSeconds(-1) = %q, want %q", got, MissingValue)
	}
}

func TestMetricTableString(t *testing.T) {
	table := NewMetricTable("Overall", "Ch 1", "Ch 2")
	table.AddRow("Noise Floor", []string{"-62.0", "-63.5", "-61.0"}, "dBFS", "good")
	table.AddRow("RT60", []string{"0.4", "0.4", "0.5"}, "s", "")

	out := table.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("rendered %d lines, want 3:\n%s", len(lines), out)
	}

	// Header names every column.
	for _, header := range []string{"Overall", "Ch 1", "Ch 2", "Interpretation"} {
		if !strings.Contains(lines[0], header) {
			t.Errorf("header line %q missing %q", lines[0], header)
		}
	}

	// Values, units, and interpretation land on their rows.
	if !strings.Contains(lines[1], "-62.0") || !strings.Contains(lines[1], "dBFS") || !strings.Contains(lines[1], "good") {
		t.Errorf("first data row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "0.4") || !strings.Contains(lines[2], "s") {
		t.Errorf("second data row = %q", lines[2])
	}
}

func TestMetricTableMissingValues(t *testing.T) {
	table := NewMetricTable("Overall", "Ch 1")
	table.AddRow("Peak Level", []string{"-6.0"}, "dBFS", "")

	// The Ch 1 cell has no value, so the placeholder lands before the unit.
	out := table.String()
	if !strings.Contains(out, MissingValue+"  dBFS") {
		t.Errorf("missing value placeholder absent:\n%s", out)
	}
}

func TestMetricTableEmpty(t *testing.T) {
	table := NewMetricTable("Overall")
	if out := table.String(); out != "" {
		t.Errorf("empty table rendered %q, want empty string", out)
	}
}

func TestGainToTarget(t *testing.T) {
	if got := gainToTarget(-10.0, -6.0); got != 4.0 {
		t.Errorf("gainToTarget(-10, -6) = %v, want 4", got)
	}
	if got := gainToTarget(-3.0, -6.0); got != -3.0 {
		t.Errorf("gainToTarget(-3, -6) = %v, want -3", got)
	}
	if got := gainToTarget(math.Inf(-1), -6.0); !math.IsNaN(got) {
		t.Errorf("gainToTarget(-Inf, -6) = %v, want NaN", got)
	}
}
