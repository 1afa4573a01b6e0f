package ui

import (
	"github.com/linuxmatters/soundcheck/internal/analysis"
)

// ProgressMsg represents a progress update from the analysis engine
type ProgressMsg struct {
	FileIndex int
	Stage     string  // e.g. "Measuring noise floor"
	Fraction  float64 // 0.0 to 1.0
}

// FileStartMsg indicates a new file has started analysis
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished analysis
type FileCompleteMsg struct {
	FileIndex  int
	Result     *analysis.Result
	ReportPath string // empty when no report was written
	Error      error
}

// AllCompleteMsg indicates all files have been assessed
type AllCompleteMsg struct{}
