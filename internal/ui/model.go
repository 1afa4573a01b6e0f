// Package ui provides the Bubbletea terminal user interface for soundcheck
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/soundcheck/internal/analysis"
)

// FileStatus represents the assessment state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusAnalyzing
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath string
	Status    FileStatus

	// Stage tracking
	Stage    string  // Current engine stage message
	Fraction float64 // 0.0 to 1.0

	StartTime   time.Time
	ElapsedTime time.Duration

	// Completion results
	Result     *analysis.Result
	ReportPath string

	// Error tracking
	Error error
}

// Model is the Bubbletea model for the assessment UI
type Model struct {
	// File queue
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	// Global state
	StartTime time.Time
	Done      bool

	// Channel for receiving progress updates from the engine
	ProgressChan chan tea.Msg

	// Cancel stops the running analysis when the user quits early
	Cancel func()

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files. cancel is
// invoked when the user quits before all files are done; it may be nil.
func NewModel(inputFiles []string, cancel func()) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath: path,
			Status:    StatusQueued,
		}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1, // No file analyzing yet
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100), // Buffered channel
		Cancel:       cancel,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForProgress(m.ProgressChan)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.Done && m.Cancel != nil {
				m.Cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case ProgressMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Files) {
			m.Files[msg.FileIndex] = updateFileProgress(m.Files[msg.FileIndex], msg)
		}
		return m, waitForProgress(m.ProgressChan)

	case FileStartMsg:
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusAnalyzing
		m.Files[m.CurrentIndex].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case FileCompleteMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Files) {
			file := &m.Files[msg.FileIndex]
			file.Result = msg.Result
			file.ReportPath = msg.ReportPath
			file.Error = msg.Error
			file.ElapsedTime = time.Since(file.StartTime)

			if msg.Error != nil {
				file.Status = StatusError
				m.FailedFiles++
			} else {
				file.Status = StatusComplete
				m.CompletedFiles++
			}
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing...\n"
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderAssessmentView(m)
}

// updateFileProgress updates a FileProgress based on a ProgressMsg
func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	fp.Stage = msg.Stage
	fp.Fraction = msg.Fraction
	fp.ElapsedTime = time.Since(fp.StartTime)
	if fp.Status == StatusQueued {
		fp.Status = StatusAnalyzing
	}
	return fp
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
