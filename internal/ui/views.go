package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/soundcheck/internal/analysis"
)

// renderAssessmentView renders the main assessment view
func renderAssessmentView(m Model) string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	// File queue
	b.WriteString(renderFileQueue(m))
	b.WriteString("\n\n")

	// Overall progress
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A40000")).
		Render("Soundcheck 🎧 - Podcast Recording Assessment")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Assessing %d file(s)", m.TotalFiles))

	return title + "\n" + subtitle
}

// renderFileQueue renders the list of files with their status
func renderFileQueue(m Model) string {
	var b strings.Builder

	for _, file := range m.Files {
		b.WriteString(renderFileEntry(file))
		b.WriteString("\n")
	}

	return b.String()
}

// renderFileEntry renders a single file entry in the queue
func renderFileEntry(file FileProgress) string {
	fileName := filepath.Base(file.InputPath)

	switch file.Status {
	case StatusComplete:
		// ✓ completed file with summary
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		return fmt.Sprintf(" %s %s\n   %s", icon, fileName, renderVerdictLine(file.Result))

	case StatusAnalyzing:
		// ⚙ active file with detailed progress
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, fileName, renderFileDetails(file))

	case StatusError:
		// ✗ failed file
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, fileName, file.Error)

	default:
		// ○ queued file
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, fileName)
	}
}

// renderFileDetails renders detailed progress for the active file
func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#A40000")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	stage := file.Stage
	if stage == "" {
		stage = "Starting analysis"
	}
	content.WriteString(stage + "\n")

	// Progress bar
	content.WriteString(renderProgressBar(file.Fraction, 40))
	content.WriteString("\n\n")

	// Time estimates
	elapsed := file.ElapsedTime.Seconds()
	var remaining float64
	if file.Fraction > 0 {
		remaining = (elapsed / file.Fraction) - elapsed
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs", elapsed, remaining))

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
		currentFile := m.CurrentIndex + 1 // 1-indexed for display
		content = fmt.Sprintf("Assessing file %d of %d (%d complete)",
			currentFile, m.TotalFiles, m.CompletedFiles)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedFiles, m.TotalFiles)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Assessment Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, file := range m.Files {
		switch file.Status {
		case StatusComplete:
			b.WriteString(renderCompletedFile(file))
			b.WriteString("\n")
		case StatusError:
			icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
			b.WriteString(fmt.Sprintf(" %s %s\n   Error: %v\n", icon, filepath.Base(file.InputPath), file.Error))
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	if m.FailedFiles > 0 {
		b.WriteString(fmt.Sprintf("%d of %d file(s) assessed, %d failed\n",
			m.CompletedFiles, m.TotalFiles, m.FailedFiles))
	} else {
		b.WriteString(fmt.Sprintf("All %d file(s) assessed ✓\n", m.TotalFiles))
	}

	return b.String()
}

// renderCompletedFile renders a summary for a completed file
func renderCompletedFile(file FileProgress) string {
	fileName := filepath.Base(file.InputPath)

	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")

	summary := fmt.Sprintf(" %s %s\n   %s", icon, fileName, renderVerdictLine(file.Result))
	if file.ReportPath != "" {
		summary += fmt.Sprintf("\n   Report: %s", file.ReportPath)
	}
	return summary
}

// renderVerdictLine renders the one-line headline verdict for a result.
func renderVerdictLine(r *analysis.Result) string {
	if r == nil {
		return "no result"
	}
	if math.IsInf(r.PeakDb, -1) {
		return "Peak: silence | nothing recorded"
	}

	parts := []string{fmt.Sprintf("Peak: %.1f dBFS (%s)", r.PeakDb, describeNormalization(r.Normalization))}
	if r.NoiseFloor != nil && !math.IsInf(r.NoiseFloor.OverallDb, -1) {
		parts = append(parts, fmt.Sprintf("Floor: %.0f dBFS", r.NoiseFloor.OverallDb))
	}
	if r.Reverb != nil && r.Reverb.OnsetCount > 0 {
		parts = append(parts, fmt.Sprintf("RT60: %.1fs", r.Reverb.OverallRT60))
	}
	if r.Clipping != nil && r.Clipping.HardRegions > 0 {
		parts = append(parts, fmt.Sprintf("Clipping: %d region(s)", r.Clipping.HardRegions))
	}
	return strings.Join(parts, " | ")
}

// describeNormalization renders the level verdict in a word.
func describeNormalization(s analysis.NormalizationStatus) string {
	switch s {
	case analysis.Normalized:
		return "on target"
	case analysis.TooLoud:
		return "hot"
	default:
		return "quiet"
	}
}
