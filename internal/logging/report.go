// Package logging handles generation of assessment reports and recording
// advice for analyzed audio files.
package logging

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/soundcheck/internal/analysis"
)

// ReportData carries everything the report needs about one assessment run.
type ReportData struct {
	InputPath string
	StartTime time.Time
	EndTime   time.Time
	Result    *analysis.Result
	MainsHz   int
}

// ReportPath returns the report filename for an input file:
// "episode.wav" becomes "episode-soundcheck.log" alongside the input.
func ReportPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "-soundcheck.log"
}

// GenerateReport writes the full plain-text assessment report next to the
// input file and returns its path.
func GenerateReport(data ReportData) (string, error) {
	path := ReportPath(data.InputPath)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	r := data.Result
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70) + "\n")
	sb.WriteString("SOUNDCHECK ASSESSMENT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70) + "\n\n")

	sb.WriteString(fmt.Sprintf("File:      %s\n", data.InputPath))
	sb.WriteString(fmt.Sprintf("Date:      %s\n", data.StartTime.Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("Elapsed:   %s\n", data.EndTime.Sub(data.StartTime).Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", formatDurationHMS(r.Duration.Seconds())))
	sb.WriteString(fmt.Sprintf("Format:    %d Hz, %d channel(s)\n", r.SampleRate, r.Channels))
	sb.WriteString(fmt.Sprintf("Depth:     %s\n\n", r.Depth))

	sb.WriteString(levelSection(r))
	if r.Silence != nil {
		sb.WriteString(silenceSection(r))
	}
	if r.Clipping != nil {
		sb.WriteString(clippingSection(r))
	}
	if r.Stereo != nil || r.Bleed != nil || r.Overlap != nil {
		sb.WriteString(stereoSection(r))
	}
	sb.WriteString(tipsSection(r, data.MainsHz))

	if _, err := f.WriteString(sb.String()); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// levelSection renders the per-channel level and noise metrics as one table.
func levelSection(r *analysis.Result) string {
	headers := []string{"Overall"}
	for ch := 0; ch < r.Channels; ch++ {
		headers = append(headers, fmt.Sprintf("Ch %d", ch+1))
	}
	table := NewMetricTable(headers...)

	peakRow := []string{formatMetricDB(r.PeakDb, 1)}
	table.AddRow("Peak Level", peakRow, "dBFS", describeNormalization(r.Normalization))

	gainRow := []string{formatMetricSigned(gainToTarget(r.PeakDb, -6.0), 1)}
	table.AddRow("Gain to Target", gainRow, "dB", "")

	if r.NoiseFloor != nil {
		floorRow := []string{formatMetricDB(r.NoiseFloor.OverallDb, 1)}
		for _, db := range r.NoiseFloor.ChannelDb {
			floorRow = append(floorRow, formatMetricDB(db, 1))
		}
		table.AddRow("Noise Floor", floorRow, "dBFS", interpretNoiseFloor(r.NoiseFloor.OverallDb))
	}
	if r.Reverb != nil {
		rtRow := []string{formatMetricSeconds(r.Reverb.OverallRT60)}
		for _, rt := range r.Reverb.ChannelRT60 {
			rtRow = append(rtRow, formatMetricSeconds(rt))
		}
		table.AddRow("RT60", rtRow, "s", string(r.Reverb.Quality))
	}

	section := "LEVELS\n" + strings.Repeat("-", 70) + "\n" + table.String()
	if r.NoiseFloor != nil && r.NoiseFloor.HasDigitalSilence() {
		section += fmt.Sprintf("\nDigitally silent windows: %.1f%%\n", r.NoiseFloor.DigitalSilencePct)
	}
	return section + "\n"
}

// silenceSection renders the silence structure and the largest segments.
func silenceSection(r *analysis.Result) string {
	s := r.Silence
	var sb strings.Builder
	sb.WriteString("SILENCE\n" + strings.Repeat("-", 70) + "\n")
	sb.WriteString(fmt.Sprintf("Leading:   %s\n", formatTimestamp(s.Leading)))
	sb.WriteString(fmt.Sprintf("Trailing:  %s\n", formatTimestamp(s.Trailing)))
	sb.WriteString(fmt.Sprintf("Longest:   %s\n", formatTimestamp(s.Longest)))
	sb.WriteString(fmt.Sprintf("Threshold: %.1f dBFS\n", s.ThresholdDb))

	if len(s.Segments) > 0 {
		sb.WriteString("\nLargest segments:\n")
		shown := s.Segments
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for _, seg := range shown {
			tag := seg.Tag
			if tag == "" {
				tag = "internal"
			}
			sb.WriteString(fmt.Sprintf("  %-8s %s at %s\n",
				tag, formatTimestamp(seg.Duration), formatTimestamp(seg.Start)))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// clippingSection renders clipping counts and the worst regions.
func clippingSection(r *analysis.Result) string {
	c := r.Clipping
	var sb strings.Builder
	sb.WriteString("CLIPPING\n" + strings.Repeat("-", 70) + "\n")
	sb.WriteString(fmt.Sprintf("Hard regions: %d\n", c.HardRegions))
	sb.WriteString(fmt.Sprintf("Near regions: %d\n", c.NearRegions))

	for _, ch := range c.Channels {
		if ch.ClippedSamples == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("Channel %d:    %d clipped sample(s), %.3f%%",
			ch.Channel+1, ch.ClippedSamples, ch.ClippedPct))
		if ch.LimitReached {
			sb.WriteString(" (scan truncated)")
		}
		sb.WriteString("\n")
	}

	if len(c.TopRegions) > 0 {
		sb.WriteString("\nWorst regions:\n")
		for _, region := range c.TopRegions {
			sb.WriteString(fmt.Sprintf("  %-4s ch %d, %d sample(s) at sample %d, peak %.3f\n",
				region.Type, region.Channel+1, region.SampleCount, region.Start, region.PeakSample))
		}
	}
	if c.Truncated {
		sb.WriteString("\nRegion limits reached - counts are lower bounds.\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

// stereoSection renders the stereo-only analyses.
func stereoSection(r *analysis.Result) string {
	var sb strings.Builder
	sb.WriteString("STEREO\n" + strings.Repeat("-", 70) + "\n")

	if s := r.Stereo; s != nil {
		sb.WriteString(fmt.Sprintf("Character:  %s (%.0f%% confidence)\n",
			describeStereo(s.Classification), s.Confidence*100))
	}
	if b := r.Bleed; b != nil {
		sb.WriteString(fmt.Sprintf("Bleed:      %d mic, %d headphone of %d blocks\n",
			b.MicBlocks, b.HeadphoneBlocks, b.TotalBlocks))
		for _, seg := range b.MicSegments {
			sb.WriteString(fmt.Sprintf("  mic bleed %s - %s (corr %.2f, separation %.1f dB)\n",
				formatTimestamp(seg.Start), formatTimestamp(seg.End),
				seg.MaxCorrelation, seg.MinSeparationDb))
		}
		for _, seg := range b.HeadphoneSegments {
			sb.WriteString(fmt.Sprintf("  headphone bleed %s - %s\n",
				formatTimestamp(seg.Start), formatTimestamp(seg.End)))
		}
	}
	if o := r.Overlap; o != nil {
		sb.WriteString(fmt.Sprintf("Overlap:    %.1f%% of active conversation\n", o.OverlapPct))
		for _, seg := range o.Segments {
			sb.WriteString(fmt.Sprintf("  crosstalk %s - %s (%d blocks)\n",
				formatTimestamp(seg.Start), formatTimestamp(seg.End), seg.Blocks))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// tipsSection renders the prioritised recording advice.
func tipsSection(r *analysis.Result, mainsHz int) string {
	tips := GenerateRecordingTips(r, mainsHz)
	var sb strings.Builder
	sb.WriteString("RECORDING TIPS\n" + strings.Repeat("-", 70) + "\n")
	if len(tips) == 0 {
		sb.WriteString("No issues worth flagging - this is a clean recording.\n")
		return sb.String()
	}
	for i, tip := range tips {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, wrapText(tip.Message, 64, "   ")))
	}
	return sb.String()
}

// gainToTarget is the dB change needed to land the peak on the target.
// NaN when the peak is digital silence.
func gainToTarget(peakDb, targetDb float64) float64 {
	if math.IsInf(peakDb, -1) {
		return math.NaN()
	}
	return targetDb - peakDb
}
