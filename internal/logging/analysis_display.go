// Console display of a full assessment, for inspection without the TUI.

package logging

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/soundcheck/internal/analysis"
)

// DisplayAnalysisResults writes the assessment to w in a readable plain-text
// layout. mainsHz is the local mains grid frequency for the tips section.
func DisplayAnalysisResults(w io.Writer, inputPath string, r *analysis.Result, mainsHz int) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "ASSESSMENT: %s\n", filepath.Base(inputPath))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(r.Duration.Seconds()))
	fmt.Fprintf(w, "Sample Rate: %d Hz\n", r.SampleRate)
	fmt.Fprintf(w, "Channels:    %d\n", r.Channels)
	fmt.Fprintf(w, "Depth:       %s\n", r.Depth)
	fmt.Fprintln(w)

	writeSection(w, "LEVELS")
	fmt.Fprintf(w, "  Peak:           %s dBFS\n", formatMetricDB(r.PeakDb, 1))
	fmt.Fprintf(w, "  Normalization:  %s\n", describeNormalization(r.Normalization))
	fmt.Fprintln(w)

	if r.NoiseFloor != nil {
		writeSection(w, "NOISE FLOOR")
		fmt.Fprintf(w, "  Overall:        %s dBFS (%s)\n",
			formatMetricDB(r.NoiseFloor.OverallDb, 1), interpretNoiseFloor(r.NoiseFloor.OverallDb))
		for ch, db := range r.NoiseFloor.ChannelDb {
			fmt.Fprintf(w, "  Channel %d:      %s dBFS\n", ch+1, formatMetricDB(db, 1))
		}
		if r.NoiseFloor.HasDigitalSilence() {
			fmt.Fprintf(w, "  Digital zeros:  %.1f%% of windows\n", r.NoiseFloor.DigitalSilencePct)
		}
		fmt.Fprintln(w)
	}

	if r.Silence != nil {
		writeSection(w, "SILENCE")
		fmt.Fprintf(w, "  Leading:        %s\n", formatTimestamp(r.Silence.Leading))
		fmt.Fprintf(w, "  Trailing:       %s\n", formatTimestamp(r.Silence.Trailing))
		fmt.Fprintf(w, "  Longest:        %s\n", formatTimestamp(r.Silence.Longest))
		fmt.Fprintf(w, "  Threshold:      %.1f dBFS\n", r.Silence.ThresholdDb)
		fmt.Fprintf(w, "  Segments:       %d\n", len(r.Silence.Segments))
		fmt.Fprintln(w)
	}

	if r.Clipping != nil {
		writeSection(w, "CLIPPING")
		fmt.Fprintf(w, "  Hard regions:   %d\n", r.Clipping.HardRegions)
		fmt.Fprintf(w, "  Near regions:   %d\n", r.Clipping.NearRegions)
		if r.Clipping.HardRegions+r.Clipping.NearRegions > 0 {
			fmt.Fprintf(w, "  Longest:        %s\n", formatTimestamp(r.Clipping.LongestRegion))
			fmt.Fprintf(w, "  Average:        %s\n", formatTimestamp(r.Clipping.AverageRegion))
		}
		if r.Clipping.Truncated {
			fmt.Fprintln(w, "  Note:           region limits reached, counts are lower bounds")
		}
		fmt.Fprintln(w)
	}

	if r.Reverb != nil {
		writeSection(w, "REVERBERATION")
		fmt.Fprintf(w, "  RT60:           %.2f s (%s)\n", r.Reverb.OverallRT60, r.Reverb.Quality)
		fmt.Fprintf(w, "  Onsets:         %d measured\n", r.Reverb.OnsetCount)
		fmt.Fprintln(w)
	}

	if r.Stereo != nil {
		writeSection(w, "STEREO FIELD")
		fmt.Fprintf(w, "  Character:      %s (%.0f%% confidence)\n",
			describeStereo(r.Stereo.Classification), r.Stereo.Confidence*100)
		fmt.Fprintf(w, "  Active blocks:  %d (%d balanced, %d left, %d right)\n",
			r.Stereo.ActiveBlocks, r.Stereo.BalancedBlocks, r.Stereo.LeftDominant, r.Stereo.RightDominant)
		fmt.Fprintln(w)
	}

	if r.Bleed != nil {
		writeSection(w, "CHANNEL BLEED")
		fmt.Fprintf(w, "  Mic bleed:      %d block(s) in %d segment(s)\n",
			r.Bleed.MicBlocks, len(r.Bleed.MicSegments))
		fmt.Fprintf(w, "  Headphone:      %d block(s) in %d segment(s)\n",
			r.Bleed.HeadphoneBlocks, len(r.Bleed.HeadphoneSegments))
		fmt.Fprintf(w, "  Concerning:     %d of %d blocks\n",
			r.Bleed.ConcerningBlocks, r.Bleed.TotalBlocks)
		fmt.Fprintln(w)
	}

	if r.Overlap != nil {
		writeSection(w, "CONVERSATIONAL OVERLAP")
		fmt.Fprintf(w, "  Overlap:        %.1f%% of active conversation\n", r.Overlap.OverlapPct)
		fmt.Fprintf(w, "  Segments:       %d\n", len(r.Overlap.Segments))
		fmt.Fprintln(w)
	}

	tips := GenerateRecordingTips(r, mainsHz)
	if len(tips) > 0 {
		writeSection(w, "RECORDING TIPS")
		for i, tip := range tips {
			fmt.Fprintf(w, "  %d. %s\n", i+1, wrapText(tip.Message, 60, "     "))
		}
	}
}

// writeSection writes a section header.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
}

// describeNormalization renders the verdict for humans.
func describeNormalization(s analysis.NormalizationStatus) string {
	switch s {
	case analysis.Normalized:
		return "at the -6 dB target"
	case analysis.TooLoud:
		return "above the -6 dB target"
	default:
		return "below the -6 dB target"
	}
}

// describeStereo renders the stereo verdict for humans.
func describeStereo(c analysis.StereoClass) string {
	switch c {
	case analysis.StereoMonoAsStereo:
		return "mono source in both channels"
	case analysis.StereoConversational:
		return "one voice per channel"
	case analysis.StereoMonoLeft:
		return "left channel only"
	case analysis.StereoMonoRight:
		return "right channel only"
	default:
		return "mixed stereo content"
	}
}

// interpretNoiseFloor buckets a noise floor into a plain-language verdict.
func interpretNoiseFloor(db float64) string {
	switch {
	case math.IsInf(db, -1):
		return "digital silence"
	case db <= -70:
		return "excellent"
	case db <= -60:
		return "good"
	case db <= -50:
		return "acceptable"
	default:
		return "noisy"
	}
}

// formatDurationHMS formats seconds as "Xh Ym Zs", "Ym Zs", or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}

// formatTimestamp formats a duration as a timestamp string, e.g. "1m 32s".
func formatTimestamp(d time.Duration) string {
	totalSeconds := d.Seconds()
	if totalSeconds < 60 {
		return fmt.Sprintf("%.1fs", totalSeconds)
	}

	minutes := int(totalSeconds) / 60
	seconds := math.Mod(totalSeconds, 60)

	if minutes >= 60 {
		hours := minutes / 60
		minutes = minutes % 60
		return fmt.Sprintf("%dh %dm %.0fs", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %.0fs", minutes, seconds)
}
