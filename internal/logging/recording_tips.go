package logging

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/linuxmatters/soundcheck/internal/analysis"
)

// RecordingTip is a single piece of actionable recording advice derived
// from the assessment.
type RecordingTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g. "level_clipping")
}

// MaxRecordingTips is the maximum number of tips to return.
const MaxRecordingTips = 5

// Edge silence worth trimming.
const edgeSilenceTipThreshold = 5 * time.Second

// GenerateRecordingTips inspects an assessment and returns prioritised
// recording improvement suggestions. mainsHz names the local mains grid
// frequency for hum advice (50 or 60).
func GenerateRecordingTips(r *analysis.Result, mainsHz int) []RecordingTip {
	if r == nil {
		return nil
	}

	var tips []RecordingTip
	firedRules := make(map[string]bool)

	rules := []func(*analysis.Result, int) *RecordingTip{
		tipDigitalSilence,
		tipClipping,
		tipNearClipping,
		tipLevelTooHot,
		tipLevelTooQuiet,
		tipBackgroundNoise,
		tipReverb,
		tipMicBleed,
		tipHeadphoneBleed,
		tipCrosstalk,
		tipEdgeSilence,
	}

	for _, rule := range rules {
		if tip := rule(r, mainsHz); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, firedRules)

	// Sort by priority (descending)
	sort.Slice(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxRecordingTips {
		tips = tips[:MaxRecordingTips]
	}
	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. For example, gain advice is meaningless when the
// recording is digital silence.
func applyExclusions(tips []RecordingTip, fired map[string]bool) []RecordingTip {
	var result []RecordingTip
	for _, tip := range tips {
		switch tip.RuleID {
		case "level_too_quiet", "level_quiet", "level_hot":
			if fired["digital_silence"] || fired["level_clipping"] {
				continue
			}
		case "level_near_clipping":
			if fired["level_clipping"] {
				continue
			}
		case "background_noise_high", "background_noise_moderate":
			if fired["digital_silence"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// tipDigitalSilence fires when the recording is entirely (or almost
// entirely) digital zeros, which points at routing rather than levels.
func tipDigitalSilence(r *analysis.Result, _ int) *RecordingTip {
	if r.NoiseFloor == nil || r.NoiseFloor.DigitalSilencePct < 99.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "digital_silence",
		Message:  "The recording contains no signal at all - check that the correct input device is selected and that your microphone is not muted.",
	}
}

// tipClipping fires when hard clipping regions were found.
func tipClipping(r *analysis.Result, _ int) *RecordingTip {
	if r.Clipping == nil || r.Clipping.HardRegions == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "level_clipping",
		Message: fmt.Sprintf("Your recording is clipping (%d distorted region(s) found) - turn your microphone gain down by 6-10 dB to prevent distortion.",
			r.Clipping.HardRegions),
	}
}

// tipNearClipping fires when samples crowd full scale without hard
// truncation. Suppressed when hard clipping already fired.
func tipNearClipping(r *analysis.Result, _ int) *RecordingTip {
	if r.Clipping == nil || r.Clipping.NearRegions == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 9,
		RuleID:   "level_near_clipping",
		Message:  "Your recording is very close to clipping - turn your microphone gain down by 3-6 dB to give yourself some headroom.",
	}
}

// tipLevelTooHot fires when the peak sits above the -6 dB delivery target.
func tipLevelTooHot(r *analysis.Result, _ int) *RecordingTip {
	if r.Normalization != analysis.TooLoud {
		return nil
	}
	excess := r.PeakDb + 6.0
	return &RecordingTip{
		Priority: 8,
		RuleID:   "level_hot",
		Message: fmt.Sprintf("Your peak level is %.1f dB above the -6 dB target - reduce your gain by about %.0f dB.",
			excess, math.Ceil(excess)),
	}
}

// tipLevelTooQuiet fires when the peak sits below the -6 dB target. A peak
// under -20 dB means the gain is badly off; above that it is a nudge.
func tipLevelTooQuiet(r *analysis.Result, _ int) *RecordingTip {
	if r.Normalization != analysis.TooQuiet || math.IsInf(r.PeakDb, -1) {
		return nil
	}
	gainNeeded := -6.0 - r.PeakDb
	if r.PeakDb < -20.0 {
		return &RecordingTip{
			Priority: 10,
			RuleID:   "level_too_quiet",
			Message: fmt.Sprintf("Your microphone gain is too low - try increasing it by about %.0f dB.",
				gainNeeded),
		}
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "level_quiet",
		Message: fmt.Sprintf("Your recording is a bit quiet - increasing your microphone gain by about %.0f dB would improve quality.",
			gainNeeded),
	}
}

// tipBackgroundNoise fires when the noise floor is elevated. The high tier
// names the local mains frequency, the usual culprit for steady hum.
func tipBackgroundNoise(r *analysis.Result, mainsHz int) *RecordingTip {
	if r.NoiseFloor == nil || math.IsInf(r.NoiseFloor.OverallDb, -1) {
		return nil
	}
	floor := r.NoiseFloor.OverallDb

	if floor > -50.0 {
		return &RecordingTip{
			Priority: 9,
			RuleID:   "background_noise_high",
			Message: fmt.Sprintf("Background noise is high (%.0f dBFS) - turn off fans or appliances before recording, and if you hear a steady hum check for %d Hz mains interference from power supplies or chargers near the microphone.",
				floor, mainsHz),
		}
	}
	if floor > -60.0 {
		return &RecordingTip{
			Priority: 6,
			RuleID:   "background_noise_moderate",
			Message: fmt.Sprintf("Background noise is slightly elevated (%.0f dBFS) - if possible, turn off any fans or appliances nearby.",
				floor),
		}
	}
	return nil
}

// tipReverb fires on poor room acoustics.
func tipReverb(r *analysis.Result, _ int) *RecordingTip {
	if r.Reverb == nil {
		return nil
	}
	switch r.Reverb.Quality {
	case analysis.ReverbPoor, analysis.ReverbVeryPoor:
		return &RecordingTip{
			Priority: 7,
			RuleID:   "reverb_high",
			Message: fmt.Sprintf("Your room is quite reverberant (RT60 around %.1f s) - soft furnishings, curtains, or a smaller room would reduce the echo considerably.",
				r.Reverb.OverallRT60),
		}
	case analysis.ReverbFair:
		return &RecordingTip{
			Priority: 4,
			RuleID:   "reverb_moderate",
			Message:  "There's a little room echo in your recording - moving closer to the microphone or adding soft furnishings would tighten up the sound.",
		}
	}
	return nil
}

// tipMicBleed fires when correlated cross-channel leakage was confirmed.
func tipMicBleed(r *analysis.Result, _ int) *RecordingTip {
	if r.Bleed == nil || len(r.Bleed.MicSegments) == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "mic_bleed",
		Message:  "Each microphone is picking up the other speaker. Increase the distance between speakers, or use directional microphones pointed away from each other.",
	}
}

// tipHeadphoneBleed fires when uncorrelated monitor leakage was confirmed.
func tipHeadphoneBleed(r *analysis.Result, _ int) *RecordingTip {
	if r.Bleed == nil || len(r.Bleed.HeadphoneSegments) == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "headphone_bleed",
		Message:  "Your microphone is picking up audio from your headphones. Lower your monitoring volume or switch to closed-back headphones.",
	}
}

// tipCrosstalk fires when both speakers talk over each other a lot.
func tipCrosstalk(r *analysis.Result, _ int) *RecordingTip {
	if r.Overlap == nil || r.Overlap.OverlapPct <= 10.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 5,
		RuleID:   "crosstalk",
		Message: fmt.Sprintf("Speakers talk over each other in %.0f%% of the active conversation - that makes editing much harder. Agree on hand signals or pauses before interjecting.",
			r.Overlap.OverlapPct),
	}
}

// tipEdgeSilence fires on long leading or trailing silence worth trimming.
func tipEdgeSilence(r *analysis.Result, _ int) *RecordingTip {
	if r.Silence == nil {
		return nil
	}
	if r.Silence.Leading < edgeSilenceTipThreshold && r.Silence.Trailing < edgeSilenceTipThreshold {
		return nil
	}
	return &RecordingTip{
		Priority: 3,
		RuleID:   "edge_silence",
		Message: fmt.Sprintf("There's %.0f s of silence at the start and %.0f s at the end - trim these before publishing.",
			r.Silence.Leading.Seconds(), r.Silence.Trailing.Seconds()),
	}
}
