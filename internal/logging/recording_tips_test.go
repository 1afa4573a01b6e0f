package logging

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/soundcheck/internal/analysis"
)

// cleanResult builds an assessment with nothing worth flagging.
func cleanResult() *analysis.Result {
	return &analysis.Result{
		Depth:         analysis.DepthDeep,
		SampleRate:    44100,
		Channels:      1,
		Duration:      10 * time.Minute,
		PeakDb:        -6.0,
		Normalization: analysis.Normalized,
		NoiseFloor:    &analysis.NoiseFloorResult{OverallDb: -75.0, ChannelDb: []float64{-75.0}},
		Reverb:        &analysis.ReverbResult{OverallRT60: 0.2, Quality: analysis.ReverbExcellent},
		Silence:       &analysis.SilenceResult{},
		Clipping:      &analysis.ClippingResult{PeakDb: -6.0},
	}
}

func ruleIDs(tips []RecordingTip) []string {
	ids := make([]string, len(tips))
	for i, tip := range tips {
		ids[i] = tip.RuleID
	}
	return ids
}

func hasRule(tips []RecordingTip, ruleID string) bool {
	for _, tip := range tips {
		if tip.RuleID == ruleID {
			return true
		}
	}
	return false
}

func TestGenerateRecordingTipsCleanRecording(t *testing.T) {
	tips := GenerateRecordingTips(cleanResult(), 50)
	if len(tips) != 0 {
		t.Errorf("tips for a clean recording = %v, want none", ruleIDs(tips))
	}
}

func TestGenerateRecordingTipsNil(t *testing.T) {
	if tips := GenerateRecordingTips(nil, 50); tips != nil {
		t.Errorf("tips for nil result = %v, want nil", tips)
	}
}

func TestRecordingTipRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*analysis.Result)
		wantRule string
	}{
		{
			"hard clipping",
			func(r *analysis.Result) {
				r.Clipping.HardRegions = 3
			},
			"level_clipping",
		},
		{
			"near clipping",
			func(r *analysis.Result) {
				r.Clipping.NearRegions = 2
			},
			"level_near_clipping",
		},
		{
			"hot level",
			func(r *analysis.Result) {
				r.PeakDb = -2.0
				r.Normalization = analysis.TooLoud
			},
			"level_hot",
		},
		{
			"badly low gain",
			func(r *analysis.Result) {
				r.PeakDb = -30.0
				r.Normalization = analysis.TooQuiet
			},
			"level_too_quiet",
		},
		{
			"slightly quiet",
			func(r *analysis.Result) {
				r.PeakDb = -10.0
				r.Normalization = analysis.TooQuiet
			},
			"level_quiet",
		},
		{
			"high noise floor",
			func(r *analysis.Result) {
				r.NoiseFloor.OverallDb = -42.0
			},
			"background_noise_high",
		},
		{
			"moderate noise floor",
			func(r *analysis.Result) {
				r.NoiseFloor.OverallDb = -55.0
			},
			"background_noise_moderate",
		},
		{
			"reverberant room",
			func(r *analysis.Result) {
				r.Reverb.OverallRT60 = 1.3
				r.Reverb.Quality = analysis.ReverbVeryPoor
			},
			"reverb_high",
		},
		{
			"slight echo",
			func(r *analysis.Result) {
				r.Reverb.OverallRT60 = 0.7
				r.Reverb.Quality = analysis.ReverbFair
			},
			"reverb_moderate",
		},
		{
			"mic bleed",
			func(r *analysis.Result) {
				r.Bleed = &analysis.BleedResult{
					MicBlocks:   4,
					MicSegments: []analysis.BleedSegment{{Type: analysis.BleedMic}},
				}
			},
			"mic_bleed",
		},
		{
			"headphone bleed",
			func(r *analysis.Result) {
				r.Bleed = &analysis.BleedResult{
					HeadphoneBlocks:   4,
					HeadphoneSegments: []analysis.BleedSegment{{Type: analysis.BleedHeadphone}},
				}
			},
			"headphone_bleed",
		},
		{
			"crosstalk",
			func(r *analysis.Result) {
				r.Overlap = &analysis.OverlapResult{OverlapPct: 25.0}
			},
			"crosstalk",
		},
		{
			"edge silence",
			func(r *analysis.Result) {
				r.Silence.Leading = 8 * time.Second
			},
			"edge_silence",
		},
		{
			"digital silence",
			func(r *analysis.Result) {
				r.PeakDb = math.Inf(-1)
				r.Normalization = analysis.TooQuiet
				r.NoiseFloor.OverallDb = math.Inf(-1)
				r.NoiseFloor.DigitalSilencePct = 100.0
			},
			"digital_silence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cleanResult()
			tt.mutate(r)
			tips := GenerateRecordingTips(r, 50)
			if !hasRule(tips, tt.wantRule) {
				t.Errorf("tips = %v, want rule %q", ruleIDs(tips), tt.wantRule)
			}
		})
	}
}

func TestRecordingTipExclusions(t *testing.T) {
	t.Run("near clipping suppressed by hard clipping", func(t *testing.T) {
		r := cleanResult()
		r.Clipping.HardRegions = 2
		r.Clipping.NearRegions = 5

		tips := GenerateRecordingTips(r, 50)
		if !hasRule(tips, "level_clipping") {
			t.Error("level_clipping missing")
		}
		if hasRule(tips, "level_near_clipping") {
			t.Error("level_near_clipping not suppressed")
		}
	})

	t.Run("gain advice suppressed by digital silence", func(t *testing.T) {
		r := cleanResult()
		r.PeakDb = math.Inf(-1)
		r.Normalization = analysis.TooQuiet
		r.NoiseFloor.OverallDb = math.Inf(-1)
		r.NoiseFloor.DigitalSilencePct = 100.0

		tips := GenerateRecordingTips(r, 50)
		if !hasRule(tips, "digital_silence") {
			t.Error("digital_silence missing")
		}
		if hasRule(tips, "level_too_quiet") || hasRule(tips, "level_quiet") {
			t.Error("gain advice not suppressed for digital silence")
		}
	})
}

func TestRecordingTipsCapAndOrder(t *testing.T) {
	// Trip most rules at once.
	r := cleanResult()
	r.PeakDb = -30.0
	r.Normalization = analysis.TooQuiet
	r.NoiseFloor.OverallDb = -42.0
	r.Reverb.OverallRT60 = 1.5
	r.Reverb.Quality = analysis.ReverbVeryPoor
	r.Silence.Leading = 10 * time.Second
	r.Silence.Trailing = 10 * time.Second
	r.Bleed = &analysis.BleedResult{
		MicSegments:       []analysis.BleedSegment{{Type: analysis.BleedMic}},
		HeadphoneSegments: []analysis.BleedSegment{{Type: analysis.BleedHeadphone}},
	}
	r.Overlap = &analysis.OverlapResult{OverlapPct: 30.0}

	tips := GenerateRecordingTips(r, 60)
	if len(tips) > MaxRecordingTips {
		t.Errorf("tips = %d, want at most %d", len(tips), MaxRecordingTips)
	}
	for i := 1; i < len(tips); i++ {
		if tips[i].Priority > tips[i-1].Priority {
			t.Errorf("tips not sorted by priority: %v", ruleIDs(tips))
		}
	}
	if tips[0].RuleID != "level_too_quiet" {
		t.Errorf("top tip = %q, want level_too_quiet", tips[0].RuleID)
	}
}

func TestNoiseTipNamesMainsFrequency(t *testing.T) {
	r := cleanResult()
	r.NoiseFloor.OverallDb = -42.0

	tips := GenerateRecordingTips(r, 60)
	if len(tips) == 0 {
		t.Fatal("no tips generated")
	}
	if !strings.Contains(tips[0].Message, "60 Hz") {
		t.Errorf("noise tip does not name the mains frequency: %q", tips[0].Message)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		indent   string
		want     string
	}{
		{
			name:     "short text no wrap",
			text:     "Hello world",
			maxWidth: 20,
			indent:   "  ",
			want:     "Hello world",
		},
		{
			name:     "wraps at word boundary",
			text:     "alpha beta gamma delta epsilon",
			maxWidth: 11,
			indent:   "  ",
			want:     "alpha beta\n  gamma delta\n  epsilon",
		},
		{
			name:     "empty",
			text:     "",
			maxWidth: 10,
			indent:   "  ",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.maxWidth, tt.indent); got != tt.want {
				t.Errorf("wrapText = %q, want %q", got, tt.want)
			}
		})
	}
}
