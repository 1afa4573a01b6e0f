package analysis

// Stereo field classifier constants.
const (
	// A block is active when its louder channel's RMS clears this level.
	stereoActiveRMS = 0.001

	// One channel dominates a block when its RMS exceeds the other's by
	// this ratio; otherwise the block is balanced.
	stereoDominanceRatio = 1.1

	// File-level verdict thresholds, as percentages of active blocks.
	stereoBalancedPct   = 90.0
	stereoDominantPct   = 90.0
	stereoBothActivePct = 10.0
)

// StereoClass is the file-level stereo field verdict.
type StereoClass string

const (
	StereoMonoAsStereo   StereoClass = "mono_as_stereo"
	StereoConversational StereoClass = "conversational_stereo"
	StereoMonoLeft       StereoClass = "mono_left_channel"
	StereoMonoRight      StereoClass = "mono_right_channel"
	StereoMixed          StereoClass = "mixed_stereo"
)

// StereoResult describes the stereo field character of a two-channel
// recording.
type StereoResult struct {
	Classification StereoClass
	Confidence     float64 // 0..1
	ActiveBlocks   int
	BalancedBlocks int
	LeftDominant   int
	RightDominant  int
}

// classifyStereoField classifies each active 250 ms block as left-dominant,
// right-dominant, or balanced, then derives the file verdict:
//
//   - almost everything balanced: a mono source duplicated into both
//     channels ("mono as stereo")
//   - one side dominant almost throughout: a mono recording parked in one
//     channel
//   - both sides carrying their own activity: conversational stereo (one
//     voice per channel)
//   - anything else: mixed stereo
func classifyStereoField(blocks []stereoBlock, token *Token) (*StereoResult, error) {
	result := &StereoResult{}
	leftActive, rightActive := 0, 0

	for i, b := range blocks {
		if i%blockCancelInterval == 0 {
			if err := checkCancel(token, "stereo field"); err != nil {
				return nil, err
			}
		}
		if b.Left <= stereoActiveRMS && b.Right <= stereoActiveRMS {
			continue
		}
		result.ActiveBlocks++
		if b.Left > stereoActiveRMS {
			leftActive++
		}
		if b.Right > stereoActiveRMS {
			rightActive++
		}

		switch {
		case b.Left > b.Right*stereoDominanceRatio:
			result.LeftDominant++
		case b.Right > b.Left*stereoDominanceRatio:
			result.RightDominant++
		default:
			result.BalancedBlocks++
		}
	}

	if result.ActiveBlocks == 0 {
		result.Classification = StereoMixed
		return result, nil
	}

	active := float64(result.ActiveBlocks)
	balancedPct := float64(result.BalancedBlocks) / active * 100.0
	leftDomPct := float64(result.LeftDominant) / active * 100.0
	rightDomPct := float64(result.RightDominant) / active * 100.0
	leftActivePct := float64(leftActive) / active * 100.0
	rightActivePct := float64(rightActive) / active * 100.0

	switch {
	case balancedPct > stereoBalancedPct:
		result.Classification = StereoMonoAsStereo
		result.Confidence = clamp(balancedPct/100.0, 0, 1)
	case leftDomPct > stereoDominantPct:
		result.Classification = StereoMonoLeft
		result.Confidence = clamp(leftDomPct/100.0, 0, 1)
	case rightDomPct > stereoDominantPct:
		result.Classification = StereoMonoRight
		result.Confidence = clamp(rightDomPct/100.0, 0, 1)
	case leftActivePct > stereoBothActivePct && rightActivePct > stereoBothActivePct:
		result.Classification = StereoConversational
		result.Confidence = clamp((leftActivePct+rightActivePct)/200.0, 0, 1)
	default:
		result.Classification = StereoMixed
		result.Confidence = 0.5
	}

	return result, nil
}
