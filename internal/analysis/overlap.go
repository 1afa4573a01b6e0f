package analysis

import (
	"math"
	"time"
)

// Conversational overlap analyzer constants.
const (
	// Speech activity threshold per channel: its noise floor plus this
	// margin, or the absolute fallback under digital silence.
	overlapSpeechMarginDb = 20.0
	overlapFallbackDb     = -60.0
)

// OverlapSegment is a run of blocks where both speakers talk at once.
type OverlapSegment struct {
	Start  time.Duration
	End    time.Duration
	Blocks int
}

// OverlapResult reports simultaneous speech for two-channel conversational
// recordings.
type OverlapResult struct {
	LeftActiveBlocks  int
	RightActiveBlocks int
	OverlapBlocks     int
	TotalBlocks       int
	OverlapPct        float64 // of blocks where either channel is active
	Segments          []OverlapSegment
}

// analyzeOverlap marks each block per channel against that channel's own
// speech-active threshold and collects runs where both channels are active
// simultaneously. Runs shorter than minOverlapBlocks (500 ms) are discarded
// as reaction noises rather than genuine crosstalk.
func analyzeOverlap(blocks []stereoBlock, floor *NoiseFloorResult, rate int, token *Token) (*OverlapResult, error) {
	leftThreshold := speechThreshold(floor.ChannelDb[0])
	rightThreshold := speechThreshold(floor.ChannelDb[1])

	result := &OverlapResult{TotalBlocks: len(blocks)}
	eitherActive := 0

	var current *OverlapSegment
	flush := func() {
		if current != nil && current.Blocks >= minOverlapBlocks {
			result.OverlapBlocks += current.Blocks
			result.Segments = append(result.Segments, *current)
		}
		current = nil
	}

	for i, b := range blocks {
		if i%blockCancelInterval == 0 {
			if err := checkCancel(token, "overlap"); err != nil {
				return nil, err
			}
		}

		leftActive := b.Left > leftThreshold
		rightActive := b.Right > rightThreshold
		if leftActive {
			result.LeftActiveBlocks++
		}
		if rightActive {
			result.RightActiveBlocks++
		}
		if leftActive || rightActive {
			eitherActive++
		}

		if leftActive && rightActive {
			if current == nil {
				current = &OverlapSegment{Start: b.startTime(rate)}
			}
			current.End = b.endTime(rate)
			current.Blocks++
		} else {
			flush()
		}
	}
	flush()

	if eitherActive > 0 {
		result.OverlapPct = float64(result.OverlapBlocks) / float64(eitherActive) * 100.0
	}
	return result, nil
}

// speechThreshold converts a channel noise floor to a linear speech-active
// threshold.
func speechThreshold(floorDb float64) float64 {
	if math.IsInf(floorDb, -1) {
		return linearFromDb(overlapFallbackDb)
	}
	return linearFromDb(floorDb + overlapSpeechMarginDb)
}
