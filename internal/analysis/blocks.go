package analysis

import (
	"math"
	"time"

	"github.com/linuxmatters/soundcheck/internal/audio"
)

// Shared 250 ms RMS blocks for the stereo-only analyses (stereo field,
// bleed, overlap). Computed once per run and reused.
const (
	blockMs             = 250
	blockCancelInterval = 50
	blockMergeGap       = time.Second // bleed segment merge window
	minOverlapBlocks    = 2           // 500 ms
)

// stereoBlock carries the left/right RMS for one 250 ms block.
type stereoBlock struct {
	Index int
	Start int // sample offset
	Left  float64
	Right float64
}

// computeStereoBlocks reduces a two-channel recording to per-block RMS
// pairs. stage names the caller for cancellation reporting.
func computeStereoBlocks(rec *audio.Recording, token *Token, stage string) ([]stereoBlock, error) {
	blockSamples := rec.SampleRate * blockMs / 1000
	if blockSamples < 1 {
		blockSamples = 1
	}
	numSamples := rec.NumSamples()
	numBlocks := numSamples / blockSamples
	if numBlocks == 0 && numSamples > 0 {
		numBlocks = 1
		blockSamples = numSamples
	}

	left, right := rec.Channels[0], rec.Channels[1]
	blocks := make([]stereoBlock, 0, numBlocks)

	for b := 0; b < numBlocks; b++ {
		if b%blockCancelInterval == 0 {
			if err := checkCancel(token, stage); err != nil {
				return nil, err
			}
		}
		start := b * blockSamples
		end := start + blockSamples
		if end > numSamples {
			end = numSamples
		}
		blocks = append(blocks, stereoBlock{
			Index: b,
			Start: start,
			Left:  sliceRMS(left[start:end]),
			Right: sliceRMS(right[start:end]),
		})
	}
	return blocks, nil
}

// sliceRMS is the plain RMS of a sample slice.
func sliceRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		v := float64(s)
		sumSquares += v * v
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// blockTime converts a block's start sample to elapsed time.
func (b stereoBlock) startTime(rate int) time.Duration {
	return sampleTime(b.Start, rate)
}

// endTime is the block's end as elapsed time.
func (b stereoBlock) endTime(rate int) time.Duration {
	return b.startTime(rate) + time.Duration(blockMs)*time.Millisecond
}
