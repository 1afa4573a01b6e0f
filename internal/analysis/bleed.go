package analysis

import (
	"math"
	"time"

	"github.com/linuxmatters/soundcheck/internal/audio"
)

// Mic/headphone bleed detector constants.
const (
	// A block is worth examining when one channel dominates the other by
	// this ratio.
	bleedDominanceRatio = 1.5

	// Channel separation below this is concerning: the quiet channel is
	// picking up too much of something.
	bleedSeparationDb = 15.0

	// Cross-correlation above this marks the leak as the same acoustic
	// event on both channels (mic bleed). At or below, an audible quiet
	// channel means uncorrelated monitor leakage (headphone bleed).
	bleedMicCorrelation = 0.3
	bleedAudibleDb      = -70.0
)

// BleedType distinguishes the two leak mechanisms.
type BleedType string

const (
	BleedMic       BleedType = "mic"
	BleedHeadphone BleedType = "headphone"
)

// BleedSegment is a merged run of confirmed bleed blocks of one type.
type BleedSegment struct {
	Type            BleedType
	Start           time.Duration
	End             time.Duration
	Blocks          int
	MaxCorrelation  float64
	MinSeparationDb float64
}

// BleedResult reports channel-separation character for two-channel
// recordings.
type BleedResult struct {
	MicBlocks         int
	HeadphoneBlocks   int
	ConcerningBlocks  int // separation under 15 dB, either verdict or none
	TotalBlocks       int
	MicSegments       []BleedSegment
	HeadphoneSegments []BleedSegment
}

// bleedBlock is one confirmed 250 ms block before merging.
type bleedBlock struct {
	block       stereoBlock
	bleedType   BleedType
	correlation float64
	separation  float64
}

// detectBleed examines blocks where one channel dominates. Poor separation
// triggers a cross-correlation check: correlated leaks are mic bleed (the
// same acoustic event reaching both microphones), uncorrelated but audible
// leaks are headphone bleed (monitor audio in an open mic). The two verdicts
// are mutually exclusive per block.
func detectBleed(rec *audio.Recording, blocks []stereoBlock, token *Token) (*BleedResult, error) {
	result := &BleedResult{TotalBlocks: len(blocks)}
	var confirmed []bleedBlock

	for i, b := range blocks {
		if i%blockCancelInterval == 0 {
			if err := checkCancel(token, "bleed"); err != nil {
				return nil, err
			}
		}

		dominant, quiet := b.Left, b.Right
		if b.Right > b.Left {
			dominant, quiet = b.Right, b.Left
		}
		if dominant < quiet*bleedDominanceRatio || dominant == 0 {
			continue
		}

		// Digital-silence quiet channel: perfect separation.
		if quiet == 0 {
			continue
		}
		separation := 20.0 * math.Log10(dominant/quiet)
		if separation >= bleedSeparationDb {
			continue
		}
		result.ConcerningBlocks++

		start, end := b.Start, b.Start+blockSampleCount(rec, b)
		correlation := normalizedCrossCorrelation(rec.Channels[0][start:end], rec.Channels[1][start:end])

		switch {
		case correlation > bleedMicCorrelation:
			result.MicBlocks++
			confirmed = append(confirmed, bleedBlock{b, BleedMic, correlation, separation})
		case dbFromLinear(quiet) > bleedAudibleDb:
			result.HeadphoneBlocks++
			confirmed = append(confirmed, bleedBlock{b, BleedHeadphone, correlation, separation})
		}
	}

	result.MicSegments = mergeBleedBlocks(confirmed, BleedMic, rec.SampleRate)
	result.HeadphoneSegments = mergeBleedBlocks(confirmed, BleedHeadphone, rec.SampleRate)
	return result, nil
}

// blockSampleCount bounds a block's span to the recording length.
func blockSampleCount(rec *audio.Recording, b stereoBlock) int {
	blockSamples := rec.SampleRate * blockMs / 1000
	if b.Start+blockSamples > rec.NumSamples() {
		return rec.NumSamples() - b.Start
	}
	return blockSamples
}

// normalizedCrossCorrelation is the zero-lag correlation of the two channel
// slices, in [-1, 1]. Returns 0 when either side carries no energy.
func normalizedCrossCorrelation(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var cross, energyA, energyB float64
	for i := 0; i < n; i++ {
		va, vb := float64(a[i]), float64(b[i])
		cross += va * vb
		energyA += va * va
		energyB += vb * vb
	}
	if energyA == 0 || energyB == 0 {
		return 0
	}
	return cross / math.Sqrt(energyA*energyB)
}

// mergeBleedBlocks merges confirmed blocks of one type that sit within
// blockMergeGap of each other into segments carrying aggregate stats.
func mergeBleedBlocks(confirmed []bleedBlock, bleedType BleedType, rate int) []BleedSegment {
	var segments []BleedSegment
	var current *BleedSegment

	for _, cb := range confirmed {
		if cb.bleedType != bleedType {
			continue
		}
		start := cb.block.startTime(rate)
		end := cb.block.endTime(rate)

		if current != nil && start-current.End <= blockMergeGap {
			current.End = end
			current.Blocks++
			if cb.correlation > current.MaxCorrelation {
				current.MaxCorrelation = cb.correlation
			}
			if cb.separation < current.MinSeparationDb {
				current.MinSeparationDb = cb.separation
			}
			continue
		}
		if current != nil {
			segments = append(segments, *current)
		}
		current = &BleedSegment{
			Type:            bleedType,
			Start:           start,
			End:             end,
			Blocks:          1,
			MaxCorrelation:  cb.correlation,
			MinSeparationDb: cb.separation,
		}
	}
	if current != nil {
		segments = append(segments, *current)
	}
	return segments
}
