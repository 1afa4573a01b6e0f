package analysis

import "math"

// Noise-floor estimator constants.
const (
	// Fraction of the quietest non-silent windows used for estimation.
	quietWindowFraction = 0.30

	// Histogram over the dB-converted quiet subset. 200 bins over
	// [-100, 0) dB gives 0.5 dB resolution.
	noiseFloorHistBins  = 200
	noiseFloorHistMinDb = -100.0
	noiseFloorHistMaxDb = 0.0
)

// NoiseFloorResult holds per-channel and pooled noise-floor estimates.
// Floors are negative infinity when the corresponding windows carried no
// energy at all.
type NoiseFloorResult struct {
	OverallDb             float64
	ChannelDb             []float64
	DigitalSilenceWindows int
	DigitalSilencePct     float64
}

// HasDigitalSilence reports whether any fully digitally silent windows were
// observed.
func (n *NoiseFloorResult) HasDigitalSilence() bool {
	return n.DigitalSilenceWindows > 0
}

// estimateNoiseFloor derives the noise floor from the scanner's aggregate RMS
// collections: per channel and pooled across channels.
//
// Strategy: select the 30th-percentile RMS cutoff with quickselect, keep the
// windows at or below it, convert to dB, histogram, and report the modal
// bin's lower edge. The mode of the quiet subset resists skew from a few
// stray loud or quiet outliers that a mean or minimum would chase.
func estimateNoiseFloor(scan *windowScan, sc *scratch, token *Token, progress func(float64)) (*NoiseFloorResult, error) {
	result := &NoiseFloorResult{
		ChannelDb:             make([]float64, len(scan.ChannelRMS)),
		DigitalSilenceWindows: scan.SilentWindows,
	}
	if total := len(scan.Windows); total > 0 {
		result.DigitalSilencePct = float64(scan.SilentWindows) / float64(total) * 100.0
	}

	steps := len(scan.ChannelRMS) + 1
	for ch, rms := range scan.ChannelRMS {
		if err := checkCancel(token, "noise floor"); err != nil {
			return nil, err
		}
		result.ChannelDb[ch] = floorFromRMS(rms, sc)
		if progress != nil {
			progress(float64(ch+1) / float64(steps))
		}
	}

	if err := checkCancel(token, "noise floor"); err != nil {
		return nil, err
	}
	result.OverallDb = floorFromRMS(scan.PooledRMS, sc)
	if progress != nil {
		progress(1.0)
	}
	return result, nil
}

// floorFromRMS runs the quiet-subset histogram over one RMS collection.
// Returns -Inf when the collection is empty (no non-silent windows).
func floorFromRMS(rms []float64, sc *scratch) float64 {
	if len(rms) == 0 {
		return math.Inf(-1)
	}

	cutoff := sc.percentileOf(rms, quietWindowFraction)

	const binWidth = (noiseFloorHistMaxDb - noiseFloorHistMinDb) / noiseFloorHistBins
	var hist [noiseFloorHistBins]int
	for _, v := range rms {
		if v > cutoff {
			continue
		}
		db := dbFromLinear(v)
		bin := int((db - noiseFloorHistMinDb) / binWidth)
		// Out-of-range values land in the edge bins so pathological
		// windows can never escape the histogram.
		if bin < 0 {
			bin = 0
		} else if bin >= noiseFloorHistBins {
			bin = noiseFloorHistBins - 1
		}
		hist[bin]++
	}

	modal := 0
	for bin, count := range hist {
		if count > hist[modal] {
			modal = bin
		}
	}
	return noiseFloorHistMinDb + float64(modal)*binWidth
}
