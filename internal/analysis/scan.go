package analysis

import (
	"math"

	"github.com/linuxmatters/soundcheck/internal/audio"
)

// Windowed RMS/peak scanner constants.
const (
	// Window length is fixed against the 44.1 kHz reference regardless of
	// the recording's actual sample rate, so every run produces windows of
	// the same sample count.
	referenceSampleRate = 44100
	windowMs            = 50
	windowSamples       = referenceSampleRate * windowMs / 1000 // 2205

	// Cancellation poll interval in windows.
	scanCancelInterval = 1000
)

// WindowRecord is one 50 ms window from the scanner: sample span, per-channel
// RMS, the loudest absolute sample across all channels, and whether every
// channel was digitally silent (RMS exactly zero).
type WindowRecord struct {
	Start          int // first sample offset, inclusive
	End            int // last sample offset, exclusive
	ChannelRMS     []float64
	Peak           float64
	DigitalSilence bool
}

// windowScan is the scanner output shared by the noise-floor estimator and
// silence segmenter, so neither re-reads the raw samples.
type windowScan struct {
	Windows       []WindowRecord
	ChannelRMS    [][]float64 // per channel, exact-zero windows excluded
	PooledRMS     []float64   // all channels, exact-zero windows excluded
	SilentWindows int
}

// scanWindows makes a single forward pass over all channels producing the
// window records and aggregate RMS collections. O(channels x samples); the
// only failure mode is cooperative cancellation.
func scanWindows(rec *audio.Recording, token *Token, progress func(float64)) (*windowScan, error) {
	numSamples := rec.NumSamples()
	numChannels := rec.NumChannels()
	numWindows := (numSamples + windowSamples - 1) / windowSamples

	scan := &windowScan{
		Windows:    make([]WindowRecord, 0, numWindows),
		ChannelRMS: make([][]float64, numChannels),
	}
	for ch := range scan.ChannelRMS {
		scan.ChannelRMS[ch] = make([]float64, 0, numWindows)
	}

	for w := 0; w < numWindows; w++ {
		if w%scanCancelInterval == 0 {
			if err := checkCancel(token, "window scan"); err != nil {
				return nil, err
			}
			if progress != nil && numWindows > 0 {
				progress(float64(w) / float64(numWindows))
			}
		}

		start := w * windowSamples
		end := start + windowSamples
		if end > numSamples {
			end = numSamples // short final window
		}

		record := WindowRecord{
			Start:          start,
			End:            end,
			ChannelRMS:     make([]float64, numChannels),
			DigitalSilence: true,
		}

		for ch := 0; ch < numChannels; ch++ {
			samples := rec.Channels[ch][start:end]
			var sumSquares float64
			for _, s := range samples {
				v := float64(s)
				sumSquares += v * v
				if a := math.Abs(v); a > record.Peak {
					record.Peak = a
				}
			}
			rms := math.Sqrt(sumSquares / float64(len(samples)))
			record.ChannelRMS[ch] = rms
			if rms != 0 {
				record.DigitalSilence = false
				scan.ChannelRMS[ch] = append(scan.ChannelRMS[ch], rms)
				scan.PooledRMS = append(scan.PooledRMS, rms)
			}
		}

		if record.DigitalSilence {
			scan.SilentWindows++
		}
		scan.Windows = append(scan.Windows, record)
	}

	if progress != nil {
		progress(1.0)
	}
	return scan, nil
}
