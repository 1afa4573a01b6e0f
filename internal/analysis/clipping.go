package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/linuxmatters/soundcheck/internal/audio"
)

// Peak & clipping detector constants.
const (
	// Hard clipping: at or above this fraction of full scale the waveform
	// is treated as truncated. Near clipping covers [0.98, 0.985); the two
	// bands are mutually exclusive at 0.985.
	hardClipThreshold = 0.985
	nearClipThreshold = 0.98

	// A region bridges gaps of up to this many non-qualifying samples.
	clipBridgeSamples = 3

	// Minimum qualifying samples for a region at the 44.1 kHz reference;
	// scaled upward for higher rates, never below 2.
	clipMinRegionSamples = 2

	// Safety limits against pathological inputs. Hitting one truncates the
	// sub-analysis and sets a flag; it never fails the run.
	maxClipRegionsPerChannel  = 5000
	maxClipRegionsTotal       = 10000
	maxClippedSamplesPerChan  = 20000000
	clipSampleCancelInterval  = 10000
	maxReportedTopClipRegions = 10
)

// ClipType distinguishes hard truncation from near-full-scale samples.
type ClipType int

const (
	ClipHard ClipType = iota
	ClipNear
)

func (t ClipType) String() string {
	if t == ClipHard {
		return "hard"
	}
	return "near"
}

// ClippingRegion is one contiguous run of clipped samples on a channel.
type ClippingRegion struct {
	Channel     int
	Start       int // sample offset, inclusive
	End         int // sample offset, exclusive
	SampleCount int // qualifying samples (bridged gaps excluded)
	PeakSample  float64
	Type        ClipType
	Duration    time.Duration
}

// ChannelClipping aggregates per-channel clipping statistics.
type ChannelClipping struct {
	Channel        int
	HardRegions    int
	NearRegions    int
	ClippedSamples int
	ClippedPct     float64
	LimitReached   bool // clipped-sample emergency brake tripped
}

// ClippingResult is the sample-accurate peak and clipping report.
type ClippingResult struct {
	Peak          float64
	PeakDb        float64
	Channels      []ChannelClipping
	HardRegions   int
	NearRegions   int
	LongestRegion time.Duration
	AverageRegion time.Duration
	TopRegions    []ClippingRegion // hard before near, largest first
	Truncated     bool             // any region cap or brake was hit
}

// regionTracker accumulates one clip-band's current region across a channel
// scan, bridging short gaps of non-qualifying samples.
type regionTracker struct {
	clipType  ClipType
	channel   int
	minCount  int
	chRegions *int  // regions already emitted for this channel, both bands
	truncated *bool // set when a cap refuses a region

	active  bool
	start   int
	lastHit int // last qualifying sample offset
	count   int
	gap     int
	peak    float64
}

// scanPeak finds the global peak without region bookkeeping. Used by base
// mode, where the full clipping pass never runs.
func scanPeak(rec *audio.Recording, token *Token, progress func(float64)) (float64, error) {
	var peak float64
	totalSamples := rec.NumSamples() * rec.NumChannels()
	done := 0
	for _, channel := range rec.Channels {
		for i, s := range channel {
			if i%clipSampleCancelInterval == 0 {
				if err := checkCancel(token, "peak scan"); err != nil {
					return 0, err
				}
				if progress != nil && totalSamples > 0 {
					progress(float64(done+i) / float64(totalSamples))
				}
			}
			if a := math.Abs(float64(s)); a > peak {
				peak = a
			}
		}
		done += len(channel)
	}
	if progress != nil {
		progress(1.0)
	}
	return peak, nil
}

// analyzeClipping makes one sample-accurate pass per channel tracking the
// global peak together with hard and near clipping regions.
func analyzeClipping(rec *audio.Recording, token *Token, progress func(float64)) (*ClippingResult, error) {
	result := &ClippingResult{
		Channels: make([]ChannelClipping, rec.NumChannels()),
	}

	minRegion := clipMinRegionSamples * rec.SampleRate / referenceSampleRate
	if minRegion < clipMinRegionSamples {
		minRegion = clipMinRegionSamples
	}

	var regions []ClippingRegion
	totalSamples := rec.NumSamples() * rec.NumChannels()
	done := 0

	for ch, channel := range rec.Channels {
		stats := &result.Channels[ch]
		stats.Channel = ch

		chRegions := 0
		hard := regionTracker{clipType: ClipHard, channel: ch, minCount: minRegion, chRegions: &chRegions, truncated: &result.Truncated}
		near := regionTracker{clipType: ClipNear, channel: ch, minCount: minRegion, chRegions: &chRegions, truncated: &result.Truncated}

		for i, s := range channel {
			if i%clipSampleCancelInterval == 0 {
				if err := checkCancel(token, "clipping"); err != nil {
					return nil, err
				}
				if progress != nil && totalSamples > 0 {
					progress(float64(done+i) / float64(totalSamples))
				}
			}

			a := math.Abs(float64(s))
			if a > result.Peak {
				result.Peak = a
			}

			if a >= nearClipThreshold {
				stats.ClippedSamples++
				if stats.ClippedSamples >= maxClippedSamplesPerChan {
					// Emergency brake: stop scanning this channel
					// rather than grinding through a destroyed
					// recording sample by sample.
					stats.LimitReached = true
					result.Truncated = true
					break
				}
			}

			hard.feed(i, a, a >= hardClipThreshold, &regions)
			near.feed(i, a, a >= nearClipThreshold && a < hardClipThreshold, &regions)
		}

		hard.flush(&regions)
		near.flush(&regions)
		done += len(channel)

		stats.ClippedPct = 0
		if len(channel) > 0 {
			stats.ClippedPct = float64(stats.ClippedSamples) / float64(len(channel)) * 100.0
		}
	}

	result.PeakDb = dbFromLinear(result.Peak)
	summariseRegions(rec, result, regions)

	if progress != nil {
		progress(1.0)
	}
	return result, nil
}

// feed advances the tracker by one sample.
func (t *regionTracker) feed(i int, amplitude float64, qualifies bool, regions *[]ClippingRegion) {
	if qualifies {
		if !t.active {
			t.active = true
			t.start = i
			t.count = 0
			t.peak = 0
		}
		t.count++
		t.gap = 0
		t.lastHit = i
		if amplitude > t.peak {
			t.peak = amplitude
		}
		return
	}
	if !t.active {
		return
	}
	t.gap++
	if t.gap > clipBridgeSamples {
		t.close(regions)
	}
}

// flush closes any region still open at the end of the channel.
func (t *regionTracker) flush(regions *[]ClippingRegion) {
	if t.active {
		t.close(regions)
	}
}

// close emits the current region if it meets the minimum size and the region
// caps allow it.
func (t *regionTracker) close(regions *[]ClippingRegion) {
	t.active = false
	t.gap = 0
	if t.count < t.minCount {
		return
	}

	if *t.chRegions >= maxClipRegionsPerChannel || len(*regions) >= maxClipRegionsTotal {
		*t.truncated = true
		return
	}
	*t.chRegions++

	*regions = append(*regions, ClippingRegion{
		Channel:     t.channel,
		Start:       t.start,
		End:         t.lastHit + 1,
		SampleCount: t.count,
		PeakSample:  t.peak,
		Type:        t.clipType,
	})
}

// summariseRegions fills counts, durations, and the prioritised top-region
// list from the raw region set.
func summariseRegions(rec *audio.Recording, result *ClippingResult, regions []ClippingRegion) {
	rate := rec.SampleRate
	var totalDuration time.Duration

	for i := range regions {
		r := &regions[i]
		r.Duration = sampleTime(r.End-r.Start, rate)
		totalDuration += r.Duration
		if r.Duration > result.LongestRegion {
			result.LongestRegion = r.Duration
		}
		switch r.Type {
		case ClipHard:
			result.HardRegions++
			result.Channels[r.Channel].HardRegions++
		case ClipNear:
			result.NearRegions++
			result.Channels[r.Channel].NearRegions++
		}
	}
	if len(regions) > 0 {
		result.AverageRegion = totalDuration / time.Duration(len(regions))
	}

	// Hard regions outrank near regions in the combined list; within a
	// type, larger regions first.
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Type != regions[j].Type {
			return regions[i].Type == ClipHard
		}
		return regions[i].SampleCount > regions[j].SampleCount
	})
	if len(regions) > maxReportedTopClipRegions {
		regions = regions[:maxReportedTopClipRegions]
	}
	result.TopRegions = regions
}
