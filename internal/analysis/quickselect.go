package analysis

// Order-statistic selection used wherever a percentile cutoff or median is
// needed. Expected O(n) via Hoare partitioning, recursing only into the side
// containing k - far cheaper than sorting the whole buffer when only one
// rank is wanted.

// selectKth returns the k-th smallest value (0-based) of buf.
// It permutes buf in place; callers must hand in a disposable copy.
// Panics on an empty buffer or out-of-range k, which indicates a caller bug.
func selectKth(buf []float64, k int) float64 {
	if k < 0 || k >= len(buf) {
		panic("analysis: selectKth rank out of range")
	}
	lo, hi := 0, len(buf)-1
	for lo < hi {
		p := hoarePartition(buf, lo, hi)
		if k <= p {
			hi = p
		} else {
			lo = p + 1
		}
	}
	return buf[k]
}

// hoarePartition partitions buf[lo:hi+1] around the middle element and
// returns the split point j such that buf[lo..j] <= pivot <= buf[j+1..hi].
func hoarePartition(buf []float64, lo, hi int) int {
	pivot := buf[lo+(hi-lo)/2]
	i, j := lo-1, hi+1
	for {
		for {
			i++
			if buf[i] >= pivot {
				break
			}
		}
		for {
			j--
			if buf[j] <= pivot {
				break
			}
		}
		if i >= j {
			return j
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
}

// scratch is a per-run selection arena. Selection mutates its input, so every
// call works on a copy; the arena reuses one backing array across stages
// instead of allocating per call. Not safe for concurrent use - each analysis
// run owns its own.
type scratch struct {
	buf []float64
}

// copyOf returns a disposable copy of vals backed by the arena.
// The copy is only valid until the next copyOf call.
func (s *scratch) copyOf(vals []float64) []float64 {
	if cap(s.buf) < len(vals) {
		s.buf = make([]float64, len(vals))
	}
	dst := s.buf[:len(vals)]
	copy(dst, vals)
	return dst
}

// percentileOf returns the value at fraction frac (0..1) of the sorted order
// of vals, without sorting vals. Returns 0 for an empty slice.
func (s *scratch) percentileOf(vals []float64, frac float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	k := int(frac * float64(len(vals)))
	if k >= len(vals) {
		k = len(vals) - 1
	}
	if k < 0 {
		k = 0
	}
	return selectKth(s.copyOf(vals), k)
}

// medianOf returns the median of vals (mean of the two middle values for an
// even count). Returns 0 for an empty slice.
func (s *scratch) medianOf(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	work := s.copyOf(vals)
	if n%2 == 1 {
		return selectKth(work, n/2)
	}
	upper := selectKth(work, n/2)
	lower := selectKth(work, n/2-1)
	return (lower + upper) / 2
}
