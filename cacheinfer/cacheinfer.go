// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cacheinfer implements the cache-capacity inference pipeline
// (spec C10): it turns a noisy latency-vs-working-set-size sweep into
// up to three integer byte-capacity estimates (L1, L2, L3) by median
// filtering, centered-derivative peak detection, and geometric-mean
// plateau crossing. The pipeline never raises: if it finds fewer than
// three confident transitions, the corresponding capacities stay at
// zero (spec section 7).
package cacheinfer

import "math"

// derivativePeakThreshold and peakMergeDistance are the empirical
// constants spec.md's Open Questions call out as a contract, not a
// tunable: a platform-specific override would change the constant
// itself rather than add a configuration knob.
const (
	derivativePeakThreshold = 0.10
	peakMergeDistance       = 5
	maxPeaks                = 20
	maxPlateauSamples       = 40
	medianFilterRadius      = 3
	derivativeHalfWidth     = 2
	derivativeSmoothRadius  = 2
)

// Estimate is the triple of byte-capacity estimates cacheinfer
// produces. Any field may be zero, meaning "not detected with
// confidence".
type Estimate struct {
	L1Bytes uint64
	L2Bytes uint64
	L3Bytes uint64
}

// Infer transforms a latency sweep into a cache-capacity estimate.
// sizes must be strictly increasing, in bytes; latencies holds
// nanosecond averages, with a negative value marking a failed sample
// for a given size (spec section 7: per-sample failures are
// non-fatal and excluded here).
func Infer(sizes []uint64, latencies []float64) Estimate {
	n := len(sizes)
	if n == 0 || len(latencies) != n {
		return Estimate{}
	}

	lsz := make([]float64, n)
	ls := make([]float64, n)
	for i := 0; i < n; i++ {
		lsz[i] = math.Log(float64(sizes[i]))
		if latencies[i] > 0 && !math.IsInf(latencies[i], 0) {
			ls[i] = math.Log(latencies[i])
		} else {
			ls[i] = 0
		}
	}

	smooth := medianFilter(ls, medianFilterRadius)
	deriv := centeredDerivative(smooth, lsz, derivativeHalfWidth)
	sderiv := medianFilter(deriv, derivativeSmoothRadius)

	peaks := findPeaks(sderiv)
	peaks = mergeNearbyPeaks(peaks, sderiv)
	peaks = selectTopPeaks(peaks, sderiv, 3)
	sortByIndex(peaks)

	var est Estimate
	prevEnd := 0
	for t, pk := range peaks {
		end := n
		if t+1 < len(peaks) {
			end = peaks[t+1]
		}
		boundary, ok := boundaryForPeak(sizes, latencies, sderiv, prevEnd, pk, end)
		if ok {
			switch t {
			case 0:
				est.L1Bytes = boundary
			case 1:
				est.L2Bytes = boundary
			case 2:
				est.L3Bytes = boundary
			}
		}
		prevEnd = pk + 1
	}
	return est
}

// boundaryForPeak computes the geometric-mean crossing for the
// transition centered at pk, bounded by [start, end).
func boundaryForPeak(sizes []uint64, latencies []float64, sderiv []float64, start, pk, end int) (uint64, bool) {
	lower := plateauSamples(latencies, sderiv, start, pk, false)
	upper := plateauSamples(latencies, sderiv, pk+1, end, true)
	if len(lower) == 0 || len(upper) == 0 {
		return 0, false
	}

	loMed := median(lower)
	upMed := median(upper)
	if loMed <= 0 || upMed <= 0 {
		return 0, false
	}
	tau := math.Sqrt(loMed * upMed)

	ci := -1
	for i := start; i < end; i++ {
		if latencies[i] < 0 || math.IsNaN(latencies[i]) {
			continue
		}
		if latencies[i] >= tau {
			ci = i
			break
		}
	}
	if ci < 0 {
		return 0, false
	}

	if ci > 0 && latencies[ci-1] >= 0 && latencies[ci-1] < tau && tau <= latencies[ci] {
		f := (math.Log(tau) - math.Log(latencies[ci-1])) / (math.Log(latencies[ci]) - math.Log(latencies[ci-1]))
		boundary := math.Exp(math.Log(float64(sizes[ci-1])) + f*(math.Log(float64(sizes[ci]))-math.Log(float64(sizes[ci-1]))))
		return uint64(boundary), true
	}
	return sizes[ci], true
}

// plateauSamples collects the non-negative latencies in [lo, hi) whose
// derivative is below the peak threshold, capped at
// maxPlateauSamples. The samples nearest the transition are kept,
// since they are the most representative of the plateau immediately
// adjacent to it: the first ones when takeFromStart is set (an upper
// plateau, which starts just after its peak), otherwise the last ones
// (a lower plateau, which ends just before it).
func plateauSamples(latencies []float64, sderiv []float64, lo, hi int, takeFromStart bool) []float64 {
	var out []float64
	if takeFromStart {
		for i := lo; i < hi && len(out) < maxPlateauSamples; i++ {
			if latencies[i] < 0 || math.IsNaN(latencies[i]) {
				continue
			}
			if sderiv[i] < derivativePeakThreshold {
				out = append(out, latencies[i])
			}
		}
		return out
	}
	var all []float64
	for i := lo; i < hi; i++ {
		if latencies[i] < 0 || math.IsNaN(latencies[i]) {
			continue
		}
		if sderiv[i] < derivativePeakThreshold {
			all = append(all, latencies[i])
		}
	}
	if len(all) > maxPlateauSamples {
		all = all[len(all)-maxPlateauSamples:]
	}
	return all
}

func sortByIndex(peaks []int) {
	for i := 1; i < len(peaks); i++ {
		v := peaks[i]
		j := i - 1
		for j >= 0 && peaks[j] > v {
			peaks[j+1] = peaks[j]
			j--
		}
		peaks[j+1] = v
	}
}
