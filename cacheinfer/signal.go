// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cacheinfer

import (
	"math"
	"sort"
)

// median returns the median of data. Medians are used throughout this
// package instead of means because they preserve step edges in the
// latency curve while rejecting single-sample outliers.
func median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// medianFilter applies a centered median filter of the given radius
// (window size 2*radius+1, clipped at the array ends) to data.
func medianFilter(data []float64, radius int) []float64 {
	n := len(data)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius + 1
		if hi > n {
			hi = n
		}
		out[i] = median(data[lo:hi])
	}
	return out
}

// centeredDerivative computes a centered finite-difference derivative
// of smooth with respect to x, using a half-width w window:
// deriv[i] = (smooth[hi]-smooth[lo]) / (x[hi]-x[lo]), with
// lo=max(0,i-w), hi=min(n-1,i+w). It emits 0 when the window collapses
// or the denominator is too small to trust.
func centeredDerivative(smooth, x []float64, w int) []float64 {
	n := len(smooth)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i - w
		if lo < 0 {
			lo = 0
		}
		hi := i + w
		if hi > n-1 {
			hi = n - 1
		}
		if hi == lo {
			out[i] = 0
			continue
		}
		denom := x[hi] - x[lo]
		if math.Abs(denom) < 1e-12 {
			out[i] = 0
			continue
		}
		out[i] = (smooth[hi] - smooth[lo]) / denom
	}
	return out
}

// findPeaks locates local maxima in sderiv that exceed the peak
// threshold, rejecting non-finite values. Endpoints are never
// candidates since they have no second neighbor to compare against.
// At most maxPeaks indices are returned, in ascending index order.
func findPeaks(sderiv []float64) []int {
	n := len(sderiv)
	var peaks []int
	for i := 1; i < n-1; i++ {
		v := sderiv[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v <= derivativePeakThreshold {
			continue
		}
		if v >= sderiv[i-1] && v >= sderiv[i+1] {
			peaks = append(peaks, i)
			if len(peaks) >= maxPeaks {
				break
			}
		}
	}
	return peaks
}

// mergeNearbyPeaks collapses any two peaks within peakMergeDistance
// indices of each other, keeping the one with the larger derivative
// magnitude.
func mergeNearbyPeaks(peaks []int, sderiv []float64) []int {
	if len(peaks) == 0 {
		return peaks
	}
	merged := []int{peaks[0]}
	for _, p := range peaks[1:] {
		last := merged[len(merged)-1]
		if p-last <= peakMergeDistance {
			if sderiv[p] > sderiv[last] {
				merged[len(merged)-1] = p
			}
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

// selectTopPeaks keeps the k peaks with the largest derivative
// magnitude. The caller is responsible for sorting the result back
// into index order.
func selectTopPeaks(peaks []int, sderiv []float64, k int) []int {
	if len(peaks) <= k {
		out := make([]int, len(peaks))
		copy(out, peaks)
		return out
	}
	sorted := append([]int(nil), peaks...)
	sort.Slice(sorted, func(i, j int) bool {
		return sderiv[sorted[i]] > sderiv[sorted[j]]
	})
	out := make([]int, k)
	copy(out, sorted[:k])
	return out
}
