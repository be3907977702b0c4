// Package cluster implements Duration Clustering (§4.8): bucketing
// representative-playlist durations to find the dominant
// episode-length candidate.
//
// Grounded on go-bdinfo's sort.Slice comparator-chain idiom (seen
// throughout internal/bdrom) for the deterministic tie-break over
// candidate buckets.
package cluster

import (
	"math"
	"sort"
)

// ShortThresholdSeconds is the §4.8 cutoff below which a playlist is
// flagged as short/extra rather than considered for clustering.
const ShortThresholdSeconds = 180.0

// minBucketWidthSeconds is the floor on bucket width (30s, §4.8).
const minBucketWidthSeconds = 30.0

// Bucket is one duration-cluster candidate.
type Bucket struct {
	Center float64 // bucket center duration in seconds
	Count  int
	Mean   float64
	Members []int // indices into the input durations slice
}

// median returns the middle value of a sorted copy of xs.
func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64{}, xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// bucketWidth computes max(30s, 5% of median) per §4.8.
func bucketWidth(durations []float64) float64 {
	m := median(durations)
	w := 0.05 * m
	if w < minBucketWidthSeconds {
		return minBucketWidthSeconds
	}
	return w
}

// Cluster bins the given durations (seconds) and returns buckets
// sorted by descending dominance: count first, then mean duration,
// matching §4.8's tie-break. Durations below ShortThresholdSeconds are
// excluded from clustering entirely (they're never episode candidates).
func Cluster(durations []float64) []Bucket {
	var eligible []float64
	var eligibleIdx []int
	for i, d := range durations {
		if d >= ShortThresholdSeconds {
			eligible = append(eligible, d)
			eligibleIdx = append(eligibleIdx, i)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	width := bucketWidth(eligible)
	bucketOf := make(map[int][]int) // bucket index -> original indices

	for i, d := range eligible {
		b := int(math.Floor(d / width))
		bucketOf[b] = append(bucketOf[b], eligibleIdx[i])
	}

	var buckets []Bucket
	for b, members := range bucketOf {
		var sum float64
		for _, idx := range members {
			sum += durations[idx]
		}
		buckets = append(buckets, Bucket{
			Center:  (float64(b) + 0.5) * width,
			Count:   len(members),
			Mean:    sum / float64(len(members)),
			Members: append([]int{}, members...),
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Mean > buckets[j].Mean
	})
	for _, b := range buckets {
		sort.Ints(b.Members)
	}

	return buckets
}

// Dominant returns the single dominant bucket, or the zero Bucket with
// ok=false if there are no eligible durations.
func Dominant(durations []float64) (Bucket, bool) {
	buckets := Cluster(durations)
	if len(buckets) == 0 {
		return Bucket{}, false
	}
	return buckets[0], true
}
