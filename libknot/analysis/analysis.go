package analysis

import (
	"github.com/2x3systems/goknot/knot"
	"github.com/2x3systems/goknot/libknot/catalog"
	"github.com/plan-systems/klog"
)

// GoodThreshold is the cost below which a knot is considered good.
const GoodThreshold = knot.PenaltyCost

// AdjacencyStats summarizes how many good neighbors each good knot has.
type AdjacencyStats struct {
	Counts   []int   // Counts[i] is the number of neighbors of the i-th good knot with cost < threshold
	Total    int     // sum of Counts
	Distinct int     // number of distinct neighbors over all good knots
	Mean     float64 // Total / len(Counts)
}

// AdjacencySizes resolves each knot of good in full and counts its neighbors (in full) whose cost is under threshold.
//
// Good knots not present in full are looked up by value and skipped if absent.
func AdjacencySizes(full, good *catalog.KnotSet, threshold float64) AdjacencyStats {
	var stats AdjacencyStats
	distinct := knot.NewDropDupes()

	for _, goodKnot := range good.AllKnots() {
		equivalent, found := full.Retrieve(goodKnot.Angles, goodKnot.Parity)
		if !found {
			klog.V(1).Infof("analysis: good knot %v not in full catalogue", goodKnot)
			continue
		}

		count := 0
		for _, nb := range full.Adjacent(equivalent) {
			if distinct.TryAddKnot(nb.Knot) {
				stats.Distinct++
			}
			if nb.Knot.Cost < threshold {
				count++
			}
		}
		stats.Counts = append(stats.Counts, count)
		stats.Total += count
	}

	if len(stats.Counts) > 0 {
		stats.Mean = float64(stats.Total) / float64(len(stats.Counts))
	}
	return stats
}

// Pair is a knot and one of its neighbors.
type Pair struct {
	Knot     *knot.Knot
	Neighbor *knot.Knot
}

// GoodPairs returns every (knot, neighbor) pair where both are catalogued in set and the neighbor's cost is under threshold.
//
// Each adjacent pair appears once per move joining them, so a pair joined by two moves appears twice.
func GoodPairs(set *catalog.KnotSet, threshold float64) []Pair {
	var pairs []Pair
	for _, k := range set.AllKnots() {
		for _, nb := range set.Adjacent(k) {
			if !nb.IsUnknown() && nb.Knot.Cost < threshold {
				pairs = append(pairs, Pair{k, nb.Knot})
			}
		}
	}
	return pairs
}

// Nearest pairs a knot with its closest good knot of the same parity.
type Nearest struct {
	Knot     *knot.Knot
	Good     *knot.Knot
	Distance int
}

// NearestGood finds, for each knot of full, the closest knot of good with the same parity (using knot.Distance).
//
// Knots whose parity has no good knots are skipped.  Returns the matches (in full's order) and the largest distance
// among them (or -1 if there are none).
func NearestGood(full, good *catalog.KnotSet) ([]Nearest, int) {
	var nearest []Nearest
	maxDist := -1

	M := full.Modulus()
	for parity := int32(0); parity < full.ParityCount(); parity++ {
		goodBucket := good.Bucket(parity)
		if len(goodBucket) == 0 {
			continue
		}

		for _, k := range full.Bucket(parity) {
			best := Nearest{Knot: k, Distance: -1}
			for _, g := range goodBucket {
				d, err := knot.Distance(k, g, M)
				if err != nil {
					continue
				}
				if best.Distance < 0 || d < best.Distance {
					best.Distance = d
					best.Good = g
				}
			}
			if best.Good == nil {
				continue
			}
			nearest = append(nearest, best)
			if best.Distance > maxDist {
				maxDist = best.Distance
			}
		}
	}

	return nearest, maxDist
}
