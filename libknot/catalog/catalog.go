package catalog

import (
	"math"
	"sort"

	"github.com/2x3systems/goknot/knot"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// KnotSet is an immutable catalogue of knots partitioned by parity class.
//
// Only the adjacency memo changes after construction, and it is guarded, so a KnotSet may be shared
// between goroutines.
type KnotSet struct {
	modulus     int32
	parityCount int32
	angleCount  int
	penalty     float64
	numKnots    int

	knots [][]*knot.Knot               // knots[parity] in input order
	index map[knot.AngleKey]*knot.Knot // first occurrence of each (parity, angles)
	memo  adjacencyMemo
}

// New builds a KnotSet from an already parsed catalogue report.
//
// A structurally malformed report (mismatched angle counts, out of range parity, no modulus) fails with
// knot.ErrMalformedCatalogue and no KnotSet is returned.
func New(report *Report, opts Opts) (*KnotSet, error) {
	if report == nil {
		return nil, errors.Wrap(knot.ErrMalformedCatalogue, "nil report")
	}

	if opts.Modulus <= 0 {
		opts.Modulus = report.NumAngles
	}
	if opts.Modulus <= 0 {
		return nil, errors.Wrapf(knot.ErrMalformedCatalogue, "angle modulus must be > 0 (got %d)", opts.Modulus)
	}
	if opts.ParityCount <= 0 {
		opts.ParityCount = report.ParityCount
	}
	if opts.ParityCount <= 0 {
		opts.ParityCount = opts.Modulus
	}
	penalty := knot.PenaltyCost
	if opts.Penalty != nil {
		penalty = *opts.Penalty
	}
	if penalty < 0 || math.IsNaN(penalty) {
		return nil, errors.Wrapf(knot.ErrMalformedCatalogue, "penalty cost must be >= 0 (got %v)", penalty)
	}

	cat := &KnotSet{
		modulus:     opts.Modulus,
		parityCount: opts.ParityCount,
		angleCount:  -1,
		penalty:     penalty,
		knots:       make([][]*knot.Knot, opts.ParityCount),
		index:       make(map[knot.AngleKey]*knot.Knot, len(report.Knots)),
	}

	all := make([]*knot.Knot, 0, len(report.Knots))
	for i, rec := range report.Knots {
		k, err := cat.knotFromRecord(i, &rec)
		if err != nil {
			return nil, err
		}
		cat.knots[k.Parity] = append(cat.knots[k.Parity], k)
		all = append(all, k)

		key := k.Key()
		if _, exists := cat.index[key]; exists {
			klog.Warningf("catalog: entry %d duplicates knot %v", i, k)
		} else {
			cat.index[key] = k
		}
	}
	if cat.angleCount < 0 {
		cat.angleCount = 0
	}
	cat.numKnots = len(all)

	// Rank by ascending cost, ties broken by input order
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Cost < all[j].Cost
	})
	for i, k := range all {
		k.Ranking = int32(i + 1)
	}

	klog.V(2).Infof("catalog: %d knots, %d parity classes, M=%d, L=%d", cat.numKnots, cat.parityCount, cat.modulus, cat.angleCount)
	return cat, nil
}

func (cat *KnotSet) knotFromRecord(i int, rec *Record) (*knot.Knot, error) {
	angles := make(knot.Angles, 0, len(rec.Angles)+1)
	angles = append(angles, rec.Angles...)
	if rec.FinalAngle != nil {
		angles = append(angles, int32(math.Round(*rec.FinalAngle)))
	}

	switch {
	case len(angles) == 0:
		return nil, errors.Wrapf(knot.ErrMalformedCatalogue, "entry %d has no angles", i)
	case cat.angleCount >= 0 && len(angles) != cat.angleCount:
		return nil, errors.Wrapf(knot.ErrMalformedCatalogue, "entry %d has %d angles (expected %d)", i, len(angles), cat.angleCount)
	case rec.AngleParity < 0 || rec.AngleParity >= cat.parityCount:
		return nil, errors.Wrapf(knot.ErrMalformedCatalogue, "entry %d has parity %d (expected 0..%d)", i, rec.AngleParity, cat.parityCount-1)
	case math.IsNaN(rec.TotalCost) || rec.TotalCost < 0:
		return nil, errors.Wrapf(knot.ErrMalformedCatalogue, "entry %d has cost %v (expected >= 0)", i, rec.TotalCost)
	}
	cat.angleCount = len(angles)

	return &knot.Knot{
		Angles: angles.Normalize(cat.modulus),
		Cost:   rec.TotalCost,
		Parity: rec.AngleParity,
	}, nil
}

// Modulus returns the angle modulus M.
func (cat *KnotSet) Modulus() int32 {
	return cat.modulus
}

// ParityCount returns the number of parity classes.
func (cat *KnotSet) ParityCount() int32 {
	return cat.parityCount
}

// AngleCount returns L, the number of angles of every knot in this catalogue.
func (cat *KnotSet) AngleCount() int {
	return cat.angleCount
}

// Penalty returns the cost given to unknown neighbors.
func (cat *KnotSet) Penalty() float64 {
	return cat.penalty
}

// NumKnots returns the number of catalogued knots (duplicates included).
func (cat *KnotSet) NumKnots() int {
	return cat.numKnots
}

// Bucket returns the knots of the given parity in input order.
// An out of range parity returns nil.
//
// The returned slice is owned by the KnotSet and must not be modified.
func (cat *KnotSet) Bucket(parity int32) []*knot.Knot {
	if parity < 0 || parity >= cat.parityCount {
		return nil
	}
	return cat.knots[parity]
}

// Retrieve returns the catalogued knot with the given parity and angles, or (nil, false) if there is none.
//
// Angles are compared after reduction mod M.  If the input catalogue had duplicates, the first wins.
func (cat *KnotSet) Retrieve(angles knot.Angles, parity int32) (*knot.Knot, bool) {
	var scrap [32]int32
	norm := append(knot.Angles(scrap[:0]), angles...).Normalize(cat.modulus)
	k, found := cat.index[knot.MakeAngleKey(parity, norm)]
	return k, found
}

// AllKnots returns every catalogued knot, bucket by bucket, each bucket in input order.
func (cat *KnotSet) AllKnots() []*knot.Knot {
	all := make([]*knot.Knot, 0, cat.numKnots)
	for _, bucket := range cat.knots {
		all = append(all, bucket...)
	}
	return all
}

// Select streams the catalogued knots selected by sel.
func (cat *KnotSet) Select(sel knot.Selector) *knot.KnotStream {
	var knots []*knot.Knot
	if sel.AnyParity {
		knots = cat.AllKnots()
	} else {
		knots = cat.Bucket(sel.Parity)
	}
	return knot.StreamKnots(knots).Select(sel)
}

// Distance is knot.Distance using this catalogue's modulus.
func (cat *KnotSet) Distance(a, b *knot.Knot) (int, error) {
	return knot.Distance(a, b, cat.modulus)
}

// RingDistance is knot.RingDistance using this catalogue's modulus.
func (cat *KnotSet) RingDistance(a, b *knot.Knot) (int, error) {
	return knot.RingDistance(a, b, cat.modulus)
}
