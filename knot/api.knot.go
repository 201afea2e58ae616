package knot

const (

	// PenaltyCost is the cost assigned to a synthesized neighbor that has no catalog entry.
	// Costs at or above this value mark a knot as outside the "good" region.
	PenaltyCost = 3.0

	// Incompatible is the distance reported between knots of different parity.
	Incompatible = -1

	// DefaultModulus is the angle modulus of the canonical trefoil catalogs.
	DefaultModulus int32 = 16
)

// Angles is a fixed-length vector of discrete joint angles, each logically in [0, M).
type Angles []int32

// Knot is a cataloged (or synthesized) angle configuration.
//
// A Knot is never modified once it has been constructed; the adjacency of a Knot is memoized
// by its owning catalog, not by the Knot itself.
type Knot struct {
	Angles  Angles
	Cost    float64 // lower is better
	Parity  int32   // class label; moves and distances only exist within a class
	Ranking int32   // 1-based rank by ascending cost in the owning catalog (0 if not cataloged)
}

// Provenance says where a Neighbor came from.
type Provenance byte

const (
	Catalogued Provenance = iota // resolved to an existing catalog entry
	Unknown                      // synthesized placeholder carrying PenaltyCost
)

func (p Provenance) String() string {
	switch p {
	case Catalogued:
		return "catalogued"
	case Unknown:
		return "unknown"
	}
	return "?"
}

// Neighbor is a knot exactly one move away from some source knot.
type Neighbor struct {
	Knot       *Knot
	Provenance Provenance
}

// IsUnknown returns true if this neighbor was synthesized rather than found in a catalog.
func (nb Neighbor) IsUnknown() bool {
	return nb.Provenance == Unknown
}

// Selector is an operator that either selects a given Knot or not.
type Selector struct {
	Parity    int32   // only select this parity (ignored if AnyParity is set)
	AnyParity bool    // select from all parity classes
	MaxCost   float64 // select knots with Cost < MaxCost (0 denotes no bound)
	Limit     int     // stop after this many hits (0 denotes no limit)
}

// DefaultSelector selects every knot in a catalog.
var DefaultSelector = Selector{
	AnyParity: true,
}

// Selects returns true if k passes this Selector's parity and cost bounds (Limit is not considered).
func (sel *Selector) Selects(k *Knot) bool {
	if !sel.AnyParity && k.Parity != sel.Parity {
		return false
	}
	if sel.MaxCost > 0 && !(k.Cost < sel.MaxCost) {
		return false
	}
	return true
}

// PrintOpts specifies what is printed for a knot
type PrintOpts struct {
	Label   string // Prefix label
	Cost    bool   // If set, prints the cost
	Ranking bool   // If set, prints the catalog ranking
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Cost:    true,
	Ranking: true,
}
