package walker

import (
	"github.com/2x3systems/goknot/knot"
)

// Primary entry point for neighborhood exploration: a bounded breadth-first walk out from seed.
//
// The seed is reduced mod M and resolved in src, so an uncatalogued seed is recorded as an Unknown node.
// If the walk fails (other than by reaching MaxNodes), no graph is returned.
func Explore(src AdjacencySource, seed *knot.Knot, opts ExploreOpts) (*Graph, error) {
	return explore(src, seed, opts)
}

// AdjacencySource resolves the one-move neighborhood of a knot (see catalog.KnotSet).
type AdjacencySource interface {

	// Adjacent returns every knot exactly one move away from k.
	Adjacent(k *knot.Knot) []knot.Neighbor

	// IsAdjacent returns true if b is exactly one move away from a.
	IsAdjacent(a, b *knot.Knot) bool

	// Retrieve returns the catalogued knot with the given angles and parity, if any.
	Retrieve(angles knot.Angles, parity int32) (*knot.Knot, bool)

	// Modulus returns the angle modulus M.
	Modulus() int32
}

type ExploreOpts struct {
	Radius       int  // number of shells to expand beyond the seed
	PruneUnknown bool // if set, unknown (uncatalogued) knots other than the seed are recorded but not expanded
	MaxNodes     int  // if > 0, expansion stops after the shell that reaches this many nodes
}

// Node is a knot discovered during a walk, carrying the attributes graph consumers need.
type Node struct {
	Knot    *knot.Knot
	Ranking int32
	Cost    float64
	Angles  knot.Angles
	Parity  int32
	Unknown bool // set if Knot is a synthesized placeholder
	Shell   int  // hop count from the seed
}

// Edge connects two nodes of a Graph by index, where A < B.
type Edge struct {
	A, B int
}

// Graph is the result of a walk: nodes in discovery order and deduplicated edges in (A, B) order.
type Graph struct {
	Nodes  []Node
	Edges  []Edge
	Shells [][]int // Shells[s] lists the node indices first discovered s hops from the seed
}
