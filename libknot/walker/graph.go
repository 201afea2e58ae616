package walker

import (
	"bufio"
	"io"
	"strconv"

	"github.com/2x3systems/goknot/knot"
	"github.com/pkg/errors"
)

func MakeNode(nb knot.Neighbor, shell int) Node {
	k := nb.Knot
	return Node{
		Knot:    k,
		Ranking: k.Ranking,
		Cost:    k.Cost,
		Angles:  k.Angles,
		Parity:  k.Parity,
		Unknown: nb.IsUnknown(),
		Shell:   shell,
	}
}

// NodeCount returns the number of nodes in this graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// Knots returns the knot of each node, in node order.
func (g *Graph) Knots() []*knot.Knot {
	knots := make([]*knot.Knot, len(g.Nodes))
	for i := range g.Nodes {
		knots[i] = g.Nodes[i].Knot
	}
	return knots
}

// Stream pushes each node's knot (in node order) into a new KnotStream.
func (g *Graph) Stream() *knot.KnotStream {
	return knot.StreamKnots(g.Knots())
}

// Degree returns the number of edges incident to each node.
func (g *Graph) Degree() []int {
	deg := make([]int, len(g.Nodes))
	for _, e := range g.Edges {
		deg[e.A]++
		deg[e.B]++
	}
	return deg
}

// WriteCSV writes a node table followed by an edge table:
//
//	node,shell,ranking,cost,parity,angles,unknown
//	...
//	edge,a,b
//	...
func (g *Graph) WriteCSV(w io.Writer) error {
	out := bufio.NewWriter(w)
	var line []byte

	out.WriteString("node,shell,ranking,cost,parity,angles,unknown\n")
	for i, n := range g.Nodes {
		line = strconv.AppendInt(line[:0], int64(i), 10)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(n.Shell), 10)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(n.Ranking), 10)
		line = append(line, ',')
		line = strconv.AppendFloat(line, n.Cost, 'g', -1, 64)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(n.Parity), 10)
		line = append(line, ',')
		line = strconv.AppendQuote(line, n.Angles.String())
		line = append(line, ',')
		line = strconv.AppendBool(line, n.Unknown)
		line = append(line, '\n')
		out.Write(line)
	}

	out.WriteString("edge,a,b\n")
	for i, e := range g.Edges {
		line = strconv.AppendInt(line[:0], int64(i), 10)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(e.A), 10)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(e.B), 10)
		line = append(line, '\n')
		out.Write(line)
	}

	return errors.Wrap(out.Flush(), "writing graph")
}

// DistanceGraph builds a graph over the given knots (in the given order) with an edge between every
// parity-compatible pair whose distance mod M is at most threshold.
//
// Nodes are marked Unknown if they carry no ranking (i.e. were not assigned one by a catalogue).
func DistanceGraph(knots []*knot.Knot, M int32, threshold int) *Graph {
	g := &Graph{
		Nodes: make([]Node, len(knots)),
	}
	shell := make([]int, len(knots))
	for i, k := range knots {
		prov := knot.Catalogued
		if k.Ranking == 0 {
			prov = knot.Unknown
		}
		g.Nodes[i] = MakeNode(knot.Neighbor{Knot: k, Provenance: prov}, 0)
		shell[i] = i
	}
	g.Shells = [][]int{shell}

	edges := NewEdgeSet()
	for i := range knots {
		for j := i + 1; j < len(knots); j++ {
			d, err := knot.Distance(knots[i], knots[j], M)
			if err == nil && d <= threshold {
				edges.TryAdd(i, j)
			}
		}
	}
	g.Edges = edges.Edges()
	return g
}
