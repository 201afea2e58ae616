package walker

import (
	"github.com/2x3systems/goknot/knot"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

type shellWalker struct {
	src   AdjacencySource
	opts  ExploreOpts
	keys  KeySet
	edges *EdgeSet
	graph *Graph

	angleCount    int   // L, taken from the seed
	walkingShell  []int // node indices whose neighbors are being discovered
	deferredShell []int // node indices discovered while walking, expanded next
}

// resolveSeed reduces the seed mod M and returns its catalogued instance, or a placeholder if there is none.
func (gw *shellWalker) resolveSeed(seed *knot.Knot) knot.Neighbor {
	angles := seed.Angles.Clone().Normalize(gw.src.Modulus())
	if match, found := gw.src.Retrieve(angles, seed.Parity); found {
		return knot.Neighbor{Knot: match, Provenance: knot.Catalogued}
	}
	return knot.Neighbor{
		Knot: &knot.Knot{
			Angles: angles,
			Cost:   seed.Cost,
			Parity: seed.Parity,
		},
		Provenance: knot.Unknown,
	}
}

func explore(src AdjacencySource, seed *knot.Knot, opts ExploreOpts) (*Graph, error) {
	if opts.Radius < 0 {
		return nil, errors.Wrapf(knot.ErrBadRadius, "radius %d", opts.Radius)
	}
	if seed == nil || len(seed.Angles) == 0 {
		return nil, errors.Wrap(knot.ErrLengthMismatch, "seed has no angles")
	}

	gw := &shellWalker{
		src:   src,
		opts:  opts,
		edges: NewEdgeSet(),
		graph: &Graph{},
	}
	defer gw.keys.Close()

	gw.angleCount = len(seed.Angles)
	if _, _, err := gw.tryDiscover(gw.resolveSeed(seed), 0); err != nil {
		return nil, err
	}
	gw.graph.Shells = append(gw.graph.Shells, []int{0})
	gw.walkingShell = []int{0}

	var err error
	for shell := 1; shell <= opts.Radius; shell++ {
		if err = gw.walkShell(shell); err != nil {
			return nil, err
		}
		if len(gw.deferredShell) == 0 {
			break
		}
		gw.wireEdges(gw.deferredShell)
		gw.graph.Shells = append(gw.graph.Shells, gw.deferredShell)

		klog.V(2).Infof("walker: shell %d: %d new knots, %d total, %d edges", shell, len(gw.deferredShell), len(gw.graph.Nodes), gw.edges.Len())

		gw.walkingShell, gw.deferredShell = gw.deferredShell, nil

		if opts.MaxNodes > 0 && len(gw.graph.Nodes) >= opts.MaxNodes {
			if shell < opts.Radius {
				err = errors.Wrapf(knot.ErrNodeLimit, "%d nodes after shell %d", len(gw.graph.Nodes), shell)
			}
			break
		}
	}

	gw.graph.Edges = gw.edges.Edges()
	return gw.graph, err
}

// walkShell discovers every neighbor of the walking shell, appending new nodes to the deferred shell.
func (gw *shellWalker) walkShell(shell int) error {
	for _, idx := range gw.walkingShell {
		node := &gw.graph.Nodes[idx]
		if node.Unknown && gw.opts.PruneUnknown && node.Shell > 0 {
			continue
		}
		for _, nb := range gw.src.Adjacent(node.Knot) {
			newIdx, added, err := gw.tryDiscover(nb, shell)
			if err != nil {
				return err
			}
			if added {
				gw.deferredShell = append(gw.deferredShell, newIdx)
			}
		}
	}
	return nil
}

func (gw *shellWalker) tryDiscover(nb knot.Neighbor, shell int) (int, bool, error) {
	if nb.Knot == nil {
		return -1, false, errors.Errorf("walker: nil knot discovered in shell %d", shell)
	}
	if len(nb.Knot.Angles) != gw.angleCount {
		return -1, false, errors.Wrapf(knot.ErrLengthMismatch, "walker: %v discovered in shell %d (expected %d angles)", nb.Knot, shell, gw.angleCount)
	}
	idx, added, err := gw.keys.TryAdd(nb.Knot.Key())
	if err != nil || !added {
		return idx, false, err
	}
	if idx != len(gw.graph.Nodes) {
		return -1, false, errors.Errorf("walker: key set index %d out of step with %d nodes", idx, len(gw.graph.Nodes))
	}
	gw.graph.Nodes = append(gw.graph.Nodes, MakeNode(nb, shell))
	return idx, true, nil
}

// wireEdges adds an edge between each newly discovered node and every node discovered before it that is one move away.
// Since edges between earlier nodes were wired when they were discovered, the edge set stays complete for all nodes so far.
func (gw *shellWalker) wireEdges(fresh []int) {
	nodes := gw.graph.Nodes
	for _, n := range fresh {
		for m := 0; m < n; m++ {
			if gw.src.IsAdjacent(nodes[m].Knot, nodes[n].Knot) || gw.src.IsAdjacent(nodes[n].Knot, nodes[m].Knot) {
				gw.edges.TryAdd(m, n)
			}
		}
	}
}
