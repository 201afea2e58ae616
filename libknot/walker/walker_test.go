package walker

import (
	"strings"
	"testing"

	"github.com/2x3systems/goknot/knot"
	"github.com/2x3systems/goknot/libknot/catalog"
	"github.com/stretchr/testify/require"
)

func smallCatalog(t *testing.T) *catalog.KnotSet {
	cat, err := catalog.New(&catalog.Report{
		NumAngles: 4,
		Knots: []catalog.Record{
			{Angles: []int32{0, 0}, TotalCost: 1, AngleParity: 0},
			{Angles: []int32{1, 3}, TotalCost: 2, AngleParity: 0},
		},
	}, catalog.Opts{})
	require.NoError(t, err)
	return cat
}

func anglesOf(g *Graph) []knot.Angles {
	var out []knot.Angles
	for _, n := range g.Nodes {
		out = append(out, n.Angles)
	}
	return out
}

func TestExploreRadiusZero(t *testing.T) {
	cat := smallCatalog(t)
	seed := cat.Bucket(0)[0]

	g, err := Explore(cat, seed, ExploreOpts{Radius: 0})
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	require.Empty(t, g.Edges)
	require.Same(t, seed, g.Nodes[0].Knot)
	require.Equal(t, [][]int{{0}}, g.Shells)
}

func TestExploreWorkedExample(t *testing.T) {
	cat := smallCatalog(t)
	seed := cat.Bucket(0)[0]

	g, err := Explore(cat, seed, ExploreOpts{Radius: 1})
	require.NoError(t, err)
	require.Equal(t, []knot.Angles{{0, 0}, {1, 3}, {3, 1}}, anglesOf(g))
	require.Equal(t, []Edge{{0, 1}, {0, 2}}, g.Edges)
	require.False(t, g.Nodes[1].Unknown)
	require.Equal(t, int32(2), g.Nodes[1].Ranking)
	require.True(t, g.Nodes[2].Unknown)
	require.Equal(t, knot.PenaltyCost, g.Nodes[2].Cost)

	g, err = Explore(cat, seed, ExploreOpts{Radius: 2})
	require.NoError(t, err)
	require.Equal(t, []knot.Angles{{0, 0}, {1, 3}, {3, 1}, {2, 2}}, anglesOf(g))
	require.Equal(t, []Edge{{0, 1}, {0, 2}, {1, 3}, {2, 3}}, g.Edges)
	require.Equal(t, [][]int{{0}, {1, 2}, {3}}, g.Shells)

	// The class is exhausted, so a larger radius adds nothing
	g3, err := Explore(cat, seed, ExploreOpts{Radius: 5})
	require.NoError(t, err)
	require.Equal(t, g, g3)
}

func TestExploreMonotonic(t *testing.T) {
	report := &catalog.Report{NumAngles: 16}
	for a := int32(0); a < 16; a++ {
		report.Knots = append(report.Knots, catalog.Record{
			Angles:      []int32{a, 16 - a, 0},
			TotalCost:   float64(a%5) / 2,
			AngleParity: 2,
		})
	}
	cat, err := catalog.New(report, catalog.Opts{})
	require.NoError(t, err)
	seed := cat.Bucket(2)[0]

	var prev *Graph
	for radius := 0; radius <= 3; radius++ {
		g, err := Explore(cat, seed, ExploreOpts{Radius: radius})
		require.NoError(t, err)

		// Node keys are unique
		seen := map[knot.AngleKey]bool{}
		for _, n := range g.Nodes {
			key := n.Knot.Key()
			require.False(t, seen[key])
			seen[key] = true
			require.LessOrEqual(t, n.Shell, radius)
		}

		// Every edge joins adjacent nodes, and every adjacent pair has an edge
		edges := NewEdgeSet()
		for _, e := range g.Edges {
			require.Less(t, e.A, e.B)
			require.True(t, cat.IsAdjacent(g.Nodes[e.A].Knot, g.Nodes[e.B].Knot))
			edges.TryAdd(e.A, e.B)
		}
		for i := range g.Nodes {
			for j := i + 1; j < len(g.Nodes); j++ {
				if cat.IsAdjacent(g.Nodes[i].Knot, g.Nodes[j].Knot) {
					require.True(t, edges.Has(i, j), "missing edge %d-%d", i, j)
				}
			}
		}

		if prev != nil {
			require.GreaterOrEqual(t, len(g.Nodes), len(prev.Nodes))
			require.Equal(t, anglesOf(prev), anglesOf(g)[:len(prev.Nodes)])
			for _, e := range prev.Edges {
				require.True(t, edges.Has(e.A, e.B))
			}
		}
		prev = g
	}
}

func TestExplorePruneUnknown(t *testing.T) {
	cat, err := catalog.New(&catalog.Report{
		NumAngles: 4,
		Knots: []catalog.Record{
			{Angles: []int32{0, 0}, TotalCost: 1, AngleParity: 0},
		},
	}, catalog.Opts{})
	require.NoError(t, err)
	seed := cat.Bucket(0)[0]

	g, err := Explore(cat, seed, ExploreOpts{Radius: 5, PruneUnknown: true})
	require.NoError(t, err)
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Shells, 2)

	// Without pruning the whole class (a, -a) is reached
	g, err = Explore(cat, seed, ExploreOpts{Radius: 5})
	require.NoError(t, err)
	require.Len(t, g.Nodes, 4)
}

func TestExploreLimits(t *testing.T) {
	cat := smallCatalog(t)
	seed := cat.Bucket(0)[0]

	_, err := Explore(cat, seed, ExploreOpts{Radius: -1})
	require.ErrorIs(t, err, knot.ErrBadRadius)

	g, err := Explore(cat, seed, ExploreOpts{Radius: 2, MaxNodes: 2})
	require.ErrorIs(t, err, knot.ErrNodeLimit)
	require.NotNil(t, g)
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)
}

func TestDistanceGraph(t *testing.T) {
	cat := smallCatalog(t)
	knots := []*knot.Knot{
		cat.Bucket(0)[0],
		cat.Bucket(0)[1],
		{Angles: knot.Angles{3, 1}},
		{Angles: knot.Angles{2, 2}},
		{Angles: knot.Angles{0, 0}, Parity: 1},
	}

	g := DistanceGraph(knots, 4, 1)
	require.Len(t, g.Nodes, 5)
	require.Equal(t, []Edge{{0, 1}, {0, 2}, {1, 3}, {2, 3}}, g.Edges)
	require.False(t, g.Nodes[0].Unknown)
	require.True(t, g.Nodes[3].Unknown)

	g = DistanceGraph(knots, 4, 2)
	require.Len(t, g.Edges, 6)
}

func TestWriteCSV(t *testing.T) {
	cat := smallCatalog(t)
	g, err := Explore(cat, cat.Bucket(0)[0], ExploreOpts{Radius: 1})
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, g.WriteCSV(&out))
	require.Equal(t, `node,shell,ranking,cost,parity,angles,unknown
0,0,1,1,0,"[0 0]",false
1,1,2,2,0,"[1 3]",false
2,1,0,3,0,"[3 1]",true
edge,a,b
0,0,1
1,0,2
`, out.String())

	require.Len(t, g.Stream().Collect(), 3)
	require.Equal(t, []int{2, 1, 1}, g.Degree())
}

func TestKeySet(t *testing.T) {
	var set KeySet
	defer set.Close()

	a := knot.MakeAngleKey(0, knot.Angles{1, 2})
	b := knot.MakeAngleKey(1, knot.Angles{1, 2})

	idx, added, err := set.TryAdd(a)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, 0, idx)

	idx, added, err = set.TryAdd(b)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, 1, idx)

	idx, added, err = set.TryAdd(a)
	require.NoError(t, err)
	require.False(t, added)
	require.Equal(t, 0, idx)
	require.Equal(t, 2, set.Len())

	idx, found, err := set.Lookup(b)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, idx)

	set.Close()
	require.Equal(t, 0, set.Len())
	_, found, err = set.Lookup(a)
	require.NoError(t, err)
	require.False(t, found)
}

func TestEdgeSet(t *testing.T) {
	edges := NewEdgeSet()
	require.True(t, edges.TryAdd(3, 1))
	require.True(t, edges.TryAdd(0, 2))
	require.True(t, edges.TryAdd(1, 2))
	require.False(t, edges.TryAdd(1, 3))
	require.False(t, edges.TryAdd(2, 2))
	require.Equal(t, 3, edges.Len())
	require.Equal(t, []Edge{{0, 2}, {1, 2}, {1, 3}}, edges.Edges())
}

func TestExploreRawSeed(t *testing.T) {
	cat := smallCatalog(t)

	// [4 0] is [0 0] mod 4, so it resolves to the catalogued knot and is never rediscovered
	g, err := Explore(cat, &knot.Knot{Angles: knot.Angles{4, 0}}, ExploreOpts{Radius: 2})
	require.NoError(t, err)
	require.Equal(t, []knot.Angles{{0, 0}, {1, 3}, {3, 1}, {2, 2}}, anglesOf(g))
	require.Same(t, cat.Bucket(0)[0], g.Nodes[0].Knot)
	require.False(t, g.Nodes[0].Unknown)
	require.Equal(t, int32(1), g.Nodes[0].Ranking)
	require.Equal(t, []Edge{{0, 1}, {0, 2}, {1, 3}, {2, 3}}, g.Edges)
}

func TestExploreUncataloguedSeed(t *testing.T) {
	cat := smallCatalog(t)
	seed := &knot.Knot{Angles: knot.Angles{6, 2}, Cost: knot.PenaltyCost}

	g, err := Explore(cat, seed, ExploreOpts{Radius: 0})
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	require.True(t, g.Nodes[0].Unknown)
	require.Equal(t, int32(0), g.Nodes[0].Ranking)
	require.Equal(t, knot.Angles{2, 2}, g.Nodes[0].Angles)
	require.Equal(t, knot.Angles{6, 2}, seed.Angles, "the caller's seed is not modified")

	// The seed is expanded even when unknown knots are pruned
	g, err = Explore(cat, seed, ExploreOpts{Radius: 1, PruneUnknown: true})
	require.NoError(t, err)
	require.Equal(t, []knot.Angles{{2, 2}, {3, 1}, {1, 3}}, anglesOf(g))
	require.True(t, g.Nodes[1].Unknown)
	require.False(t, g.Nodes[2].Unknown)
}

// malformedSource reports a neighbor of the wrong length once its first `after` expansions are done.
type malformedSource struct {
	*catalog.KnotSet
	after int
	calls int
}

func (src *malformedSource) Adjacent(k *knot.Knot) []knot.Neighbor {
	src.calls++
	adj := src.KnotSet.Adjacent(k)
	if src.calls <= src.after {
		return adj
	}
	return append(adj[:len(adj):len(adj)], knot.Neighbor{
		Knot:       &knot.Knot{Angles: knot.Angles{1}},
		Provenance: knot.Unknown,
	})
}

func TestExploreSourceFailure(t *testing.T) {
	cat := smallCatalog(t)
	src := &malformedSource{KnotSet: cat, after: 1}

	g, err := Explore(src, cat.Bucket(0)[0], ExploreOpts{Radius: 3})
	require.ErrorIs(t, err, knot.ErrLengthMismatch)
	require.Nil(t, g)

	_, err = Explore(cat, nil, ExploreOpts{Radius: 1})
	require.ErrorIs(t, err, knot.ErrLengthMismatch)
}
