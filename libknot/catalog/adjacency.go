package catalog

import (
	"sync"

	"github.com/2x3systems/goknot/knot"
)

type adjacencyMemo struct {
	mu    sync.RWMutex
	byKey map[knot.AngleKey]*adjacency
}

type adjacency struct {
	neighbors []knot.Neighbor
	keys      []knot.AngleKey // keys[i] identifies neighbors[i]
}

// MoveAt returns the angles of k after a single move: component i shifts by shift while the next
// component on the ring (wrapping from the last back to the first) shifts by -shift.
// The result is reduced mod M.
//
// When L == 1 the two shifts land on the same component and cancel.
func (cat *KnotSet) MoveAt(k *knot.Knot, i int, shift int32) knot.Angles {
	moved := k.Angles.Clone()
	next := (i + 1) % len(moved)
	moved[i] += shift
	moved[next] -= shift
	return moved.Normalize(cat.modulus)
}

// Adjacent returns the 2*L knots exactly one move away from k, ordered by component and then by shift (+1, -1).
//
// Each moved angle vector resolves to its catalogued knot if there is one; otherwise a placeholder with
// k's parity and the catalogue's penalty cost is synthesized (and is not added to the catalogue).
//
// Results are memoized per (parity, angles), so repeated calls for equal knots return the same neighbors.
// The returned slice must not be modified.
func (cat *KnotSet) Adjacent(k *knot.Knot) []knot.Neighbor {
	return cat.adjacency(k).neighbors
}

// IsAdjacent returns true if b is exactly one move away from a.
func (cat *KnotSet) IsAdjacent(a, b *knot.Knot) bool {
	if a.Parity != b.Parity || len(a.Angles) != len(b.Angles) {
		return false
	}
	bKey := knot.MakeAngleKey(b.Parity, b.Angles.Clone().Normalize(cat.modulus))
	for _, key := range cat.adjacency(a).keys {
		if key == bKey {
			return true
		}
	}
	return false
}

// ClearAdjacencyCache drops all memoized adjacency.
func (cat *KnotSet) ClearAdjacencyCache() {
	cat.memo.mu.Lock()
	cat.memo.byKey = nil
	cat.memo.mu.Unlock()
}

// AdjacencyCacheSize returns the number of knots whose adjacency is currently memoized.
func (cat *KnotSet) AdjacencyCacheSize() int {
	cat.memo.mu.RLock()
	defer cat.memo.mu.RUnlock()
	return len(cat.memo.byKey)
}

func (cat *KnotSet) adjacency(k *knot.Knot) *adjacency {
	srcKey := k.Key()

	cat.memo.mu.RLock()
	adj := cat.memo.byKey[srcKey]
	cat.memo.mu.RUnlock()
	if adj != nil {
		return adj
	}

	adj = cat.computeAdjacency(k)

	// If another goroutine got here first, keep theirs so all callers see the same neighbors
	cat.memo.mu.Lock()
	if cat.memo.byKey == nil {
		cat.memo.byKey = make(map[knot.AngleKey]*adjacency)
	}
	if existing := cat.memo.byKey[srcKey]; existing != nil {
		adj = existing
	} else {
		cat.memo.byKey[srcKey] = adj
	}
	cat.memo.mu.Unlock()

	return adj
}

func (cat *KnotSet) computeAdjacency(k *knot.Knot) *adjacency {
	L := len(k.Angles)
	adj := &adjacency{
		neighbors: make([]knot.Neighbor, 0, 2*L),
		keys:      make([]knot.AngleKey, 0, 2*L),
	}

	for i := 0; i < L; i++ {
		for _, shift := range [2]int32{1, -1} {
			moved := cat.MoveAt(k, i, shift)

			nb := knot.Neighbor{
				Provenance: knot.Catalogued,
			}
			if match, found := cat.Retrieve(moved, k.Parity); found {
				nb.Knot = match
			} else {
				nb.Provenance = knot.Unknown
				nb.Knot = &knot.Knot{
					Angles: moved,
					Cost:   cat.penalty,
					Parity: k.Parity,
				}
			}

			adj.neighbors = append(adj.neighbors, nb)
			adj.keys = append(adj.keys, knot.MakeAngleKey(k.Parity, moved))
		}
	}

	return adj
}
