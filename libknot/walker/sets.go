package walker

import (
	"encoding/binary"

	"github.com/2x3systems/goknot/knot"
	"github.com/dgraph-io/badger/v3"
	"github.com/emirpasic/gods/trees/redblacktree"
)

// KeySet maps each distinct AngleKey to the order in which it was first added.
//
// Membership is by value (parity and angles), never by pointer, since placeholder knots are synthesized afresh.
// After one or more calls to TryAdd(), call Close() for cleanup.
type KeySet struct {
	db    *badger.DB
	count int
}

func (set *KeySet) autoOpen() error {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			return err
		}
	}
	return nil
}

// TryAdd adds key if it is not already present.
//
// If key is new, it is assigned the next index and added is true.
// Otherwise the index it was first assigned is returned and added is false.
func (set *KeySet) TryAdd(key knot.AngleKey) (index int, added bool, err error) {
	if err = set.autoOpen(); err != nil {
		return -1, false, err
	}

	txn := set.db.NewTransaction(true)
	defer txn.Discard()

	index, found, err := getIndex(txn, key)
	if err != nil || found {
		return index, false, err
	}

	var scrap [binary.MaxVarintLen64]byte
	val := binary.AppendUvarint(scrap[:0], uint64(set.count))
	if err = txn.Set([]byte(key), val); err != nil {
		return -1, false, err
	}
	if err = txn.Commit(); err != nil {
		return -1, false, err
	}

	index = set.count
	set.count++
	return index, true, nil
}

// Lookup returns the index assigned to key, if present.
func (set *KeySet) Lookup(key knot.AngleKey) (index int, found bool, err error) {
	if set.db == nil {
		return -1, false, nil
	}
	txn := set.db.NewTransaction(false)
	defer txn.Discard()
	return getIndex(txn, key)
}

func getIndex(txn *badger.Txn, key knot.AngleKey) (index int, found bool, err error) {
	item, err := txn.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return -1, false, nil
	}
	if err != nil {
		return -1, false, err
	}
	err = item.Value(func(val []byte) error {
		idx, n := binary.Uvarint(val)
		if n <= 0 {
			return knot.ErrBadAngleKey
		}
		index = int(idx)
		return nil
	})
	return index, err == nil, err
}

// Len returns the number of distinct keys added.
func (set *KeySet) Len() int {
	return set.count
}

// Close removes all previously added keys.
func (set *KeySet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
	set.count = 0
}

// EdgeSet is an ordered set of Edges.
type EdgeSet struct {
	tree *redblacktree.Tree
}

func NewEdgeSet() *EdgeSet {
	return &EdgeSet{
		tree: redblacktree.NewWith(func(A, B interface{}) int {
			a := A.(Edge)
			b := B.(Edge)
			if a.A != b.A {
				return a.A - b.A
			}
			return a.B - b.B
		}),
	}
}

// TryAdd adds the edge between nodes i and j (in either order).
// Self-edges and edges already present are ignored and return false.
func (edges *EdgeSet) TryAdd(i, j int) bool {
	if i == j {
		return false
	}
	if i > j {
		i, j = j, i
	}
	e := Edge{A: i, B: j}
	if _, found := edges.tree.Get(e); found {
		return false
	}
	edges.tree.Put(e, nil)
	return true
}

func (edges *EdgeSet) Has(i, j int) bool {
	if i > j {
		i, j = j, i
	}
	_, found := edges.tree.Get(Edge{A: i, B: j})
	return found
}

func (edges *EdgeSet) Len() int {
	return edges.tree.Size()
}

// Edges returns all edges in (A, B) order.
func (edges *EdgeSet) Edges() []Edge {
	out := make([]Edge, 0, edges.tree.Size())
	itr := edges.tree.Iterator()
	for itr.Next() {
		out = append(out, itr.Key().(Edge))
	}
	return out
}
