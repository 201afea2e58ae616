package knot

import (
	"hash/maphash"
)

type dropDupes struct {
	hashMap map[uint64]AngleKey
	hasher  maphash.Hash
	scrap   []byte
}

// NewDropDupes returns a KnotAdder that accepts each distinct (parity, angles) once.
func NewDropDupes() KnotAdder {
	return &dropDupes{
		hashMap: make(map[uint64]AngleKey),
	}
}

func (dd *dropDupes) Reset() {
	for k := range dd.hashMap {
		delete(dd.hashMap, k)
	}
}

func (dd *dropDupes) TryAddKnot(k *Knot) bool {
	dd.scrap = AppendAngleKey(dd.scrap[:0], k.Parity, k.Angles)

	dd.hasher.Reset()
	dd.hasher.Write(dd.scrap)
	hash := dd.hasher.Sum64()

	existing, found := dd.hashMap[hash]
	for found {
		if string(existing) == string(dd.scrap) {
			return false
		}
		hash++
		existing, found = dd.hashMap[hash]
	}

	dd.hashMap[hash] = AngleKey(dd.scrap)
	return true
}
