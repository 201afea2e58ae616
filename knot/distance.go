package knot

// Distance returns the number of unit moves needed to transform a into b, where M is the angle modulus.
//
// Components 0..L-2 are resolved in order, each taking the shortest wraparound direction and passing the
// conserving counter-shift on to the next component.  The last component is dependent and is never moved
// independently: when a and b have the same angle sum mod M it comes out correct by itself.
//
// If a and b are of different parity, (Incompatible, ErrIncompatibleClass) is returned.
func Distance(a, b *Knot, M int32) (int, error) {
	if err := checkComparable(a, b); err != nil {
		return Incompatible, err
	}

	L := len(a.Angles)
	var scrap [32]int32
	work := append(scrap[:0], a.Angles...)

	moves := 0
	for i := 0; i < L-1; i++ {
		shift := Wrap(b.Angles[i]-work[i], M)
		work[i+1] = Mod(work[i+1]-shift, M)
		moves += int(abs(shift))
	}
	return moves, nil
}

// RingDistance is Distance, except that the last component may also carry moves of its own.
//
// Each move count x_i (i < L-1) is a prefix sum of the per-component mismatch offset by the ring
// move c on the last component; the smallest total over all c in [0, M) is returned.  With c = 0 this is
// exactly Distance, so RingDistance(a, b) <= Distance(a, b), and any two knots one move apart are at
// RingDistance 1 for every L.
func RingDistance(a, b *Knot, M int32) (int, error) {
	if err := checkComparable(a, b); err != nil {
		return Incompatible, err
	}

	L := len(a.Angles)
	if L == 0 {
		return 0, nil
	}

	var scrap [32]int32
	prefix := scrap[:0]
	P := int32(0)
	for i := 0; i < L-1; i++ {
		P = Mod(P+b.Angles[i]-a.Angles[i], M)
		prefix = append(prefix, P)
	}

	best := -1
	for c := int32(0); c < M; c++ {
		moves := int(abs(Wrap(c, M)))
		for _, Pi := range prefix {
			moves += int(abs(Wrap(Pi+c, M)))
		}
		if best < 0 || moves < best {
			best = moves
		}
	}
	return best, nil
}

// Reachable returns true if b can be reached from a by moves, i.e. both are the same parity and length and
// have the same angle sum mod M.
func Reachable(a, b *Knot, M int32) bool {
	return checkComparable(a, b) == nil && a.Angles.Sum(M) == b.Angles.Sum(M)
}

func checkComparable(a, b *Knot) error {
	if a.Parity != b.Parity {
		return ErrIncompatibleClass
	}
	if len(a.Angles) != len(b.Angles) {
		return ErrLengthMismatch
	}
	return nil
}
