package knot

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gogo/protobuf/proto"
)

// AngleKey is a binary encoding of a knot's parity and angle vector, suitable as a map or db key.
// Two knots have equal keys iff they have equal parity and equal angle vectors.
type AngleKey string

// Mod returns x mod M in [0, M).
func Mod(x, M int32) int32 {
	r := x % M
	if r < 0 {
		r += M
	}
	return r
}

// Wrap reduces x to its shortest signed representative modulo M, in the half-open range (-M/2, M/2].
//
// For M = 16 this is (-8, 8].
func Wrap(x, M int32) int32 {
	r := Mod(x, M)
	if 2*r > M {
		r -= M
	}
	return r
}

func abs(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// Clone returns a copy of this Angles.
func (A Angles) Clone() Angles {
	return append(Angles(nil), A...)
}

// Equal returns true if both vectors have the same length and components.
func (A Angles) Equal(B Angles) bool {
	if len(A) != len(B) {
		return false
	}
	for i, Ai := range A {
		if Ai != B[i] {
			return false
		}
	}
	return true
}

// Normalize reduces each component mod M in place and returns A.
func (A Angles) Normalize(M int32) Angles {
	for i, Ai := range A {
		A[i] = Mod(Ai, M)
	}
	return A
}

// Sum returns the sum of all components mod M, the quantity conserved by a move.
func (A Angles) Sum(M int32) int32 {
	sum := int32(0)
	for _, Ai := range A {
		sum = Mod(sum+Ai, M)
	}
	return sum
}

func (A Angles) String() string {
	buf := make([]byte, 0, 4*len(A)+2)
	buf = append(buf, '[')
	for i, Ai := range A {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(Ai), 10)
	}
	buf = append(buf, ']')
	return string(buf)
}

// AppendAngleKey appends the key encoding of (parity, angles) to dst.
//
// Format: zigzag(parity), varint(len(angles)), zigzag(angles[0]), ..
func AppendAngleKey(dst []byte, parity int32, angles Angles) []byte {
	buf := proto.NewBuffer(dst)
	buf.EncodeZigzag64(uint64(parity))
	buf.EncodeVarint(uint64(len(angles)))
	for _, Ai := range angles {
		buf.EncodeZigzag64(uint64(Ai))
	}
	return buf.Bytes()
}

// MakeAngleKey returns the AngleKey for (parity, angles).
func MakeAngleKey(parity int32, angles Angles) AngleKey {
	var scrap [64]byte
	return AngleKey(AppendAngleKey(scrap[:0], parity, angles))
}

// ParseAngleKey decodes a key made by AppendAngleKey.
func ParseAngleKey(key AngleKey) (parity int32, angles Angles, err error) {
	buf := proto.NewBuffer([]byte(key))

	var x uint64
	if x, err = buf.DecodeZigzag64(); err != nil {
		return 0, nil, ErrBadAngleKey
	}
	parity = int32(int64(x))

	var n uint64
	if n, err = buf.DecodeVarint(); err != nil || n > uint64(len(key)) {
		return 0, nil, ErrBadAngleKey
	}

	angles = make(Angles, n)
	for i := range angles {
		if x, err = buf.DecodeZigzag64(); err != nil {
			return 0, nil, ErrBadAngleKey
		}
		angles[i] = int32(int64(x))
	}
	return parity, angles, nil
}

// Key returns the AngleKey identifying this knot by value.
func (k *Knot) Key() AngleKey {
	return MakeAngleKey(k.Parity, k.Angles)
}

// SameAs returns true if k and other have equal parity and angles (cost and ranking are not considered).
func (k *Knot) SameAs(other *Knot) bool {
	return k.Parity == other.Parity && k.Angles.Equal(other.Angles)
}

// AngleCount returns the number of angle components (L).
func (k *Knot) AngleCount() int {
	return len(k.Angles)
}

func (k *Knot) String() string {
	return fmt.Sprintf("p%d:%v", k.Parity, k.Angles)
}

func (k *Knot) WriteAsString(out io.Writer, opts PrintOpts) {
	if len(opts.Label) > 0 {
		fmt.Fprintf(out, "%s,", opts.Label)
	}
	fmt.Fprintf(out, "%d,%q,", k.Parity, k.Angles.String())
	if opts.Ranking {
		fmt.Fprintf(out, "%d,", k.Ranking)
	}
	if opts.Cost {
		out.Write(strconv.AppendFloat(nil, k.Cost, 'g', -1, 64))
	}
}
