package expr

import (
	"strings"

	"github.com/2x3systems/goknot/knot"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Expr is a parsed knot expression, e.g. "p3: 0 1 15 2", "[4 4 8]", or "p0:[1, -3]".
type Expr struct {
	Parity *ParityTag `parser:"@@?"`
	Open   bool       `parser:"@\"[\"?"`
	Terms  []*Term    `parser:"@@ ( \",\"? @@ )*"`
	Close  bool       `parser:"@\"]\"?"`
}

type ParityTag struct {
	Value int32 `parser:"\"p\" @Int \":\""`
}

type Term struct {
	Neg   bool  `parser:"@\"-\"?"`
	Value int32 `parser:"@Int"`
}

var sKnotLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Tag", Pattern: `p`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:,\-\[\]]`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
})

var parseKnotExpr = participle.MustBuild[Expr](
	participle.Lexer(sKnotLexer),
)

// Parse reads a knot expression: an optional parity tag followed by one or more angles.
func Parse(s string) (*Expr, error) {
	x, err := parseKnotExpr.ParseString("", strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return nil, errors.Wrapf(knot.ErrBadExpr, "%q: %v", s, err)
	}
	if len(x.Terms) == 0 {
		return nil, errors.Wrapf(knot.ErrBadExpr, "%q: no angles", s)
	}
	if x.Open != x.Close {
		return nil, errors.Wrapf(knot.ErrBadExpr, "%q: unbalanced brackets", s)
	}
	return x, nil
}

// Angles returns the angle vector given by this expression (not reduced mod M).
func (x *Expr) Angles() knot.Angles {
	angles := make(knot.Angles, len(x.Terms))
	for i, term := range x.Terms {
		angles[i] = term.Value
		if term.Neg {
			angles[i] = -term.Value
		}
	}
	return angles
}

func (x *Expr) HasParity() bool {
	return x.Parity != nil
}

// ParityOr returns the parity tag, or def if there is none.
func (x *Expr) ParityOr(def int32) int32 {
	if x.Parity != nil {
		return x.Parity.Value
	}
	return def
}

// Knot returns an uncatalogued knot with this expression's angles and parity (defaulting to 0).
func (x *Expr) Knot() *knot.Knot {
	return &knot.Knot{
		Angles: x.Angles(),
		Parity: x.ParityOr(0),
	}
}
