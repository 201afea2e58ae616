package pyknot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/2x3systems/goknot/knot"
	"github.com/2x3systems/goknot/libknot/analysis"
	"github.com/2x3systems/goknot/libknot/catalog"
	"github.com/2x3systems/goknot/libknot/expr"
	"github.com/2x3systems/goknot/libknot/walker"
	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyKnotType       = py.NewType("Knot", "an angle vector of a given parity, with its cost and ranking")
	pyKnotStreamType = py.NewType("KnotStream", "knot.KnotStream")
	pyCatalogType    = py.NewType("Catalog", "catalog.KnotSet")
	pyGraphType      = py.NewType("Graph", "a neighborhood graph from Catalog.Explore()")
)

type pyKnot struct {
	*knot.Knot
	unknown bool
}

func (k pyKnot) Type() *py.Type {
	return pyKnotType
}

func (k pyKnot) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	k.WriteAsString(&writer, knot.DefaultPrintOpts)
	return py.String(writer.String()), nil
}

func (k pyKnot) M__repr__() (py.Object, error) {
	return py.String(k.String()), nil
}

func wrapNeighbor(nb knot.Neighbor) py.Object {
	return py.Object(pyKnot{nb.Knot, nb.IsUnknown()})
}

func wrapKnots(knots []*knot.Knot) py.Tuple {
	tuple := make(py.Tuple, len(knots))
	for i, k := range knots {
		tuple[i] = pyKnot{Knot: k}
	}
	return tuple
}

func py_Knot_Angles(self py.Object, args py.Tuple) (py.Object, error) {
	k := self.(pyKnot)
	angles := make(py.Tuple, len(k.Angles))
	for i, angle := range k.Angles {
		angles[i] = py.Int(angle)
	}
	return angles, nil
}

func py_Knot_Cost(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Float(self.(pyKnot).Cost), nil
}

func py_Knot_Parity(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyKnot).Parity), nil
}

func py_Knot_Ranking(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyKnot).Ranking), nil
}

func py_Knot_Unknown(self py.Object, args py.Tuple) (py.Object, error) {
	return py.NewBool(self.(pyKnot).unknown), nil
}

// Arg 1 (str): catalogue pathname (.json, .yaml)
// Arg 2 (int, optional): angle modulus (otherwise the catalogue's num_angles)
func py_Load(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname string
	var modulus int32
	err := py.LoadTuple(args, []interface{}{&pathname, &modulus})
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(pathname, catalog.Opts{
		Modulus: modulus,
	})
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(pyCatalog{cat}), nil
}

type pyCatalog struct {
	*catalog.KnotSet
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

// getKnot accepts either a Knot object or a knot expression string (e.g. "p3: 0 1 15 2").
// Expressions resolve to the catalogued knot if there is one.
func (cat pyCatalog) getKnot(obj py.Object) (*knot.Knot, error) {
	switch v := obj.(type) {
	case pyKnot:
		return v.Knot, nil
	case py.String:
		x, err := expr.Parse(string(v))
		if err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
		k := x.Knot()
		if match, found := cat.Retrieve(k.Angles, k.Parity); found {
			return match, nil
		}
		k.Angles.Normalize(cat.Modulus())
		k.Cost = cat.Penalty()
		return k, nil
	}
	return nil, py.ExceptionNewf(py.TypeError, "expected Knot or str (got %v)", obj.Type().Name)
}

func py_Catalog_NumKnots(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyCatalog).NumKnots()), nil
}

func py_Catalog_Modulus(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyCatalog).Modulus()), nil
}

func py_Catalog_Retrieve(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var exprStr string
	if err := py.LoadTuple(args, []interface{}{&exprStr}); err != nil {
		return nil, err
	}
	x, err := expr.Parse(exprStr)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	k, found := cat.Retrieve(x.Angles(), x.ParityOr(0))
	if !found {
		return py.None, nil
	}
	return py.Object(pyKnot{Knot: k}), nil
}

func py_Catalog_Knots(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) == 0 {
		return wrapKnots(cat.AllKnots()), nil
	}
	parity, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}
	return wrapKnots(cat.Bucket(int32(parity))), nil
}

func py_Catalog_Adjacent(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Adjacent() takes 1 argument (%d given)", len(args))
	}
	k, err := cat.getKnot(args[0])
	if err != nil {
		return nil, err
	}
	adj := cat.Adjacent(k)
	neighbors := make(py.Tuple, len(adj))
	for i, nb := range adj {
		neighbors[i] = wrapNeighbor(nb)
	}
	return neighbors, nil
}

func py_Catalog_Distance(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) != 2 {
		return nil, py.ExceptionNewf(py.TypeError, "Distance() takes 2 arguments (%d given)", len(args))
	}
	a, err := cat.getKnot(args[0])
	if err != nil {
		return nil, err
	}
	b, err := cat.getKnot(args[1])
	if err != nil {
		return nil, err
	}
	d, err := cat.Distance(a, b)
	if err != nil && !errors.Is(err, knot.ErrIncompatibleClass) {
		return nil, py.ExceptionNewf(py.ValueError, "Distance(): %v", err)
	}
	return py.Int(d), nil
}

// Arg 1 (Knot or str): seed
// Arg 2 (int): radius
// kwargs: prune_unknown (bool), max_nodes (int)
func py_Catalog_Explore(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Explore() requires a seed")
	}
	seed, err := cat.getKnot(args[0])
	if err != nil {
		return nil, err
	}

	opts := walker.ExploreOpts{}
	if len(args) > 1 {
		radius, err := py.GetInt(args[1])
		if err != nil {
			return nil, err
		}
		opts.Radius = int(radius)
	}
	if err = loadKwarg(kwargs, "prune_unknown", &opts.PruneUnknown); err != nil {
		return nil, err
	}
	if err = loadKwarg(kwargs, "max_nodes", &opts.MaxNodes); err != nil {
		return nil, err
	}

	g, err := walker.Explore(cat, seed, opts)
	if g == nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(&pyGraph{g}), nil
}

func loadKwarg(kwargs py.StringDict, key string, dst interface{}) error {
	if _, exists := kwargs[key]; !exists {
		return nil
	}
	return py.LoadAttr(kwargs, key, dst)
}

// Arg 1 (int): parity (negative for any)
// Arg 2 (float, optional): max cost (exclusive), 0 for no bound
func py_Catalog_Select(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	sel := knot.DefaultSelector

	var parity int32 = -1
	if err := py.LoadTuple(args, []interface{}{&parity, &sel.MaxCost}); err != nil {
		return nil, err
	}
	if parity >= 0 {
		sel.Parity = parity
		sel.AnyParity = false
	}

	next := cat.Select(sel)
	return wrapKnotStream(next), nil
}

// AdjacencySizes(good) -> (total, distinct, mean)
func py_Catalog_AdjacencySizes(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "AdjacencySizes() takes 1 argument (%d given)", len(args))
	}
	good, ok := args[0].(pyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog (got %v)", args[0].Type().Name)
	}
	stats := analysis.AdjacencySizes(cat.KnotSet, good.KnotSet, analysis.GoodThreshold)
	return py.Tuple{py.Int(stats.Total), py.Int(stats.Distinct), py.Float(stats.Mean)}, nil
}

type pyGraph struct {
	*walker.Graph
}

func (g *pyGraph) Type() *py.Type {
	return pyGraphType
}

func py_Graph_NumNodes(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyGraph).NodeCount()), nil
}

func py_Graph_Nodes(self py.Object, args py.Tuple) (py.Object, error) {
	g := self.(*pyGraph)
	nodes := make(py.Tuple, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = pyKnot{n.Knot, n.Unknown}
	}
	return nodes, nil
}

func py_Graph_Edges(self py.Object, args py.Tuple) (py.Object, error) {
	g := self.(*pyGraph)
	edges := make(py.Tuple, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = py.Tuple{py.Int(e.A), py.Int(e.B)}
	}
	return edges, nil
}

func py_Graph_WriteCSV(self py.Object, args py.Tuple) (py.Object, error) {
	g := self.(*pyGraph)
	var pathname string
	if err := py.LoadTuple(args, []interface{}{&pathname}); err != nil {
		return nil, err
	}

	writer, err := openOutput(pathname)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	if err = g.WriteCSV(writer); err != nil {
		return nil, py.ExceptionNewf(py.OSError, "%v", err)
	}
	return py.None, nil
}

func py_Graph_Stream(self py.Object, args py.Tuple) (py.Object, error) {
	g := self.(*pyGraph)
	return wrapKnotStream(g.Stream()), nil
}

type knotStream struct {
	*knot.KnotStream
}

func (stream knotStream) Type() *py.Type {
	return pyKnotStreamType
}

func wrapKnotStream(stream *knot.KnotStream) py.Object {
	return py.Object(knotStream{stream})
}

func py_KnotStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(knotStream)
	count := stream.PullAll()
	return py.Int(count), nil
}

func py_KnotStream_Collect(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(knotStream)
	return wrapKnots(stream.Collect()), nil
}

func py_KnotStream_DropDupes(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(knotStream)
	next := stream.AddTo(knot.NewDropDupes())
	return wrapKnotStream(next), nil
}

type echoToWriter struct {
	stdout *os.File
	to     io.WriteCloser
}

func (echo *echoToWriter) Write(buf []byte) (int, error) {
	if echo.to == nil {
		return echo.stdout.Write(buf)
	}
	return echo.to.Write(buf)
}

func (echo *echoToWriter) Close() error {
	if echo.to != nil {
		return echo.to.Close()
	}
	return nil
}

func openOutput(pathname string) (io.WriteCloser, error) {
	writer := &echoToWriter{
		stdout: os.Stdout,
	}
	if len(pathname) > 0 {
		os.MkdirAll(filepath.Dir(pathname), 0700)

		file, err := os.OpenFile(pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		writer.to = file
	}
	return writer, nil
}

var gOutCount = int32(0)

// Print([label], file=pathname, cost=bool, ranking=bool)
func py_KnotStream_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(knotStream)
	var pathname string

	opts := knot.DefaultPrintOpts

	py.LoadTuple(args, []interface{}{&opts.Label})
	if opts.Label == "" {
		loadKwarg(kwargs, "label", &opts.Label)
	}

	count := atomic.AddInt32(&gOutCount, 1)
	if opts.Label == "" {
		opts.Label = fmt.Sprintf("out[%d]", count)
	}

	loadKwarg(kwargs, "cost", &opts.Cost)
	loadKwarg(kwargs, "ranking", &opts.Ranking)
	loadKwarg(kwargs, "file", &pathname)

	writer, err := openOutput(pathname)
	if err != nil {
		return nil, err
	}

	next := stream.Print(writer, opts)
	return wrapKnotStream(next), nil
}

func init() {

	/////////////////////////////////
	// Knot
	{
		pyKnotType.Dict["Angles"] = py.MustNewMethod("Angles", py_Knot_Angles, 0, "returns this Knot's angles as a tuple")
		pyKnotType.Dict["Cost"] = py.MustNewMethod("Cost", py_Knot_Cost, 0, "")
		pyKnotType.Dict["Parity"] = py.MustNewMethod("Parity", py_Knot_Parity, 0, "")
		pyKnotType.Dict["Ranking"] = py.MustNewMethod("Ranking", py_Knot_Ranking, 0, "1-based cost ranking within the catalogue (0 if uncatalogued)")
		pyKnotType.Dict["Unknown"] = py.MustNewMethod("Unknown", py_Knot_Unknown, 0, "True if this Knot is a placeholder for an uncatalogued neighbor")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["NumKnots"] = py.MustNewMethod("NumKnots", py_Catalog_NumKnots, 0, "")
		pyCatalogType.Dict["Modulus"] = py.MustNewMethod("Modulus", py_Catalog_Modulus, 0, "")
		pyCatalogType.Dict["Retrieve"] = py.MustNewMethod("Retrieve", py_Catalog_Retrieve, 0, "returns the Knot for the given expression, or None")
		pyCatalogType.Dict["Knots"] = py.MustNewMethod("Knots", py_Catalog_Knots, 0, "returns all Knots of the given parity (or all Knots)")
		pyCatalogType.Dict["Adjacent"] = py.MustNewMethod("Adjacent", py_Catalog_Adjacent, 0, "returns the Knots one move away")
		pyCatalogType.Dict["Distance"] = py.MustNewMethod("Distance", py_Catalog_Distance, 0, "returns the move count between two Knots (-1 if of different parity)")
		pyCatalogType.Dict["Explore"] = py.MustNewMethod("Explore", py_Catalog_Explore, 0, "walks the neighborhood of a seed Knot out to the given radius")
		pyCatalogType.Dict["Select"] = py.MustNewMethod("Select", py_Catalog_Select, 0, "")
		pyCatalogType.Dict["AdjacencySizes"] = py.MustNewMethod("AdjacencySizes", py_Catalog_AdjacencySizes, 0, "")
	}

	/////////////////////////////////
	// Graph
	{
		pyGraphType.Dict["NumNodes"] = py.MustNewMethod("NumNodes", py_Graph_NumNodes, 0, "")
		pyGraphType.Dict["Nodes"] = py.MustNewMethod("Nodes", py_Graph_Nodes, 0, "")
		pyGraphType.Dict["Edges"] = py.MustNewMethod("Edges", py_Graph_Edges, 0, "returns (a, b) node index pairs")
		pyGraphType.Dict["WriteCSV"] = py.MustNewMethod("WriteCSV", py_Graph_WriteCSV, 0, "")
		pyGraphType.Dict["Stream"] = py.MustNewMethod("Stream", py_Graph_Stream, 0, "")
	}

	/////////////////////////////////
	// KnotStream
	{
		pyKnotStreamType.Dict["Go"] = py.MustNewMethod("Go", py_KnotStream_Go, 0, "counts the number of knots output from the KnotStream")
		pyKnotStreamType.Dict["Collect"] = py.MustNewMethod("Collect", py_KnotStream_Collect, 0, "")
		pyKnotStreamType.Dict["Print"] = py.MustNewMethod("Print", py_KnotStream_Print, 0, "prints each knot from the KnotStream")
		pyKnotStreamType.Dict["DropDupes"] = py.MustNewMethod("DropDupes", py_KnotStream_DropDupes, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Load", py_Load, 0, "loads a knot catalogue report"),
		}

		globals := py.StringDict{
			"LIB_VERSION":     py.String(LIB_VERSION),
			"PENALTY_COST":    py.Float(knot.PenaltyCost),
			"DEFAULT_MODULUS": py.Int(knot.DefaultModulus),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyknot",
				Doc:  "knot catalogue gpython module",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
