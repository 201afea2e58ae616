package main

import (
	"fmt"
	"io"
	"os"

	"github.com/2x3systems/goknot/knot"
	"github.com/2x3systems/goknot/libknot/analysis"
	"github.com/2x3systems/goknot/libknot/catalog"
	"github.com/2x3systems/goknot/libknot/expr"
	"github.com/2x3systems/goknot/libknot/walker"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

func run(cfg Config, out io.Writer) (err error) {
	if cfg.Catalog == "" {
		return errors.New("no catalogue given (see --catalog)")
	}

	cat, err := catalog.Load(cfg.Catalog, catalog.Opts{
		Modulus: cfg.Modulus,
		Penalty: cfg.Penalty,
	})
	if err != nil {
		return err
	}

	var write func(io.Writer) error
	switch {
	case cfg.Good != "":
		penalty := cat.Penalty()
		good, err := catalog.Load(cfg.Good, catalog.Opts{
			Modulus: cat.Modulus(),
			Penalty: &penalty,
		})
		if err != nil {
			return err
		}
		write = func(w io.Writer) error {
			return writeStats(cat, good, w)
		}

	case cfg.DistanceThreshold >= 0:
		write = walker.DistanceGraph(cat.AllKnots(), cat.Modulus(), cfg.DistanceThreshold).WriteCSV

	default:
		seed, err := resolveSeed(cat, cfg.Seed)
		if err != nil {
			return err
		}
		g, err := walker.Explore(cat, seed, walker.ExploreOpts{
			Radius:       cfg.Radius,
			PruneUnknown: cfg.PruneUnknown,
			MaxNodes:     cfg.MaxNodes,
		})
		if g == nil {
			return err
		}
		if err != nil {
			klog.Warningf("exploring from %v: %v", seed, err)
		}
		write = g.WriteCSV
	}

	// The output file is only created once there is something to write
	if cfg.Out != "" {
		file, createErr := os.Create(cfg.Out)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil && err == nil {
				err = errors.Wrapf(closeErr, "closing %q", cfg.Out)
			}
		}()
		out = file
	}

	return write(out)
}

// resolveSeed parses a seed expression and resolves it in cat.
// An empty expression selects the lowest cost knot; an uncatalogued expression becomes a placeholder.
func resolveSeed(cat *catalog.KnotSet, seedExpr string) (*knot.Knot, error) {
	if seedExpr == "" {
		for _, k := range cat.AllKnots() {
			if k.Ranking == 1 {
				return k, nil
			}
		}
		return nil, errors.Wrap(knot.ErrMalformedCatalogue, "catalogue is empty")
	}

	x, err := expr.Parse(seedExpr)
	if err != nil {
		return nil, err
	}
	seed := x.Knot()
	if len(seed.Angles) != cat.AngleCount() {
		return nil, errors.Wrapf(knot.ErrLengthMismatch, "seed %v has %d angles (catalogue has %d)", seed, len(seed.Angles), cat.AngleCount())
	}
	if match, found := cat.Retrieve(seed.Angles, seed.Parity); found {
		return match, nil
	}

	klog.Warningf("seed %v is not catalogued", seed)
	seed.Angles.Normalize(cat.Modulus())
	seed.Cost = cat.Penalty()
	return seed, nil
}

func writeStats(full, good *catalog.KnotSet, out io.Writer) error {
	stats := analysis.AdjacencySizes(full, good, analysis.GoodThreshold)
	pairs := analysis.GoodPairs(good, analysis.GoodThreshold)
	_, maxDist := analysis.NearestGood(full, good)

	_, err := fmt.Fprintf(out,
		"good_adjacent,%d\ndistinct_adjacent,%d\nmean_good_adjacent,%g\ngood_pairs,%d\nmax_distance_from_good,%d\n",
		stats.Total, stats.Distinct, stats.Mean, len(pairs), maxDist)
	return err
}
