package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2x3systems/goknot/knot"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
num_angles: 4
knots:
  - angles: [0, 0]
    total_cost: 1
    angle_parity: 0
  - angles: [1, 3]
    total_cost: 2
    angle_parity: 0
`

func writeFile(t *testing.T, dir, name, contents string) string {
	pathname := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(pathname, []byte(contents), 0600))
	return pathname
}

func TestLoadConfig(t *testing.T) {
	cfg, args, err := LoadConfig([]string{"--catalog", "knots.json", "--prune-unknown", "script.py"}, nil)
	require.NoError(t, err)
	require.Equal(t, "knots.json", cfg.Catalog)
	require.True(t, cfg.PruneUnknown)
	require.Equal(t, 1, cfg.Radius)
	require.Equal(t, -1, cfg.DistanceThreshold)
	require.Nil(t, cfg.Penalty)
	require.Equal(t, []string{"script.py"}, args)

	cfg, _, err = LoadConfig([]string{"--penalty", "0"}, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.Penalty)
	require.Equal(t, 0.0, *cfg.Penalty)

	t.Setenv("GOKNOT_RADIUS", "3")
	t.Setenv("GOKNOT_MAX_NODES", "50")
	cfg, _, err = LoadConfig(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Radius)
	require.Equal(t, 50, cfg.MaxNodes)

	// flags win over the environment
	cfg, _, err = LoadConfig([]string{"--radius=2"}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Radius)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "goknot.yaml", "catalog: /data/all_knots.json\nseed: \"p3: 0 1 15 2\"\nradius: 4\n")

	cfg, _, err := LoadConfig([]string{"--config", configPath}, nil)
	require.NoError(t, err)
	require.Equal(t, "/data/all_knots.json", cfg.Catalog)
	require.Equal(t, "p3: 0 1 15 2", cfg.Seed)
	require.Equal(t, 4, cfg.Radius)

	_, _, err = LoadConfig([]string{"--config", filepath.Join(dir, "missing.yaml")}, nil)
	require.Error(t, err)
}

func TestRunExplore(t *testing.T) {
	dir := t.TempDir()
	catPath := writeFile(t, dir, "knots.yaml", testCatalog)

	var out strings.Builder
	err := run(Config{Catalog: catPath, Radius: 1, DistanceThreshold: -1}, &out)
	require.NoError(t, err)
	require.Equal(t, `node,shell,ranking,cost,parity,angles,unknown
0,0,1,1,0,"[0 0]",false
1,1,2,2,0,"[1 3]",false
2,1,0,3,0,"[3 1]",true
edge,a,b
0,0,1
1,0,2
`, out.String())

	// An uncatalogued seed is explored from a placeholder
	out.Reset()
	err = run(Config{Catalog: catPath, Seed: "6 2", Radius: 0, DistanceThreshold: -1}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), `0,0,0,3,0,"[2 2]",true`)

	err = run(Config{Catalog: catPath, Seed: "1 2 3", DistanceThreshold: -1}, &out)
	require.ErrorIs(t, err, knot.ErrLengthMismatch)

	err = run(Config{Catalog: catPath, Seed: "p0:", DistanceThreshold: -1}, &out)
	require.ErrorIs(t, err, knot.ErrBadExpr)

	err = run(Config{Catalog: catPath, Radius: -1, DistanceThreshold: -1}, &out)
	require.ErrorIs(t, err, knot.ErrBadRadius)

	err = run(Config{DistanceThreshold: -1}, &out)
	require.Error(t, err)
}

func TestRunDistanceGraph(t *testing.T) {
	dir := t.TempDir()
	catPath := writeFile(t, dir, "knots.yaml", testCatalog)
	outPath := filepath.Join(dir, "graph.csv")

	err := run(Config{Catalog: catPath, DistanceThreshold: 1, Out: outPath}, nil)
	require.NoError(t, err)

	buf, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(buf), "edge,a,b\n0,0,1\n"))
}

func TestRunPenalty(t *testing.T) {
	dir := t.TempDir()
	catPath := writeFile(t, dir, "knots.yaml", testCatalog)

	zero := 0.0
	var out strings.Builder
	err := run(Config{Catalog: catPath, Seed: "2 2", Radius: 0, Penalty: &zero, DistanceThreshold: -1}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), `0,0,0,0,0,"[2 2]",true`)

	negative := -2.0
	err = run(Config{Catalog: catPath, Penalty: &negative, DistanceThreshold: -1}, &out)
	require.ErrorIs(t, err, knot.ErrMalformedCatalogue)
}

func TestRunFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	catPath := writeFile(t, dir, "knots.yaml", testCatalog)
	outPath := filepath.Join(dir, "graph.csv")

	err := run(Config{Catalog: filepath.Join(dir, "missing.yaml"), DistanceThreshold: -1, Out: outPath}, nil)
	require.Error(t, err)
	_, err = os.Stat(outPath)
	require.True(t, os.IsNotExist(err))

	err = run(Config{Catalog: catPath, Good: filepath.Join(dir, "missing.json"), Out: outPath}, nil)
	require.Error(t, err)
	_, err = os.Stat(outPath)
	require.True(t, os.IsNotExist(err))

	err = run(Config{Catalog: catPath, Seed: "1 2 3", DistanceThreshold: -1, Out: outPath}, nil)
	require.ErrorIs(t, err, knot.ErrLengthMismatch)
	_, err = os.Stat(outPath)
	require.True(t, os.IsNotExist(err))

	// An unwritable output is reported
	err = run(Config{Catalog: catPath, DistanceThreshold: 1, Out: filepath.Join(dir, "no", "such", "dir.csv")}, nil)
	require.Error(t, err)
}

func TestRunStats(t *testing.T) {
	dir := t.TempDir()
	catPath := writeFile(t, dir, "knots.yaml", testCatalog)
	goodPath := writeFile(t, dir, "good.json", `{"num_angles": 4, "knots": [{"angles": [0, 0], "total_cost": 1, "angle_parity": 0}]}`)

	var out strings.Builder
	err := run(Config{Catalog: catPath, Good: goodPath}, &out)
	require.NoError(t, err)
	require.Equal(t, "good_adjacent,2\ndistinct_adjacent,2\nmean_good_adjacent,2\ngood_pairs,0\nmax_distance_from_good,1\n", out.String())
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	catPath := writeFile(t, dir, "knots.yaml", testCatalog)
	scriptPath := writeFile(t, dir, "explore.py", `
import _pyknot
cat = _pyknot.Load("`+catPath+`")
g = cat.Explore("0 0", 1)
assert g.NumNodes() == 3
`)
	require.True(t, filepath.IsAbs(scriptPath))
	require.NoError(t, go_gpython(scriptPath))

	badPath := writeFile(t, dir, "bad.py", "assert False\n")
	require.Error(t, go_gpython(badPath))
}
