package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ecostats/dynocc-go/internal/analysis"
	"github.com/ecostats/dynocc-go/internal/colext"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/errors"
)

// sampleResult fabricates a complete pipeline result without running any
// fits; the writers only read scalar fields.
func sampleResult(t *testing.T) *analysis.PipelineResult {
	t.Helper()

	design := colext.SurveyDesign{Sites: 3, Years: 3, Occasions: 1}
	ds, err := colext.NewDataset(design, mat.NewDense(3, 3, []float64{
		1, 0, 1,
		0, 1, 0,
		0, 0, 1,
	}), nil, nil, nil)
	require.NoError(t, err)

	ranking := []analysis.RankedModel{
		{Rank: 1, Name: "true", Formula: "psi(elev)gam(precip)phi(forest)p(.)", K: 7, LogLik: -120.5, AIC: 255.0, DeltaAIC: 0, Weight: 0.62},
		{Rank: 2, Name: "global", Formula: "psi(elev)gam(precip)phi(forest)p(effort)", K: 8, LogLik: -120.1, AIC: 256.2, DeltaAIC: 1.2, Weight: 0.34},
		{Rank: 3, Name: "null", Formula: "psi(.)gam(.)phi(.)p(.)", K: 4, LogLik: -131.0, AIC: 270.0, DeltaAIC: 15.0, Weight: 0.04},
	}
	battery := &analysis.Battery{Outcomes: []analysis.FitOutcome{
		{Spec: colext.ModelSpec{Name: "true"}},
		{Spec: colext.ModelSpec{Name: "global"}},
		{Spec: colext.ModelSpec{Name: "null"}},
	}}

	trueCounts := []int{12, 11, 10}
	trajectory := analysis.BuildTrajectory(
		trueCounts,
		[]int{9, 8, 8},
		[]float64{11.6, 10.9, 10.1},
		[]float64{1.2, 1.0, 0.9},
	)

	return &analysis.PipelineResult{
		Design:     design,
		Dataset:    ds,
		TrueCounts: trueCounts,
		TrueStates: mat.NewDense(3, 3, []float64{1, 0, 1, 1, 1, 0, 0, 0, 1}),
		Battery:    battery,
		Ranking:    ranking,
		Selected:   "true",
		LRT:        &colext.LRTResult{Simple: "true", Rich: "global", Statistic: 0.8, DF: 1, PValue: 0.371},
		GOF: &colext.GOFResult{
			Model:  "true",
			Trials: 5,
			Stats: []colext.StatResult{
				{Name: "SSE", Observed: 12.5, Simulated: []float64{10, 11, 12, 13, 14}, PValue: 0.5},
				{Name: "Freeman-Tukey", Observed: 6.25, Simulated: []float64{5, 6, 7, 8, 9}, PValue: 0.33},
			},
		},
		Trajectory: trajectory,
		Elapsed:    1500 * time.Millisecond,
	}
}

func readArtifact(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestWriteRankingTable(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	path := filepath.Join(t.TempDir(), "ranking")
	require.NoError(t, WriteRankingTable(result.Ranking, path))

	content := readArtifact(t, path+".txt")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Rank"))
	assert.Contains(t, lines[1], "true")
	assert.Contains(t, lines[3], "null")
}

func TestWriteRankingCsv(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	path := filepath.Join(t.TempDir(), "ranking.csv")
	require.NoError(t, WriteRankingCsv(result.Ranking, path))

	content := readArtifact(t, path)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "rank,model,formula,k,loglik,aic,delta_aic,weight", lines[0])
	for _, line := range lines[1:] {
		assert.Len(t, strings.Split(line, ","), 8)
	}
	assert.True(t, strings.HasPrefix(lines[1], "1,true,"))
}

func TestWriteLRT(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	dir := t.TempDir()

	require.NoError(t, WriteLRTTable(result.LRT, filepath.Join(dir, "lrt")))
	content := readArtifact(t, filepath.Join(dir, "lrt.txt"))
	assert.Contains(t, content, "Chi-square:   0.8000")
	assert.Contains(t, content, "Simple model: true")

	require.NoError(t, WriteLRTCsv(result.LRT, filepath.Join(dir, "lrt")))
	content = readArtifact(t, filepath.Join(dir, "lrt.csv"))
	assert.True(t, strings.HasPrefix(content, "simple,rich,statistic,df,p_value\n"))
	assert.Contains(t, content, "true,global,0.800000,1,0.371000")
}

func TestWriteGOF(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	dir := t.TempDir()

	require.NoError(t, WriteGOFTable(result.GOF, filepath.Join(dir, "gof")))
	content := readArtifact(t, filepath.Join(dir, "gof.txt"))
	assert.Contains(t, content, "Model: true")
	assert.Contains(t, content, "SSE")
	assert.Contains(t, content, "Freeman-Tukey")

	require.NoError(t, WriteGOFCsv(result.GOF, filepath.Join(dir, "gof")))
	content = readArtifact(t, filepath.Join(dir, "gof.csv"))
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "model,statistic,observed,p_value,trials,failed", lines[0])
}

func TestWriteTrajectory(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	dir := t.TempDir()

	require.NoError(t, WriteTrajectoryCsv(result.Trajectory, filepath.Join(dir, "trajectory")))
	content := readArtifact(t, filepath.Join(dir, "trajectory.csv"))
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "year,series,count,std_err", lines[0])
	// True rows carry no standard error, Expected rows do.
	assert.Equal(t, "1,True,12.000000,NA", lines[1])
	assert.Equal(t, "1,Expected,11.600000,1.200000", lines[7])

	require.NoError(t, WriteTrajectoryTable(result.Trajectory, filepath.Join(dir, "trajectory")))
	content = readArtifact(t, filepath.Join(dir, "trajectory.txt"))
	assert.Contains(t, content, "Observed")
	assert.Contains(t, content, "NA")
}

func TestOpenOutputDefaultsToStdout(t *testing.T) {
	w, closer, resolved, err := openOutput("", ".txt")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)
	assert.Empty(t, resolved)
	assert.NoError(t, closer())
}

func TestRenderTrajectoryHTML(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	path := filepath.Join(t.TempDir(), "trajectory")
	require.NoError(t, RenderTrajectoryHTML(result.Trajectory, path, 640, 400))

	content := readArtifact(t, path+".html")
	assert.Contains(t, content, "echarts")
	assert.Contains(t, content, "Occupancy trajectory")
	for _, series := range []string{"True", "Observed", "Expected"} {
		assert.Contains(t, content, series)
	}
}

func TestRenderTrajectoryPNG(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	path := filepath.Join(t.TempDir(), "trajectory")
	require.NoError(t, RenderTrajectoryPNG(result.Trajectory, path, 640, 400))

	raw, err := os.ReadFile(path + ".png")
	require.NoError(t, err)
	require.Greater(t, len(raw), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}

func TestRenderEmptyTrajectory(t *testing.T) {
	t.Parallel()

	err := RenderTrajectoryPNG(nil, filepath.Join(t.TempDir(), "t"), 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryChart))

	err = RenderTrajectoryHTML(nil, filepath.Join(t.TempDir(), "t"), 0, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryChart))
}

func TestBuildSummary(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	settings := &conf.Settings{}
	settings.Main.Name = "TestNode"
	settings.Simulation.Seed = 102022
	settings.GOF.Seed = 13973
	settings.Bootstrap.Seed = 4587

	summary := BuildSummary(settings, result)

	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, "TestNode", summary.Node)
	assert.Equal(t, int64(1500), summary.ElapsedMs)
	assert.Equal(t, uint64(102022), summary.Seeds.Simulation)
	assert.Equal(t, "true", summary.Selected)
	require.Len(t, summary.Models, 3)
	assert.Equal(t, "true", summary.Models[0].Name)
	require.NotNil(t, summary.LRT)
	assert.Equal(t, 1, summary.LRT.DF)
	require.NotNil(t, summary.GOF)
	require.Len(t, summary.GOF.Stats, 2)

	require.Len(t, summary.Trajectory, 9)
	assert.Nil(t, summary.Trajectory[0].StdErr)
	require.NotNil(t, summary.Trajectory[6].StdErr)
	assert.InDelta(t, 1.2, *summary.Trajectory[6].StdErr, 1e-12)
}

func TestWriteSummaryRoundTrip(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	settings := &conf.Settings{}
	settings.Main.Name = "TestNode"

	path := filepath.Join(t.TempDir(), "summary")
	require.NoError(t, WriteSummary(settings, result, path))

	raw, err := os.ReadFile(path + ".json")
	require.NoError(t, err)

	var decoded RunSummary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "TestNode", decoded.Node)
	assert.Equal(t, "true", decoded.Selected)
	assert.Len(t, decoded.Models, 3)
	assert.Len(t, decoded.Trajectory, 9)
}

func TestWriteAll(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	dir := t.TempDir()

	settings := &conf.Settings{}
	settings.Output.File.Enabled = true
	settings.Output.File.Path = dir
	settings.Output.File.Type = "csv"
	settings.Output.Chart.Enabled = true
	settings.Output.Chart.Format = "both"
	settings.Output.Dataset.Enabled = true
	settings.Output.Summary.Enabled = true

	require.NoError(t, WriteAll(settings, result))

	for _, name := range []string{
		"ranking.csv", "lrt.csv", "gof.csv", "trajectory.csv",
		"trajectory.png", "trajectory.html", "summary.json",
		filepath.Join("dataset", "design.csv"),
		filepath.Join("dataset", "detections.csv"),
		filepath.Join("dataset", "truth.csv"),
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "missing artifact %s", name)
	}
}

func TestWriteAllSkipsMissingStages(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	result.LRT = nil
	result.GOF = nil
	dir := t.TempDir()

	settings := &conf.Settings{}
	settings.Output.File.Enabled = true
	settings.Output.File.Path = dir
	settings.Output.File.Type = "table"

	require.NoError(t, WriteAll(settings, result))

	_, err := os.Stat(filepath.Join(dir, "ranking.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "lrt.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "gof.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteAllRejectsUnknownChartFormat(t *testing.T) {
	t.Parallel()

	result := sampleResult(t)
	settings := &conf.Settings{}
	settings.Output.Chart.Enabled = true
	settings.Output.Chart.Format = "svg"
	settings.Output.File.Path = t.TempDir()

	err := WriteAll(settings, result)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}
