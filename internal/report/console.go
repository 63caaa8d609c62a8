// console.go prints the run summary to the terminal.
package report

import (
	"fmt"
	"math"

	"github.com/ecostats/dynocc-go/internal/analysis"
)

// PrintSummary writes a human-readable digest of the pipeline result to
// stdout: the model ranking, the likelihood ratio test, goodness of fit and
// the yearly occupancy comparison.
func PrintSummary(result *analysis.PipelineResult) {
	d := result.Design
	fmt.Printf("\n🦉 Dynamic occupancy analysis: %d sites, %d years, %d occasions\n",
		d.Sites, d.Years, d.Occasions)

	fmt.Printf("\n📊 Model selection (%d candidates, %d converged)\n",
		len(result.Battery.Outcomes), len(result.Ranking))
	fmt.Printf("Rank  Model    Formula                                      K     logLik        AIC    dAIC  weight\n")
	fmt.Printf("────  ───────  ─────────────────────────────────────────  ───  ─────────  ─────────  ──────  ──────\n")
	for _, row := range result.Ranking {
		fmt.Printf("%4d  %-7s  %-41s  %3d  %9.2f  %9.2f  %6.2f  %6.3f\n",
			row.Rank, row.Name, row.Formula, row.K, row.LogLik, row.AIC, row.DeltaAIC, row.Weight)
	}
	for _, name := range result.Battery.Failed() {
		fmt.Printf("      %-7s  ❌ did not converge\n", name)
	}

	switch {
	case result.LRT != nil:
		verdict := "no evidence the richer model is needed"
		if result.LRT.PValue < 0.05 {
			verdict = "the richer model fits better"
		}
		fmt.Printf("\n🔬 Likelihood ratio test: %s vs %s\n", result.LRT.Simple, result.LRT.Rich)
		fmt.Printf("   chi-square = %.3f (df %d), p = %.3f: %s\n",
			result.LRT.Statistic, result.LRT.DF, result.LRT.PValue, verdict)
	case result.LRTErr != nil:
		fmt.Printf("\n🔬 Likelihood ratio test: ❌ unavailable (%v)\n", result.LRTErr)
	}

	switch {
	case result.GOF != nil:
		fmt.Printf("\n🎯 Goodness of fit for model %q (%d bootstrap trials)\n",
			result.GOF.Model, result.GOF.Trials)
		for i := range result.GOF.Stats {
			stat := &result.GOF.Stats[i]
			fmt.Printf("   %-14s observed = %.3f, p = %.3f\n", stat.Name, stat.Observed, stat.PValue)
		}
	case result.GOFErr != nil:
		fmt.Printf("\n🎯 Goodness of fit: ❌ unavailable (%v)\n", result.GOFErr)
	}

	fmt.Printf("\n📈 Occupied sites per year (model %q)\n", result.Selected)
	printTrajectory(result.Trajectory, result.TrueCounts != nil)

	fmt.Printf("\n⏱️  Completed in %.1f s\n", result.Elapsed.Seconds())
}

// printTrajectory pivots the long-format rows into one line per year.
func printTrajectory(rows []analysis.TrajectoryRow, withTruth bool) {
	years := 0
	for _, row := range rows {
		if row.Year > years {
			years = row.Year
		}
	}

	type yearCells struct {
		truth    string
		observed string
		expected string
	}
	cells := make([]yearCells, years)
	for i := range cells {
		cells[i] = yearCells{truth: missingCell, observed: missingCell, expected: missingCell}
	}
	for _, row := range rows {
		cell := &cells[row.Year-1]
		switch row.Series {
		case analysis.SeriesTrue:
			cell.truth = fmt.Sprintf("%.0f", row.Count)
		case analysis.SeriesObserved:
			cell.observed = fmt.Sprintf("%.0f", row.Count)
		case analysis.SeriesExpected:
			if math.IsNaN(row.StdErr) {
				cell.expected = fmt.Sprintf("%.1f", row.Count)
			} else {
				cell.expected = fmt.Sprintf("%.1f ± %.1f", row.Count, row.StdErr)
			}
		}
	}

	if withTruth {
		fmt.Printf("Year   True  Observed  Expected\n")
		fmt.Printf("────  ─────  ────────  ──────────────\n")
		for year, cell := range cells {
			fmt.Printf("%4d  %5s  %8s  %s\n", year+1, cell.truth, cell.observed, cell.expected)
		}
		return
	}
	fmt.Printf("Year  Observed  Expected\n")
	fmt.Printf("────  ────────  ──────────────\n")
	for year, cell := range cells {
		fmt.Printf("%4d  %8s  %s\n", year+1, cell.observed, cell.expected)
	}
}
