// tables.go renders the pipeline result tables, each in a plain text and a CSV
// flavor. Every writer directs output to stdout when the filename is empty.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/ecostats/dynocc-go/internal/analysis"
	"github.com/ecostats/dynocc-go/internal/colext"
)

// missingCell marks an unavailable value in table and CSV output.
const missingCell = "NA"

// openOutput resolves the output destination the way the observation writers
// do: an empty filename selects stdout, otherwise the file is created with the
// wanted extension appended when missing. The returned closer is a no-op for
// stdout.
func openOutput(filename, ext string) (io.Writer, func() error, string, error) {
	if filename == "" {
		return os.Stdout, func() error { return nil }, "", nil
	}
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	return file, file.Close, filename, nil
}

// WriteRankingTable writes the AIC model ranking as a column-aligned text
// table. If the filename is an empty string, it writes to stdout.
func WriteRankingTable(ranking []analysis.RankedModel, filename string) error {
	w, closer, resolved, err := openOutput(filename, ".txt")
	if err != nil {
		return err
	}
	defer closer()

	header := fmt.Sprintf("%-4s  %-8s  %-42s  %2s  %10s  %10s  %8s  %7s\n",
		"Rank", "Model", "Formula", "K", "logLik", "AIC", "deltaAIC", "weight")
	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range ranking {
		line := fmt.Sprintf("%-4d  %-8s  %-42s  %2d  %10.3f  %10.3f  %8.3f  %7.4f\n",
			row.Rank, row.Name, row.Formula, row.K, row.LogLik, row.AIC, row.DeltaAIC, row.Weight)
		if _, err = w.Write([]byte(line)); err != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write ranking row: %w", err)
	}
	logWritten(resolved)
	return nil
}

// WriteRankingCsv writes the AIC model ranking in CSV format. If the filename
// is an empty string, it writes to stdout.
func WriteRankingCsv(ranking []analysis.RankedModel, filename string) error {
	w, closer, resolved, err := openOutput(filename, ".csv")
	if err != nil {
		return err
	}
	defer closer()

	header := "rank,model,formula,k,loglik,aic,delta_aic,weight\n"
	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range ranking {
		line := fmt.Sprintf("%d,%s,%s,%d,%.6f,%.6f,%.6f,%.6f\n",
			row.Rank, row.Name, row.Formula, row.K, row.LogLik, row.AIC, row.DeltaAIC, row.Weight)
		if _, err = w.Write([]byte(line)); err != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write ranking row: %w", err)
	}
	logWritten(resolved)
	return nil
}

// WriteLRTTable writes the likelihood ratio test result as a small text block.
// If the filename is an empty string, it writes to stdout.
func WriteLRTTable(lrt *colext.LRTResult, filename string) error {
	w, closer, resolved, err := openOutput(filename, ".txt")
	if err != nil {
		return err
	}
	defer closer()

	content := fmt.Sprintf("Likelihood ratio test\n"+
		"Simple model: %s\n"+
		"Rich model:   %s\n"+
		"Chi-square:   %.4f\n"+
		"df:           %d\n"+
		"P-value:      %.4f\n",
		lrt.Simple, lrt.Rich, lrt.Statistic, lrt.DF, lrt.PValue)
	if _, err := w.Write([]byte(content)); err != nil {
		return fmt.Errorf("failed to write likelihood ratio test: %w", err)
	}
	logWritten(resolved)
	return nil
}

// WriteLRTCsv writes the likelihood ratio test result as a single CSV row.
// If the filename is an empty string, it writes to stdout.
func WriteLRTCsv(lrt *colext.LRTResult, filename string) error {
	w, closer, resolved, err := openOutput(filename, ".csv")
	if err != nil {
		return err
	}
	defer closer()

	content := fmt.Sprintf("simple,rich,statistic,df,p_value\n%s,%s,%.6f,%d,%.6f\n",
		lrt.Simple, lrt.Rich, lrt.Statistic, lrt.DF, lrt.PValue)
	if _, err := w.Write([]byte(content)); err != nil {
		return fmt.Errorf("failed to write likelihood ratio test: %w", err)
	}
	logWritten(resolved)
	return nil
}

// WriteGOFTable writes the goodness-of-fit assessment, one line per
// discrepancy statistic. If the filename is an empty string, it writes to
// stdout.
func WriteGOFTable(gof *colext.GOFResult, filename string) error {
	w, closer, resolved, err := openOutput(filename, ".txt")
	if err != nil {
		return err
	}
	defer closer()

	intro := fmt.Sprintf("Parametric bootstrap goodness of fit\nModel: %s\nTrials: %d (%d failed)\n\n",
		gof.Model, gof.Trials, gof.Failed)
	if _, err := w.Write([]byte(intro)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	header := fmt.Sprintf("%-14s  %12s  %8s\n", "Statistic", "Observed", "P-value")
	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range gof.Stats {
		stat := &gof.Stats[i]
		line := fmt.Sprintf("%-14s  %12.4f  %8.4f\n", stat.Name, stat.Observed, stat.PValue)
		if _, err = w.Write([]byte(line)); err != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write statistic row: %w", err)
	}
	logWritten(resolved)
	return nil
}

// WriteGOFCsv writes the goodness-of-fit assessment in CSV format. If the
// filename is an empty string, it writes to stdout.
func WriteGOFCsv(gof *colext.GOFResult, filename string) error {
	w, closer, resolved, err := openOutput(filename, ".csv")
	if err != nil {
		return err
	}
	defer closer()

	header := "model,statistic,observed,p_value,trials,failed\n"
	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range gof.Stats {
		stat := &gof.Stats[i]
		line := fmt.Sprintf("%s,%s,%.6f,%.6f,%d,%d\n",
			gof.Model, stat.Name, stat.Observed, stat.PValue, gof.Trials, gof.Failed)
		if _, err = w.Write([]byte(line)); err != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write statistic row: %w", err)
	}
	logWritten(resolved)
	return nil
}

// WriteTrajectoryTable writes the yearly occupancy comparison as a
// column-aligned text table. If the filename is an empty string, it writes to
// stdout.
func WriteTrajectoryTable(rows []analysis.TrajectoryRow, filename string) error {
	w, closer, resolved, err := openOutput(filename, ".txt")
	if err != nil {
		return err
	}
	defer closer()

	header := fmt.Sprintf("%-4s  %-9s  %10s  %8s\n", "Year", "Series", "Count", "SE")
	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		se := missingCell
		if !math.IsNaN(row.StdErr) {
			se = fmt.Sprintf("%.3f", row.StdErr)
		}
		line := fmt.Sprintf("%-4d  %-9s  %10.3f  %8s\n", row.Year, row.Series, row.Count, se)
		if _, err = w.Write([]byte(line)); err != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write trajectory row: %w", err)
	}
	logWritten(resolved)
	return nil
}

// WriteTrajectoryCsv writes the yearly occupancy comparison in long CSV
// format. If the filename is an empty string, it writes to stdout.
func WriteTrajectoryCsv(rows []analysis.TrajectoryRow, filename string) error {
	w, closer, resolved, err := openOutput(filename, ".csv")
	if err != nil {
		return err
	}
	defer closer()

	header := "year,series,count,std_err\n"
	if _, err := w.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		se := missingCell
		if !math.IsNaN(row.StdErr) {
			se = fmt.Sprintf("%.6f", row.StdErr)
		}
		line := fmt.Sprintf("%d,%s,%.6f,%s\n", row.Year, row.Series, row.Count, se)
		if _, err = w.Write([]byte(line)); err != nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write trajectory row: %w", err)
	}
	logWritten(resolved)
	return nil
}

// logWritten announces a completed file artifact; stdout output stays quiet.
func logWritten(filename string) {
	if filename == "" {
		return
	}
	fmt.Println("Output written to", filename)
}
