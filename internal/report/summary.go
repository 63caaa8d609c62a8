// summary.go writes a machine-readable summary of one pipeline run, the
// artifact downstream tooling consumes instead of scraping tables.
package report

import (
	"encoding/json"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecostats/dynocc-go/internal/analysis"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/errors"
)

// RunSummary is the JSON shape of one completed pipeline run.
type RunSummary struct {
	ID          string    `json:"id"`
	Node        string    `json:"node"`
	Host        string    `json:"host"`
	Version     string    `json:"version,omitempty"`
	BuildDate   string    `json:"build_date,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	ElapsedMs   int64     `json:"elapsed_ms"`

	Survey SummarySurvey `json:"survey"`
	Seeds  SummarySeeds  `json:"seeds"`

	Models       []SummaryModel `json:"models"`
	FailedModels []string       `json:"failed_models,omitempty"`
	Selected     string         `json:"selected"`

	LRT      *SummaryLRT `json:"lrt,omitempty"`
	LRTError string      `json:"lrt_error,omitempty"`

	GOF      *SummaryGOF `json:"gof,omitempty"`
	GOFError string      `json:"gof_error,omitempty"`

	BootstrapError string `json:"bootstrap_error,omitempty"`

	Trajectory []SummaryPoint `json:"trajectory"`
}

// SummarySurvey echoes the survey design of the analyzed dataset.
type SummarySurvey struct {
	Sites     int `json:"sites"`
	Years     int `json:"years"`
	Occasions int `json:"occasions"`
}

// SummarySeeds echoes the seeds of every stochastic stage for reproduction.
type SummarySeeds struct {
	Simulation uint64 `json:"simulation"`
	GOF        uint64 `json:"gof"`
	Bootstrap  uint64 `json:"bootstrap"`
}

// SummaryModel is one row of the AIC ranking.
type SummaryModel struct {
	Rank     int     `json:"rank"`
	Name     string  `json:"name"`
	Formula  string  `json:"formula"`
	K        int     `json:"k"`
	LogLik   float64 `json:"loglik"`
	AIC      float64 `json:"aic"`
	DeltaAIC float64 `json:"delta_aic"`
	Weight   float64 `json:"weight"`
}

// SummaryLRT is the likelihood ratio test block.
type SummaryLRT struct {
	Simple    string  `json:"simple"`
	Rich      string  `json:"rich"`
	Statistic float64 `json:"statistic"`
	DF        int     `json:"df"`
	PValue    float64 `json:"p_value"`
}

// SummaryStat is one goodness-of-fit discrepancy statistic.
type SummaryStat struct {
	Name     string  `json:"name"`
	Observed float64 `json:"observed"`
	PValue   float64 `json:"p_value"`
}

// SummaryGOF is the goodness-of-fit block.
type SummaryGOF struct {
	Model  string        `json:"model"`
	Trials int           `json:"trials"`
	Failed int           `json:"failed"`
	Stats  []SummaryStat `json:"stats"`
}

// SummaryPoint is one (year, series) trajectory cell. StdErr is omitted when
// no bootstrap standard error exists, JSON has no NaN.
type SummaryPoint struct {
	Year   int      `json:"year"`
	Series string   `json:"series"`
	Count  float64  `json:"count"`
	StdErr *float64 `json:"std_err,omitempty"`
}

// BuildSummary assembles the summary from the settings and the pipeline
// result.
func BuildSummary(settings *conf.Settings, result *analysis.PipelineResult) *RunSummary {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	summary := &RunSummary{
		ID:          uuid.New().String(),
		Node:        settings.Main.Name,
		Host:        host,
		Version:     settings.Version,
		BuildDate:   settings.BuildDate,
		GeneratedAt: time.Now(),
		ElapsedMs:   result.Elapsed.Milliseconds(),
		Survey: SummarySurvey{
			Sites:     result.Design.Sites,
			Years:     result.Design.Years,
			Occasions: result.Design.Occasions,
		},
		Seeds: SummarySeeds{
			Simulation: settings.Simulation.Seed,
			GOF:        settings.GOF.Seed,
			Bootstrap:  settings.Bootstrap.Seed,
		},
		FailedModels:   result.Battery.Failed(),
		Selected:       result.Selected,
		LRTError:       errorString(result.LRTErr),
		GOFError:       errorString(result.GOFErr),
		BootstrapError: errorString(result.BootstrapErr),
	}

	summary.Models = make([]SummaryModel, 0, len(result.Ranking))
	for _, row := range result.Ranking {
		summary.Models = append(summary.Models, SummaryModel{
			Rank:     row.Rank,
			Name:     row.Name,
			Formula:  row.Formula,
			K:        row.K,
			LogLik:   row.LogLik,
			AIC:      row.AIC,
			DeltaAIC: row.DeltaAIC,
			Weight:   row.Weight,
		})
	}

	if result.LRT != nil {
		summary.LRT = &SummaryLRT{
			Simple:    result.LRT.Simple,
			Rich:      result.LRT.Rich,
			Statistic: result.LRT.Statistic,
			DF:        result.LRT.DF,
			PValue:    result.LRT.PValue,
		}
	}
	if result.GOF != nil {
		gof := &SummaryGOF{
			Model:  result.GOF.Model,
			Trials: result.GOF.Trials,
			Failed: result.GOF.Failed,
		}
		for i := range result.GOF.Stats {
			stat := &result.GOF.Stats[i]
			gof.Stats = append(gof.Stats, SummaryStat{
				Name:     stat.Name,
				Observed: stat.Observed,
				PValue:   stat.PValue,
			})
		}
		summary.GOF = gof
	}

	summary.Trajectory = make([]SummaryPoint, 0, len(result.Trajectory))
	for _, row := range result.Trajectory {
		point := SummaryPoint{
			Year:   row.Year,
			Series: string(row.Series),
			Count:  row.Count,
		}
		if !math.IsNaN(row.StdErr) {
			se := row.StdErr
			point.StdErr = &se
		}
		summary.Trajectory = append(summary.Trajectory, point)
	}
	return summary
}

// WriteSummary writes the run summary as indented JSON.
func WriteSummary(settings *conf.Settings, result *analysis.PipelineResult, filename string) error {
	summary := BuildSummary(settings, result)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileIO).
			Context("operation", "marshal-run-summary").
			Build()
	}
	data = append(data, '\n')

	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileIO).
			Context("operation", "write-run-summary").
			FileContext(filename, 0).
			Build()
	}
	logWritten(filename)
	return nil
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
