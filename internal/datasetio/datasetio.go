// Package datasetio reads and writes survey datasets as a directory of CSV
// files, so a simulated dataset can be exported once and re-analyzed later
// without regenerating it.
//
// A dataset directory contains:
//
//	design.csv       survey dimensions, one row: sites,years,occasions
//	detections.csv   wide-format detection histories, one row per site with
//	                 columns y1_o1 .. yY_oO, missing occasions written as NA
//	truth.csv        optional latent occupancy states, one row per site with
//	                 columns year_1 .. year_Y
//	site-covs.csv    optional site covariates, one column per covariate
//	yearly-NAME.csv  one per yearly covariate, columns interval_1 .. interval_Y-1
//	obs-NAME.csv     one per observation covariate, same columns as detections
//
// Row order defines site order in every file. Covariate names are taken from
// the yearly-/obs- file names and from the site-covs.csv header.
package datasetio

import (
	"fmt"

	"github.com/ecostats/dynocc-go/internal/colext"
)

const (
	designFile     = "design.csv"
	detectionsFile = "detections.csv"
	truthFile      = "truth.csv"
	siteCovsFile   = "site-covs.csv"

	yearlyCovPrefix = "yearly-"
	obsCovPrefix    = "obs-"

	// missingToken marks a missing observation in detection and
	// observation covariate files.
	missingToken = "NA"
)

// detectionHeader returns the wide-format column names in the same year-major
// order the observation matrix uses.
func detectionHeader(d colext.SurveyDesign) []string {
	header := make([]string, 0, d.SecondaryPeriods())
	for year := 0; year < d.Years; year++ {
		for occ := 0; occ < d.Occasions; occ++ {
			header = append(header, fmt.Sprintf("y%d_o%d", year+1, occ+1))
		}
	}
	return header
}

// truthHeader returns the column names for the latent state file.
func truthHeader(years int) []string {
	header := make([]string, years)
	for t := 0; t < years; t++ {
		header[t] = fmt.Sprintf("year_%d", t+1)
	}
	return header
}

// intervalHeader returns the column names for yearly covariate files, one per
// between-season transition.
func intervalHeader(years int) []string {
	header := make([]string, years-1)
	for t := 0; t < years-1; t++ {
		header[t] = fmt.Sprintf("interval_%d", t+1)
	}
	return header
}
