// AVFSim: Synthetic Arteriovenous Fistula Failure Data Generator
// Copyright (c) 2026 renalsim.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

package avfsim

import (
	"sort"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat"
)

// GroupSummary aggregates outcome statistics for a group of patients, e.g.
// the failed versus the surviving subpopulation.
type GroupSummary struct {
	Patients          int
	MeanBaselineRisk  float64
	MeanQA            float64
	MeanSVPR          float64
	MeanRecirculation float64
}

// CohortSummary reports the realized failure rate inside a named cohort.
type CohortSummary struct {
	Name        string
	Patients    int
	Failures    int
	FailureRate float64
}

// CohortSpec names a patient filter for cohort reporting.
type CohortSpec struct {
	Name   string
	Filter PatientFilter
}

// RunReport summarizes a completed generation run. It is informational only:
// nothing in it feeds back into generation, in particular the realized
// failure rate is never calibrated against the configured target.
type RunReport struct {
	Patients             int
	Sessions             int
	Failures             int
	TargetFailureRate    float64
	RealizedFailureRate  float64
	RateCILow            float64 //bootstrap 95% confidence bounds on the realized rate
	RateCIHigh           float64
	MeanFailureTreatment float64 //mean session index of the observed failures
	Failed               GroupSummary
	Surviving            GroupSummary
	Cohorts              []CohortSummary
}

// BuildReport computes the run summary over the three generated tables.
func BuildReport(cfg *Config, patients PatientTable, treatments *TreatmentTable, outcomes OutcomeTable, cohorts []CohortSpec) *RunReport {
	report := &RunReport{
		Patients:            len(patients),
		Sessions:            len(treatments.Sessions),
		Failures:            outcomes.FailureCount(),
		TargetFailureRate:   cfg.FailureRate,
		RealizedFailureRate: outcomes.FailureRate(),
	}
	report.RateCILow, report.RateCIHigh = bootstrapFailureRate(outcomes, 2000)

	failureSessions := []float64{}
	var failed, surviving OutcomeTable
	for _, o := range outcomes {
		if o.Failed {
			failed = append(failed, o)
			failureSessions = append(failureSessions, float64(o.FailureTreatmentNumber))
		} else {
			surviving = append(surviving, o)
		}
	}
	if len(failureSessions) > 0 {
		report.MeanFailureTreatment = stat.Mean(failureSessions, nil)
	}
	report.Failed = summarizeGroup(failed)
	report.Surviving = summarizeGroup(surviving)

	failedByPID := map[int]bool{}
	for _, o := range failed {
		failedByPID[o.PID] = true
	}
	for _, cohort := range cohorts {
		selected := ApplyPatientFilters([]PatientFilter{cohort.Filter}, patients)
		failures := 0
		for _, p := range selected {
			if failedByPID[p.PID] {
				failures++
			}
		}
		summary := CohortSummary{Name: cohort.Name, Patients: len(selected), Failures: failures}
		if len(selected) > 0 {
			summary.FailureRate = float64(failures) / float64(len(selected))
		}
		report.Cohorts = append(report.Cohorts, summary)
	}
	return report
}

// summarizeGroup averages the per-patient session summaries of a group.
func summarizeGroup(outcomes OutcomeTable) GroupSummary {
	summary := GroupSummary{Patients: len(outcomes)}
	if len(outcomes) == 0 {
		return summary
	}
	risk := make([]float64, len(outcomes))
	qa := make([]float64, len(outcomes))
	svpr := make([]float64, len(outcomes))
	recirc := make([]float64, len(outcomes))
	for i, o := range outcomes {
		risk[i] = o.BaselineRisk
		qa[i] = o.MeanQA
		svpr[i] = o.MeanSVPR
		recirc[i] = o.MeanRecirculation
	}
	summary.MeanBaselineRisk = stat.Mean(risk, nil)
	summary.MeanQA = stat.Mean(qa, nil)
	summary.MeanSVPR = stat.Mean(svpr, nil)
	summary.MeanRecirculation = stat.Mean(recirc, nil)
	return summary
}

// bootstrapFailureRate estimates a 95% confidence interval on the realized
// failure rate by resampling the outcome table with replacement. The interval
// is informational, so the resampler does not need to be reproducible and
// uses the cheap thread-safe generator.
func bootstrapFailureRate(outcomes OutcomeTable, iter int) (low, high float64) {
	n := len(outcomes)
	if n == 0 || iter < 2 {
		return 0, 0
	}
	rates := make([]float64, iter)
	var rng fastrand.RNG
	for i := 0; i < iter; i++ {
		failures := 0
		for j := 0; j < n; j++ {
			if outcomes[rng.Uint32n(uint32(n))].Failed {
				failures++
			}
		}
		rates[i] = float64(failures) / float64(n)
	}
	sort.Float64s(rates)
	low = stat.Quantile(0.025, stat.Empirical, rates, nil)
	high = stat.Quantile(0.975, stat.Empirical, rates, nil)
	return low, high
}
