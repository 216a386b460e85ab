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

package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/renalsim/avfsim/pkg/avfsim"
)

// logReport emits the run summary: target versus realized failure rate,
// failure timing, failed-versus-surviving group means, and cohort rates.
func logReport(event *zerolog.Event, report *avfsim.RunReport) {
	event.
		Int("patients", report.Patients).
		Int("sessions", report.Sessions).
		Int("failures", report.Failures).
		Str("target_failure_rate", fmt.Sprintf("%.1f%%", report.TargetFailureRate*100)).
		Str("realized_failure_rate", fmt.Sprintf("%.1f%%", report.RealizedFailureRate*100)).
		Str("realized_rate_ci95", fmt.Sprintf("[%.1f%%, %.1f%%]", report.RateCILow*100, report.RateCIHigh*100)).
		Float64("mean_failure_treatment", report.MeanFailureTreatment).
		Str("failed_group", describeGroup(report.Failed)).
		Str("surviving_group", describeGroup(report.Surviving)).
		Str("cohorts", describeCohorts(report.Cohorts)).
		Msg("run report")
}

func describeGroup(g avfsim.GroupSummary) string {
	return fmt.Sprintf("n=%d risk=%.3f qa=%.0f svpr=%.3f recirc=%.1f",
		g.Patients, g.MeanBaselineRisk, g.MeanQA, g.MeanSVPR, g.MeanRecirculation)
}

func describeCohorts(cohorts []avfsim.CohortSummary) string {
	parts := make([]string, len(cohorts))
	for i, c := range cohorts {
		parts[i] = fmt.Sprintf("%s %d/%d (%.1f%%)", c.Name, c.Failures, c.Patients, c.FailureRate*100)
	}
	return strings.Join(parts, ", ")
}

// splitTrim splits a comma-separated parameter list into trimmed entries.
func splitTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.Trim(part, " ")
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
