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
	"os"
	"path"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/renalsim/avfsim/lib"
	"github.com/renalsim/avfsim/pkg/avfsim"
)

// SimulationParams holds the full parameter surface of a generation run.
type SimulationParams struct {
	// required parameters
	Name       string //name of the run, used to generate output file paths
	OutputPath string //path where output files are written to

	// optional parameters
	NofPatients           int
	NofTreatments         int
	TreatmentIntervalDays int
	FailureRate           float64 //informational target, reported against the realized rate
	RandomSeed            int64
	Cohorts               string //comma-separated patient filter names for cohort reporting
	ConfigFile            string //optional YAML file filling in parameters left at their defaults
	NrOfThreads           int
}

// DefaultParams returns the default parameter surface of a run.
func DefaultParams() *SimulationParams {
	return &SimulationParams{
		Name:                  "run1",
		NofPatients:           1000,
		NofTreatments:         156,
		TreatmentIntervalDays: 2,
		FailureRate:           0.30,
		RandomSeed:            42,
		Cohorts:               "male,female,age70+,diabetic,highrisk",
	}
}

// Run executes a full generation run with the given parameters: baseline
// characteristics, treatment time series, failure outcomes, CSV artifacts,
// and the run report.
func Run(params *SimulationParams) (err error) {
	defer func() {
		// converts any panics into errors to avoid crashing the app
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to run simulation: %v", r)
		}
	}()

	if params.ConfigFile != "" {
		if err := mergeConfigFile(params); err != nil {
			return err
		}
	}

	cfg := avfsim.DefaultConfig(params.NofPatients, params.RandomSeed)
	cfg.NofTreatments = params.NofTreatments
	cfg.TreatmentIntervalDays = params.TreatmentIntervalDays
	cfg.FailureRate = params.FailureRate
	if err := cfg.Validate(); err != nil {
		return err
	}

	outputDir := path.Join(params.OutputPath, params.Name)
	if err := os.MkdirAll(outputDir, 0700); err != nil {
		return err
	}

	if params.NrOfThreads > 0 {
		runtime.GOMAXPROCS(params.NrOfThreads)
	}

	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Str("name", params.Name).Logger()
	logger.Info().
		Int("n_patients", cfg.NofPatients).
		Int("n_treatments", cfg.NofTreatments).
		Int64("seed", cfg.RandomSeed).
		Msg("starting generation run")

	src := avfsim.NewSource(cfg.RandomSeed)

	// 1. Baseline characteristics
	patients, err := avfsim.GenerateBaseline(cfg, src)
	if err != nil {
		return err
	}
	logger.Info().Str("baseline", avfsim.DescribeBaseline(patients)).Msg("generated baseline characteristics")

	// 2. Treatment time series
	treatments, err := avfsim.GenerateTreatments(cfg, patients, src)
	if err != nil {
		return err
	}
	logger.Info().Int("sessions", len(treatments.Sessions)).Msg("generated treatment time series")

	// 3. Failure outcomes
	outcomes, err := avfsim.GenerateOutcomes(cfg, patients, treatments, src)
	if err != nil {
		return err
	}
	logger.Info().Int("failures", outcomes.FailureCount()).Msg("generated failure outcomes")

	// 4. Artifacts
	artifacts := lib.WriteArtifacts(outputDir, patients, treatments, outcomes)
	lib.WriteManifest(outputDir, &lib.Manifest{
		RunID:                 runID,
		Name:                  params.Name,
		CreatedAt:             time.Now().UTC(),
		NofPatients:           cfg.NofPatients,
		NofTreatments:         cfg.NofTreatments,
		TreatmentIntervalDays: cfg.TreatmentIntervalDays,
		RandomSeed:            cfg.RandomSeed,
		TargetFailureRate:     cfg.FailureRate,
		RealizedFailureRate:   outcomes.FailureRate(),
		Artifacts:             artifacts,
	})
	logger.Info().Str("path", outputDir).Msg("wrote artifacts")

	// 5. Run report
	report := avfsim.BuildReport(cfg, patients, treatments, outcomes, cohortSpecs(params.Cohorts))
	logReport(logger.Info(), report)

	return nil
}

// cohortSpecs resolves the configured cohort filter names.
func cohortSpecs(names string) []avfsim.CohortSpec {
	var specs []avfsim.CohortSpec
	if names == "" {
		return specs
	}
	for _, spec := range splitTrim(names) {
		specs = append(specs, avfsim.CohortSpec{Name: spec, Filter: avfsim.GetPatientFilter(spec)})
	}
	return specs
}
