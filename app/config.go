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

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of an optional run configuration file.
// Pointer fields distinguish "absent" from an explicit zero.
type fileConfig struct {
	Name                  *string  `yaml:"name"`
	NofPatients           *int     `yaml:"n_patients"`
	NofTreatments         *int     `yaml:"n_treatments"`
	TreatmentIntervalDays *int     `yaml:"treatment_interval_days"`
	FailureRate           *float64 `yaml:"failure_rate"`
	RandomSeed            *int64   `yaml:"random_seed"`
	Cohorts               *string  `yaml:"cohorts"`
}

// mergeConfigFile reads the YAML config file and fills in every parameter the
// command line left at its default. Explicit flags win over file values.
func mergeConfigFile(params *SimulationParams) error {
	raw, err := os.ReadFile(params.ConfigFile)
	if err != nil {
		return fmt.Errorf("cannot read config file %s: %w", params.ConfigFile, err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("cannot parse config file %s: %w", params.ConfigFile, err)
	}
	defaults := DefaultParams()
	if file.Name != nil && params.Name == defaults.Name {
		params.Name = *file.Name
	}
	if file.NofPatients != nil && params.NofPatients == defaults.NofPatients {
		params.NofPatients = *file.NofPatients
	}
	if file.NofTreatments != nil && params.NofTreatments == defaults.NofTreatments {
		params.NofTreatments = *file.NofTreatments
	}
	if file.TreatmentIntervalDays != nil && params.TreatmentIntervalDays == defaults.TreatmentIntervalDays {
		params.TreatmentIntervalDays = *file.TreatmentIntervalDays
	}
	if file.FailureRate != nil && params.FailureRate == defaults.FailureRate {
		params.FailureRate = *file.FailureRate
	}
	if file.RandomSeed != nil && params.RandomSeed == defaults.RandomSeed {
		params.RandomSeed = *file.RandomSeed
	}
	if file.Cohorts != nil && params.Cohorts == defaults.Cohorts {
		params.Cohorts = *file.Cohorts
	}
	return nil
}
