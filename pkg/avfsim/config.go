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
	"errors"
	"fmt"
	"time"
)

// The two fatal error kinds of a generation run. A run is a one-shot batch
// transform; there are no recoverable or retryable failures.
var (
	// ErrInvalidConfig signals a non-positive count or an out-of-range
	// probability parameter.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidState signals that a stage was invoked before its
	// prerequisite stage populated the required table.
	ErrInvalidState = errors.New("invalid state")
)

// Config holds the parameters of a generation run.
type Config struct {
	NofPatients           int     //total patients to simulate
	NofTreatments         int     //sessions per patient
	TreatmentIntervalDays int     //spacing between sessions in days
	FailureRate           float64 //target population failure rate, informational only
	RandomSeed            int64   //seed for reproducible runs
	StartDate             time.Time
}

// DefaultConfig returns a config with the default cohort shape: 156 sessions
// at a 2-day interval, a 30% informational failure-rate target, and sessions
// starting on 2024-01-01.
func DefaultConfig(nofPatients int, seed int64) *Config {
	return &Config{
		NofPatients:           nofPatients,
		NofTreatments:         156,
		TreatmentIntervalDays: 2,
		FailureRate:           0.30,
		RandomSeed:            seed,
		StartDate:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Validate checks the configuration surface up front. The target failure rate
// is validated even though it never constrains generation.
func (cfg *Config) Validate() error {
	if cfg.NofPatients < 1 {
		return fmt.Errorf("%w: nofPatients must be >= 1, got %d", ErrInvalidConfig, cfg.NofPatients)
	}
	if cfg.NofTreatments < 1 {
		return fmt.Errorf("%w: nofTreatments must be >= 1, got %d", ErrInvalidConfig, cfg.NofTreatments)
	}
	if cfg.TreatmentIntervalDays < 1 {
		return fmt.Errorf("%w: treatmentIntervalDays must be >= 1, got %d", ErrInvalidConfig, cfg.TreatmentIntervalDays)
	}
	if cfg.FailureRate <= 0 || cfg.FailureRate >= 1 {
		return fmt.Errorf("%w: failureRate must be in (0,1), got %g", ErrInvalidConfig, cfg.FailureRate)
	}
	if cfg.StartDate.IsZero() {
		return fmt.Errorf("%w: start date must be set", ErrInvalidConfig)
	}
	return nil
}
