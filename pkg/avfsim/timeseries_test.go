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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePatients builds a patient table with a forced baseline risk score,
// bypassing the baseline stage.
func fakePatients(n int, risk float64) PatientTable {
	patients := make(PatientTable, n)
	for i := 0; i < n; i++ {
		patients[i] = &Patient{
			PID:          i,
			PIDString:    PatientID(i),
			Age:          60,
			Sex:          Male,
			BaselineRisk: risk,
		}
	}
	return patients
}

func TestGenerateTreatmentsCompleteness(t *testing.T) {
	cfg := DefaultConfig(40, 3)
	cfg.NofTreatments = 30
	src := NewSource(cfg.RandomSeed)
	patients, err := GenerateBaseline(cfg, src)
	require.NoError(t, err)
	treatments, err := GenerateTreatments(cfg, patients, src)
	require.NoError(t, err)

	require.Len(t, treatments.Sessions, 40*30)
	require.Equal(t, 30, treatments.PerPatient)
	for _, p := range patients {
		sessions := treatments.PatientSessions(p.PID)
		require.Len(t, sessions, 30)
		for i, sess := range sessions {
			// contiguous 1-based numbering, patient-major layout
			assert.Equal(t, p.PID, sess.PID)
			assert.Equal(t, p.PIDString, sess.PIDString)
			assert.Equal(t, i+1, sess.TreatmentNumber)
			wantDate := cfg.StartDate.AddDate(0, 0, i*cfg.TreatmentIntervalDays)
			assert.True(t, sess.Date.Equal(wantDate))
		}
	}
}

func TestGenerateTreatmentsRanges(t *testing.T) {
	cfg := DefaultConfig(50, 11)
	cfg.NofTreatments = 60
	src := NewSource(cfg.RandomSeed)
	patients, err := GenerateBaseline(cfg, src)
	require.NoError(t, err)
	treatments, err := GenerateTreatments(cfg, patients, src)
	require.NoError(t, err)

	for _, sess := range treatments.Sessions {
		assert.GreaterOrEqual(t, sess.QA, 200.0)
		assert.LessOrEqual(t, sess.QA, 1500.0)
		assert.GreaterOrEqual(t, sess.ArterialPressureMean, -350.0)
		assert.LessOrEqual(t, sess.ArterialPressureMean, -100.0)
		assert.GreaterOrEqual(t, sess.VenousPressureMean, 80.0)
		assert.LessOrEqual(t, sess.VenousPressureMean, 400.0)
		assert.GreaterOrEqual(t, sess.SVPR, 0.1)
		assert.LessOrEqual(t, sess.SVPR, 1.2)
		assert.GreaterOrEqual(t, sess.HighVPAlarms, 0)
		assert.GreaterOrEqual(t, sess.LowAPAlarms, 0)
		assert.GreaterOrEqual(t, sess.RecirculationPct, 0.0)
		assert.LessOrEqual(t, sess.RecirculationPct, 40.0)
		assert.GreaterOrEqual(t, sess.KTV, 0.6)
		assert.LessOrEqual(t, sess.KTV, 2.0)
	}
}

func TestLowRiskSVPRCeiling(t *testing.T) {
	cfg := DefaultConfig(30, 17)
	cfg.NofTreatments = 50
	patients := fakePatients(30, 0.1)
	treatments, err := GenerateTreatments(cfg, patients, NewSource(cfg.RandomSeed))
	require.NoError(t, err)
	for _, sess := range treatments.Sessions {
		assert.LessOrEqual(t, sess.SVPR, 0.5, "low-risk patients must never exceed the svpr ceiling")
	}
}

func TestHighRiskQADeclines(t *testing.T) {
	cfg := DefaultConfig(60, 23)
	cfg.NofTreatments = 156
	patients := fakePatients(60, 1.0)
	treatments, err := GenerateTreatments(cfg, patients, NewSource(cfg.RandomSeed))
	require.NoError(t, err)

	// across the cohort, early flow must exceed late flow for maximum-risk
	// patients: the deterministic decline term dominates the session noise
	early, late := 0.0, 0.0
	for _, p := range patients {
		sessions := treatments.PatientSessions(p.PID)
		for _, sess := range sessions[:20] {
			early += sess.QA
		}
		for _, sess := range sessions[len(sessions)-20:] {
			late += sess.QA
		}
	}
	assert.Greater(t, early, late)
}

func TestGenerateTreatmentsInvalidState(t *testing.T) {
	cfg := DefaultConfig(10, 1)
	_, err := GenerateTreatments(cfg, nil, NewSource(cfg.RandomSeed))
	require.True(t, errors.Is(err, ErrInvalidState))
}

func TestGenerateTreatmentsReproducible(t *testing.T) {
	cfg := DefaultConfig(25, 5)
	cfg.NofTreatments = 40
	src := NewSource(cfg.RandomSeed)
	patients, err := GenerateBaseline(cfg, src)
	require.NoError(t, err)
	treatments1, err := GenerateTreatments(cfg, patients, src)
	require.NoError(t, err)
	treatments2, err := GenerateTreatments(cfg, patients, NewSource(cfg.RandomSeed))
	require.NoError(t, err)
	require.Equal(t, treatments1, treatments2)
}
