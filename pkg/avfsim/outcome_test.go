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

func TestRiskComponents(t *testing.T) {
	// each component is zero in its healthy regime and saturates near 1
	assert.Equal(t, 0.0, qaRisk(600))
	assert.Equal(t, 0.0, qaRisk(900))
	assert.Equal(t, 1.0, qaRisk(200))
	assert.Equal(t, 0.0, svprRisk(0.5))
	assert.Equal(t, 0.0, svprRisk(0.3))
	assert.InDelta(t, 1.0, svprRisk(1.2), 1e-9)
	assert.Equal(t, 0.0, recirculationRisk(10))
	assert.Equal(t, 1.0, recirculationRisk(40))
	assert.Equal(t, 0.0, ktvRisk(1.2))
	assert.Equal(t, 1.0, ktvRisk(0.6))
	assert.Equal(t, 0.0, alarmRisk(0, 0))
	assert.Equal(t, 0.5, alarmRisk(3, 2))
	assert.Equal(t, 1.0, alarmRisk(20, 5))
}

func TestSessionRiskScore(t *testing.T) {
	sess := &TreatmentSession{
		TreatmentNumber:  78,
		QA:               400,  //qa risk 0.5
		SVPR:             0.85, //svpr risk 0.5
		RecirculationPct: 25,   //recirculation risk 0.5
		KTV:              0.9,  //ktv risk 0.5
		HighVPAlarms:     3,    //alarm risk 0.5
		LowAPAlarms:      2,
	}
	// weighted sum 0.5*(0.25+0.30+0.20+0.10+0.10+0.05) = 0.5,
	// acceleration at mid-window 1.25
	got := SessionRiskScore(0.5, sess, 156)
	assert.InDelta(t, 0.625, got, 1e-9)

	// the clip caps a saturated late-window score at 1
	worst := &TreatmentSession{
		TreatmentNumber: 156, QA: 200, SVPR: 1.2, RecirculationPct: 40, KTV: 0.6,
		HighVPAlarms: 10, LowAPAlarms: 10,
	}
	assert.Equal(t, 1.0, SessionRiskScore(1.0, worst, 156))
}

func TestFailureProbabilityMonotone(t *testing.T) {
	prev := -1.0
	for score := 0.0; score <= 1.0; score += 0.01 {
		p := FailureProbability(score)
		assert.Greater(t, p, prev)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
		prev = p
	}
	// midpoint of the logistic transform
	assert.InDelta(t, 0.5, FailureProbability(0.85), 1e-9)
}

// worstSessions builds n sessions with metrics in their worst regime, so the
// failure probability is maximal at every session.
func worstSessions(n int) []*TreatmentSession {
	sessions := make([]*TreatmentSession, n)
	for i := 0; i < n; i++ {
		sessions[i] = &TreatmentSession{
			PID: 0, PIDString: PatientID(0), TreatmentNumber: i + 1,
			QA: 200, SVPR: 1.2, RecirculationPct: 40, KTV: 0.6,
			HighVPAlarms: 10, LowAPAlarms: 10,
		}
	}
	return sessions
}

func TestFailureNeverBeforeObservationFloor(t *testing.T) {
	// even with maximal per-session probabilities, the trial must never fire
	// at or before session 20
	sessions := worstSessions(40)
	p := &Patient{PID: 0, PIDString: PatientID(0), BaselineRisk: 1.0}
	for seed := int64(0); seed < 200; seed++ {
		outcome := patientOutcome(p, sessions, NewSource(seed).outcome(0))
		if outcome.Failed {
			assert.Greater(t, outcome.FailureTreatmentNumber, 20)
			assert.LessOrEqual(t, outcome.FailureTreatmentNumber, 40)
		} else {
			assert.Equal(t, 0, outcome.FailureTreatmentNumber)
		}
	}
}

func TestFailureConsistency(t *testing.T) {
	cfg := DefaultConfig(150, 13)
	cfg.NofTreatments = 156
	src := NewSource(cfg.RandomSeed)
	patients, err := GenerateBaseline(cfg, src)
	require.NoError(t, err)
	treatments, err := GenerateTreatments(cfg, patients, src)
	require.NoError(t, err)
	outcomes, err := GenerateOutcomes(cfg, patients, treatments, src)
	require.NoError(t, err)

	require.Len(t, outcomes, 150)
	for _, o := range outcomes {
		if o.Failed {
			assert.Greater(t, o.FailureTreatmentNumber, 20)
			assert.LessOrEqual(t, o.FailureTreatmentNumber, cfg.NofTreatments)
		} else {
			assert.Equal(t, 0, o.FailureTreatmentNumber)
		}
	}
}

func TestScenarioRiskSeparation(t *testing.T) {
	// a zero-risk cohort never accumulates enough per-session risk to reach
	// the firing band, a maximum-risk cohort must fail materially more often
	lowFailures, highFailures := 0, 0
	for seed := int64(1); seed <= 5; seed++ {
		cfg := DefaultConfig(40, seed)
		cfg.NofTreatments = 156

		low := fakePatients(40, 0.0)
		treatments, err := GenerateTreatments(cfg, low, NewSource(seed))
		require.NoError(t, err)
		outcomes, err := GenerateOutcomes(cfg, low, treatments, NewSource(seed))
		require.NoError(t, err)
		lowFailures += outcomes.FailureCount()

		high := fakePatients(40, 1.0)
		treatments, err = GenerateTreatments(cfg, high, NewSource(seed))
		require.NoError(t, err)
		outcomes, err = GenerateOutcomes(cfg, high, treatments, NewSource(seed))
		require.NoError(t, err)
		highFailures += outcomes.FailureCount()
	}
	assert.Greater(t, highFailures, lowFailures+50)
	assert.Less(t, lowFailures, 5)
}

func TestSessionSummaries(t *testing.T) {
	sessions := []*TreatmentSession{
		{TreatmentNumber: 1, QA: 1000, SVPR: 0.4, RecirculationPct: 2, HighVPAlarms: 1, LowAPAlarms: 0},
		{TreatmentNumber: 2, QA: 800, SVPR: 0.6, RecirculationPct: 4, HighVPAlarms: 0, LowAPAlarms: 2},
		{TreatmentNumber: 3, QA: 600, SVPR: 0.5, RecirculationPct: 6, HighVPAlarms: 3, LowAPAlarms: 1},
	}
	p := &Patient{PID: 0, PIDString: PatientID(0), BaselineRisk: 0.2}
	outcome := patientOutcome(p, sessions, NewSource(1).outcome(0))

	assert.False(t, outcome.Failed)
	assert.InDelta(t, 800.0, outcome.MeanQA, 1e-9)
	assert.Equal(t, 600.0, outcome.MinQA)
	assert.Equal(t, 600.0, outcome.FinalQA)
	assert.InDelta(t, 0.5, outcome.MeanSVPR, 1e-9)
	assert.Equal(t, 0.6, outcome.MaxSVPR)
	assert.InDelta(t, 4.0, outcome.MeanRecirculation, 1e-9)
	assert.Equal(t, 7, outcome.TotalAlarms)
	assert.Equal(t, 0.2, outcome.BaselineRisk)
}

func TestGenerateOutcomesInvalidState(t *testing.T) {
	cfg := DefaultConfig(10, 1)
	src := NewSource(cfg.RandomSeed)
	patients, err := GenerateBaseline(cfg, src)
	require.NoError(t, err)

	_, err = GenerateOutcomes(cfg, nil, nil, src)
	require.True(t, errors.Is(err, ErrInvalidState))

	_, err = GenerateOutcomes(cfg, patients, nil, src)
	require.True(t, errors.Is(err, ErrInvalidState))

	// a treatment table of the wrong shape is as invalid as a missing one
	_, err = GenerateOutcomes(cfg, patients, &TreatmentTable{PerPatient: 3}, src)
	require.True(t, errors.Is(err, ErrInvalidState))
}

func TestPipelineReproducible(t *testing.T) {
	run := func() (PatientTable, *TreatmentTable, OutcomeTable) {
		cfg := DefaultConfig(30, 4242)
		cfg.NofTreatments = 80
		src := NewSource(cfg.RandomSeed)
		patients, err := GenerateBaseline(cfg, src)
		require.NoError(t, err)
		treatments, err := GenerateTreatments(cfg, patients, src)
		require.NoError(t, err)
		outcomes, err := GenerateOutcomes(cfg, patients, treatments, src)
		require.NoError(t, err)
		return patients, treatments, outcomes
	}
	patients1, treatments1, outcomes1 := run()
	patients2, treatments2, outcomes2 := run()
	require.Equal(t, patients1, patients2)
	require.Equal(t, treatments1, treatments2)
	require.Equal(t, outcomes1, outcomes2)
}
