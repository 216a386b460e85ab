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
	"fmt"
	"math"

	"github.com/exascience/pargo/parallel"
)

// Weights of the per-session composite risk score.
const (
	baselineRiskWeight  = 0.25
	qaRiskWeight        = 0.30
	svprRiskWeight      = 0.20
	recircRiskWeight    = 0.10
	ktvRiskWeight       = 0.10
	alarmRiskWeight     = 0.05
	logisticSteepness   = 3.0
	logisticMidpoint    = 0.85
	// minimum number of observed sessions before failure can be declared
	minSessionsBeforeFailure = 20
)

// GenerateOutcomes runs the per-patient sequential failure trial over the
// joined patient and treatment tables and produces one outcome per patient.
// Patients are independent, so the outer loop runs in parallel on per-patient
// sub-streams.
func GenerateOutcomes(cfg *Config, patients PatientTable, treatments *TreatmentTable, src *Source) (OutcomeTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, fmt.Errorf("%w: generate baseline characteristics before outcomes", ErrInvalidState)
	}
	if treatments == nil || treatments.PerPatient == 0 ||
		len(treatments.Sessions) != len(patients)*treatments.PerPatient {
		return nil, fmt.Errorf("%w: generate the treatment time series before outcomes", ErrInvalidState)
	}
	outcomes := make(OutcomeTable, len(patients))
	parallel.Range(0, len(patients), 0, func(low, high int) {
		for i := low; i < high; i++ {
			p := patients[i]
			outcomes[i] = patientOutcome(p, treatments.PatientSessions(p.PID), src.outcome(p.PID))
		}
	})
	return outcomes, nil
}

// patientOutcome processes one patient's sessions in treatment-number order
// and maintains the trial state: surviving initially, failed as soon as the
// transition fires, absorbing once failed. Only sessions past the minimum
// observation floor are eligible; each eligible session draws a fresh
// probability jitter in [0.8,1.2] and fires iff the jittered probability
// exceeds 0.5 and a second uniform draw lands below jittered-0.3.
func patientOutcome(p *Patient, sessions []*TreatmentSession, s *stream) *Outcome {
	maxTreatment := sessions[len(sessions)-1].TreatmentNumber
	failed := false
	failureTreatment := 0
	for _, sess := range sessions {
		if sess.TreatmentNumber <= minSessionsBeforeFailure {
			continue
		}
		prob := FailureProbability(SessionRiskScore(p.BaselineRisk, sess, maxTreatment))
		adjusted := prob * s.uniform(0.8, 1.2)
		if adjusted > 0.5 && s.float() < adjusted-0.3 {
			failed = true
			failureTreatment = sess.TreatmentNumber
			break
		}
	}
	outcome := &Outcome{
		PID:                    p.PID,
		PIDString:              p.PIDString,
		Failed:                 failed,
		FailureTreatmentNumber: failureTreatment,
		BaselineRisk:           p.BaselineRisk,
	}
	summarizeSessions(outcome, sessions)
	return outcome
}

// SessionRiskScore computes the composite per-session risk score: the
// weighted combination of the baseline risk and the five normalized
// per-session components, scaled by the temporal acceleration factor and
// clipped to [0,1].
func SessionRiskScore(baselineRisk float64, sess *TreatmentSession, maxTreatment int) float64 {
	score := baselineRisk*baselineRiskWeight +
		qaRisk(sess.QA)*qaRiskWeight +
		svprRisk(sess.SVPR)*svprRiskWeight +
		recirculationRisk(sess.RecirculationPct)*recircRiskWeight +
		ktvRisk(sess.KTV)*ktvRiskWeight +
		alarmRisk(sess.HighVPAlarms, sess.LowAPAlarms)*alarmRiskWeight
	// risk accumulates faster late in the observation window
	progression := float64(sess.TreatmentNumber) / float64(maxTreatment)
	score *= 1 + progression*0.5
	return clip(score, 0, 1)
}

// FailureProbability converts a composite risk score to a failure probability
// through a logistic transform. The transform is monotone: a higher score
// never yields a lower probability.
func FailureProbability(riskScore float64) float64 {
	return 1 / (1 + math.Exp(-logisticSteepness*(riskScore-logisticMidpoint)))
}

// The per-session risk components, each normalized to approximately [0,1].

func qaRisk(qa float64) float64 {
	return math.Max(0, (600-qa)/400)
}

func svprRisk(svpr float64) float64 {
	return math.Max(0, (svpr-0.5)/0.7)
}

func recirculationRisk(pct float64) float64 {
	return math.Max(0, (pct-10)/30)
}

func ktvRisk(ktv float64) float64 {
	return math.Max(0, (1.2-ktv)/0.6)
}

func alarmRisk(highVP, lowAP int) float64 {
	return clip(float64(highVP+lowAP)/10, 0, 1)
}

// summarizeSessions fills the per-patient session summaries of an outcome.
func summarizeSessions(o *Outcome, sessions []*TreatmentSession) {
	qaSum, svprSum, recircSum := 0.0, 0.0, 0.0
	minQA := math.Inf(1)
	maxSVPR := math.Inf(-1)
	alarms := 0
	for _, sess := range sessions {
		qaSum += sess.QA
		svprSum += sess.SVPR
		recircSum += sess.RecirculationPct
		minQA = math.Min(minQA, sess.QA)
		maxSVPR = math.Max(maxSVPR, sess.SVPR)
		alarms += sess.HighVPAlarms + sess.LowAPAlarms
	}
	n := float64(len(sessions))
	o.MeanQA = qaSum / n
	o.MinQA = minQA
	o.FinalQA = sessions[len(sessions)-1].QA
	o.MeanSVPR = svprSum / n
	o.MaxSVPR = maxSVPR
	o.MeanRecirculation = recircSum / n
	o.TotalAlarms = alarms
}
