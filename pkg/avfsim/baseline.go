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

	"github.com/exascience/pargo/parallel"
)

// Documented prevalences of the baseline population.
const (
	maleProbability         = 0.55
	diabetesPrevalence      = 0.40
	hypertensionPrevalence  = 0.80
	cadPrevalence           = 0.30
	pvdPrevalence           = 0.25
	historyCVCPrevalence    = 0.35
	maxPriorInterventions   = 8
	ageGammaShape           = 7.0
	ageGammaScale           = 9.0
	minAge                  = 25
	maxAge                  = 90
	baselineRiskNoiseStddev = 0.1
)

// GenerateBaseline synthesizes the patient table: demographics, comorbidities,
// and the latent baseline risk score in [0,1]. Patients are generated
// independently on per-patient sub-streams, so the outer loop runs in
// parallel without affecting the output.
func GenerateBaseline(cfg *Config, src *Source) (PatientTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	patients := make(PatientTable, cfg.NofPatients)
	parallel.Range(0, cfg.NofPatients, 0, func(low, high int) {
		for pid := low; pid < high; pid++ {
			patients[pid] = generatePatient(pid, src.baseline(pid))
		}
	})
	return patients, nil
}

// generatePatient draws one patient. The draw order is fixed, cf. rng.go.
func generatePatient(pid int, s *stream) *Patient {
	p := &Patient{
		PID:       pid,
		PIDString: PatientID(pid),
	}
	p.Age = int(clip(s.gamma(ageGammaShape, ageGammaScale), minAge, maxAge))
	if s.bernoulli(maleProbability) {
		p.Sex = Male
	} else {
		p.Sex = Female
	}
	p.Diabetes = s.bernoulli(diabetesPrevalence)
	p.Hypertension = s.bernoulli(hypertensionPrevalence)
	p.CAD = s.bernoulli(cadPrevalence)
	p.PVD = s.bernoulli(pvdPrevalence)
	// most patients have 0-2 prior interventions, few have many
	interventions := s.negativeBinomial(1, 0.5)
	if interventions > maxPriorInterventions {
		interventions = maxPriorInterventions
	}
	p.PriorInterventions = interventions
	p.HistoryCVC = s.bernoulli(historyCVCPrevalence)
	p.BaselineRisk = baselineRisk(p, s)
	return p
}

// baselineRisk computes the hidden severity scalar of a patient as a weighted
// additive combination of demographics and comorbidities plus biological
// noise, clipped to [0,1]. It consumes exactly one noise draw.
func baselineRisk(p *Patient, s *stream) float64 {
	risk := (float64(p.Age) - 25) / 65 * 0.2
	if p.Sex == Female {
		risk += 0.15
	}
	if p.Diabetes {
		risk += 0.15
	}
	if p.Hypertension {
		risk += 0.05
	}
	if p.CAD {
		risk += 0.10
	}
	if p.PVD {
		risk += 0.15
	}
	risk += float64(p.PriorInterventions) * 0.05
	if p.HistoryCVC {
		// major risk factor for central stenosis
		risk += 0.12
	}
	risk += s.normal(0, baselineRiskNoiseStddev)
	return clip(risk, 0, 1)
}

// DescribeBaseline returns a short human-readable summary of a patient table.
func DescribeBaseline(patients PatientTable) string {
	males, diabetics := 0, 0
	riskSum := 0.0
	for _, p := range patients {
		if p.Sex == Male {
			males++
		}
		if p.Diabetes {
			diabetics++
		}
		riskSum += p.BaselineRisk
	}
	return fmt.Sprintf("%d patients (%d male, %d female), %d diabetic, mean baseline risk %.3f",
		len(patients), males, len(patients)-males, diabetics, riskSum/float64(len(patients)))
}
