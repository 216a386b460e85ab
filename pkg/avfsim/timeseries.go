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

// Physiologic bounds of the session observations.
const (
	qaMin, qaMax     = 200.0, 1500.0
	apMin, apMax     = -350.0, -100.0
	vpMin, vpMax     = 80.0, 400.0
	svprMin, svprMax = 0.1, 1.2
	// low-risk patients never develop a high static venous pressure ratio
	svprLowRiskMax       = 0.5
	lowRiskThreshold     = 0.4
	recircMin, recircMax = 0.0, 40.0
	ktvMin, ktvMax       = 0.6, 2.0
)

// GenerateTreatments synthesizes the ordered treatment-session sequence of
// every patient. Each session's trajectory drifts as a function of the
// patient's baseline risk and the session progression ratio; all stochastic
// continuity comes from those two terms, fresh independent noise is drawn for
// every field at every session. Patients are independent, so the outer loop
// runs in parallel on per-patient sub-streams.
func GenerateTreatments(cfg *Config, patients PatientTable, src *Source) (*TreatmentTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, fmt.Errorf("%w: generate baseline characteristics before the treatment time series", ErrInvalidState)
	}
	table := &TreatmentTable{
		Sessions:   make([]*TreatmentSession, len(patients)*cfg.NofTreatments),
		PerPatient: cfg.NofTreatments,
	}
	parallel.Range(0, len(patients), 0, func(low, high int) {
		for i := low; i < high; i++ {
			generatePatientSessions(cfg, patients[i], src.treatment(patients[i].PID),
				table.Sessions[i*cfg.NofTreatments:(i+1)*cfg.NofTreatments])
		}
	})
	return table, nil
}

// generatePatientSessions fills the session slice of one patient in
// increasing treatment-number order.
func generatePatientSessions(cfg *Config, p *Patient, s *stream, out []*TreatmentSession) {
	risk := p.BaselineRisk
	for t := 0; t < cfg.NofTreatments; t++ {
		// how far along the observation window this session sits, in [0,1)
		progression := float64(t) / float64(cfg.NofTreatments)

		// access blood flow: high-risk patients start lower and decline
		// faster; raw value first, physiologic clip last
		qaBaseline := s.normal(900, 150) - risk*300
		qaDecline := risk * progression * 400
		qa := clip(qaBaseline-qaDecline+s.normal(0, 50), qaMin, qaMax)

		// arterial pressure: more negative means harder to draw blood;
		// worsens with risk and with low flow
		ap := clip(s.normal(-175, 25)-(risk*50+(800-qa)/20), apMin, apMax)

		// venous pressure: outflow obstruction builds with risk over time
		vp := clip(s.normal(140, 20)+risk*progression*100, vpMin, vpMax)

		// static venous pressure ratio; 0.75 converts the dynamic reading
		// to a static approximation
		mapValue := s.normal(90, 5)
		svpr := clip(vp*0.75/mapValue, svprMin, svprMax)
		if risk < lowRiskThreshold {
			svpr = clip(svpr, svprMin, svprLowRiskMax)
		}

		highVP := s.poisson(risk * progression * 5)
		lowAP := s.poisson(risk * progression * 3)

		// recirculation stays below 10% in a healthy access and spikes in
		// the failing-access regime of the current session
		recirc := s.uniform(0, 5)
		if qa < 500 || svpr > 0.5 {
			recirc += s.uniform(5, 20)
		}
		recirc = clip(recirc, recircMin, recircMax)

		// adequacy declines as the access fails
		ktv := clip(s.normal(1.4, 0.2)-(risk*progression*0.4+(800-qa)/2000), ktvMin, ktvMax)

		out[t] = &TreatmentSession{
			PID:                  p.PID,
			PIDString:            p.PIDString,
			TreatmentNumber:      t + 1,
			Date:                 cfg.StartDate.AddDate(0, 0, t*cfg.TreatmentIntervalDays),
			QA:                   round(qa, 1),
			ArterialPressureMean: round(ap, 1),
			VenousPressureMean:   round(vp, 1),
			MAP:                  round(mapValue, 1),
			SVPR:                 round(svpr, 3),
			HighVPAlarms:         highVP,
			LowAPAlarms:          lowAP,
			RecirculationPct:     round(recirc, 1),
			KTV:                  round(ktv, 2),
		}
	}
}

// round rounds a value to the given number of decimal places. Session
// observations are stored at recording precision so that the outcome stage
// and the persisted artifacts see identical values.
func round(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}
