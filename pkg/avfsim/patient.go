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
	"time"
)

const (
	Male   = 0
	Female = 1
)

// Patient represents the baseline characteristics of one simulated dialysis
// patient. A patient record is immutable once generated; its BaselineRisk is
// the hidden severity scalar that drives all downstream generation.
type Patient struct {
	PID                int    //analysis ID, 0-based position in the patient table
	PIDString          string //stable string key, e.g. PT_00042
	Age                int    //age in years, within [25,90]
	Sex                int    //0 = male, 1 = female
	Diabetes           bool
	Hypertension       bool
	CAD                bool //coronary artery disease
	PVD                bool //peripheral vascular disease
	PriorInterventions int  //nr of prior access interventions, within [0,8]
	HistoryCVC         bool //prior central venous catheter use
	BaselineRisk       float64
}

// TreatmentSession represents the observations recorded during a single
// dialysis session. Sessions are generated in order of TreatmentNumber and are
// immutable once generated.
type TreatmentSession struct {
	PID                  int
	PIDString            string
	TreatmentNumber      int //1-based session index
	Date                 time.Time
	QA                   float64 //access blood flow in mL/min, within [200,1500]
	ArterialPressureMean float64 //within [-350,-100]
	VenousPressureMean   float64 //within [80,400]
	MAP                  float64 //mean arterial pressure
	SVPR                 float64 //static venous pressure ratio, within [0.1,1.2]
	HighVPAlarms         int
	LowAPAlarms          int
	RecirculationPct     float64 //access recirculation, within [0,40]
	KTV                  float64 //dialysis adequacy, within [0.6,2.0]
}

// Outcome represents the failure label and the per-patient session summaries
// derived from a patient's full treatment sequence.
type Outcome struct {
	PID                    int
	PIDString              string
	Failed                 bool
	FailureTreatmentNumber int //session at which failure fired; 0 when Failed is false
	BaselineRisk           float64
	MeanQA                 float64
	MinQA                  float64
	FinalQA                float64
	MeanSVPR               float64
	MaxSVPR                float64
	MeanRecirculation      float64
	TotalAlarms            int
}

// PatientTable is the output of the baseline stage: one patient per row,
// ordered by PID.
type PatientTable []*Patient

// OutcomeTable is the output of the outcome stage: one outcome per patient,
// ordered by PID.
type OutcomeTable []*Outcome

// TreatmentTable is the output of the time-series stage. Sessions are stored
// patient-major, session-minor: the sessions of patient p occupy the
// contiguous range [p*PerPatient, (p+1)*PerPatient).
type TreatmentTable struct {
	Sessions   []*TreatmentSession
	PerPatient int
}

// PatientSessions returns the ordered session slice of a single patient.
func (t *TreatmentTable) PatientSessions(pid int) []*TreatmentSession {
	return t.Sessions[pid*t.PerPatient : (pid+1)*t.PerPatient]
}

// PatientID formats the stable string key for a patient position.
func PatientID(pid int) string {
	return fmt.Sprintf("PT_%05d", pid)
}

// FailureCount returns the number of failed patients in an outcome table.
func (o OutcomeTable) FailureCount() int {
	ctr := 0
	for _, outcome := range o {
		if outcome.Failed {
			ctr++
		}
	}
	return ctr
}

// FailureRate returns the realized failure rate of an outcome table. This is
// reported against the configured target rate for information only.
func (o OutcomeTable) FailureRate() float64 {
	if len(o) == 0 {
		return 0
	}
	return float64(o.FailureCount()) / float64(len(o))
}
