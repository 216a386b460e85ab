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

package lib

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/renalsim/avfsim/pkg/avfsim"
)

// Names of the artifact files consumed by the dashboard layer.
const (
	PatientsFileName   = "patients_baseline.csv"
	TreatmentsFileName = "treatments_timeseries.csv"
	OutcomesFileName   = "failure_outcomes.csv"
)

// WriteArtifacts writes the three generated tables as CSV files to the output
// directory and returns the created file paths.
func WriteArtifacts(path string, patients avfsim.PatientTable, treatments *avfsim.TreatmentTable, outcomes avfsim.OutcomeTable) []string {
	os.Mkdir(path, 0700)
	pName := filepath.Join(path, PatientsFileName)
	WritePatientsCSV(patients, pName)
	tName := filepath.Join(path, TreatmentsFileName)
	WriteTreatmentsCSV(treatments, tName)
	oName := filepath.Join(path, OutcomesFileName)
	WriteOutcomesCSV(outcomes, oName)
	return []string{pName, tName, oName}
}

// WritePatientsCSV writes the patient table to a CSV file. One row per
// patient, keyed by patient_id, boolean flags encoded as 0/1.
func WritePatientsCSV(patients avfsim.PatientTable, name string) {
	file, err := os.Create(name)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			panic(err)
		}
	}()
	w := csv.NewWriter(file)
	defer w.Flush()
	write(w, []string{"patient_id", "age", "sex", "diabetes", "hypertension", "cad", "pvd",
		"prior_interventions", "history_cvc", "baseline_risk_score"})
	for _, p := range patients {
		sex := "M"
		if p.Sex == avfsim.Female {
			sex = "F"
		}
		write(w, []string{
			p.PIDString,
			strconv.Itoa(p.Age),
			sex,
			flag(p.Diabetes),
			flag(p.Hypertension),
			flag(p.CAD),
			flag(p.PVD),
			strconv.Itoa(p.PriorInterventions),
			flag(p.HistoryCVC),
			formatFloat(p.BaselineRisk),
		})
	}
}

// WriteTreatmentsCSV writes the session table to a CSV file. One row per
// (patient_id, treatment_number), patient-major, session-minor.
func WriteTreatmentsCSV(treatments *avfsim.TreatmentTable, name string) {
	file, err := os.Create(name)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			panic(err)
		}
	}()
	w := csv.NewWriter(file)
	defer w.Flush()
	write(w, []string{"patient_id", "treatment_number", "treatment_date", "access_blood_flow_qa",
		"arterial_pressure_mean", "venous_pressure_mean", "map", "svpr", "high_vp_alarms",
		"low_ap_alarms", "access_recirculation_pct", "ktv"})
	for _, s := range treatments.Sessions {
		write(w, []string{
			s.PIDString,
			strconv.Itoa(s.TreatmentNumber),
			s.Date.Format("2006-01-02"),
			formatFloat(s.QA),
			formatFloat(s.ArterialPressureMean),
			formatFloat(s.VenousPressureMean),
			formatFloat(s.MAP),
			formatFloat(s.SVPR),
			strconv.Itoa(s.HighVPAlarms),
			strconv.Itoa(s.LowAPAlarms),
			formatFloat(s.RecirculationPct),
			formatFloat(s.KTV),
		})
	}
}

// WriteOutcomesCSV writes the outcome table to a CSV file. One row per
// patient; failure_treatment_number is empty for surviving patients.
func WriteOutcomesCSV(outcomes avfsim.OutcomeTable, name string) {
	file, err := os.Create(name)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			panic(err)
		}
	}()
	w := csv.NewWriter(file)
	defer w.Flush()
	write(w, []string{"patient_id", "failed", "failure_treatment_number", "baseline_risk_score",
		"mean_qa", "min_qa", "final_qa", "mean_svpr", "max_svpr", "mean_recirculation", "total_alarms"})
	for _, o := range outcomes {
		failureTreatment := ""
		if o.Failed {
			failureTreatment = strconv.Itoa(o.FailureTreatmentNumber)
		}
		write(w, []string{
			o.PIDString,
			flag(o.Failed),
			failureTreatment,
			formatFloat(o.BaselineRisk),
			formatFloat(o.MeanQA),
			formatFloat(o.MinQA),
			formatFloat(o.FinalQA),
			formatFloat(o.MeanSVPR),
			formatFloat(o.MaxSVPR),
			formatFloat(o.MeanRecirculation),
			strconv.Itoa(o.TotalAlarms),
		})
	}
}

func write(w *csv.Writer, record []string) {
	if err := w.Write(record); err != nil {
		panic(err)
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
