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
	"strings"
)

// PatientFilter prescribes a function type for selecting patients from the
// generated population, to be able to report realized failure rates for
// specific cohorts. E.g. male patients, patients <70 years, diabetics, etc.
type PatientFilter func(patient *Patient) bool

// GetPatientFilter maps a filter name onto its filter function. Unknown names
// map onto the identity filter.
func GetPatientFilter(s string) PatientFilter {
	id := func(p *Patient) bool { return true }
	switch s {
	case "id":
		return id
	case "male":
		return MaleFilter()
	case "female":
		return FemaleFilter()
	case "age70+":
		return AgeAboveFilter(70)
	case "age70-":
		return AgeBelowFilter(70)
	case "diabetic":
		return DiabeticFilter()
	case "cvc":
		return HistoryCVCFilter()
	case "highrisk":
		return HighRiskFilter(lowRiskThreshold)
	case "lowrisk":
		return LowRiskFilter(lowRiskThreshold)
	default:
		return id
	}
}

// GetPatientFilters parses a comma-separated list of filter names.
func GetPatientFilters(filters string) []PatientFilter {
	var result []PatientFilter
	for _, f := range strings.Split(filters, ",") {
		result = append(result, GetPatientFilter(strings.Trim(f, " ")))
	}
	return result
}

// ApplyPatientFilters returns the patients that pass all given filters.
func ApplyPatientFilters(filters []PatientFilter, patients PatientTable) PatientTable {
	var selected PatientTable
	for _, p := range patients {
		res := true
		for _, filter := range filters {
			res = filter(p) && res
			if !res {
				break
			}
		}
		if res {
			selected = append(selected, p)
		}
	}
	return selected
}

// SexFilter selects all patients of the given sex.
func SexFilter(sex int) PatientFilter {
	return func(p *Patient) bool {
		return p.Sex == sex
	}
}

// MaleFilter selects all male patients.
func MaleFilter() PatientFilter {
	return SexFilter(Male)
}

// FemaleFilter selects all female patients.
func FemaleFilter() PatientFilter {
	return SexFilter(Female)
}

// AgeAboveFilter selects all patients of a given age or older.
func AgeAboveFilter(age int) PatientFilter {
	return func(p *Patient) bool {
		return p.Age >= age
	}
}

// AgeBelowFilter selects all patients younger than a given age.
func AgeBelowFilter(age int) PatientFilter {
	return func(p *Patient) bool {
		return p.Age < age
	}
}

// DiabeticFilter selects all diabetic patients.
func DiabeticFilter() PatientFilter {
	return func(p *Patient) bool {
		return p.Diabetes
	}
}

// HistoryCVCFilter selects all patients with prior central catheter use.
func HistoryCVCFilter() PatientFilter {
	return func(p *Patient) bool {
		return p.HistoryCVC
	}
}

// HighRiskFilter selects patients whose baseline risk score is at or above a
// threshold.
func HighRiskFilter(threshold float64) PatientFilter {
	return func(p *Patient) bool {
		return p.BaselineRisk >= threshold
	}
}

// LowRiskFilter selects patients whose baseline risk score is below a
// threshold.
func LowRiskFilter(threshold float64) PatientFilter {
	return func(p *Patient) bool {
		return p.BaselineRisk < threshold
	}
}
