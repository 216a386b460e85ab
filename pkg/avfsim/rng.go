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
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Each (stage, patient) pair gets its own deterministic sub-stream derived
// from the run seed. This keeps the per-patient loops bit-exact under
// parallel execution: a patient's draws never depend on scheduling order.
//
// The draw order within a stream is fixed and part of the output contract:
//   baseline:  age, sex, diabetes, hypertension, cad, pvd,
//              prior interventions, history of cvc, risk noise
//   treatment: per session: qa baseline, qa session noise, arterial pressure,
//              venous pressure, map, high-vp alarms, low-ap alarms,
//              recirculation baseline, recirculation excess (conditional), ktv
//   outcome:   per eligible session: probability jitter, then the trial draw
//              only when the jittered probability exceeds the firing threshold
const (
	baselineStage = 1 + iota
	treatmentStage
	outcomeStage
)

// Source derives the per-patient draw streams of a run from a single seed.
// It is the explicit random handle threaded through all three stages.
type Source struct {
	seed int64
}

// NewSource returns the random source for a run seed.
func NewSource(seed int64) *Source {
	return &Source{seed: seed}
}

// subStream mixes the run seed, the stage tag, and the patient ID into an
// independent stream. The multipliers are the usual splitmix64 constants.
func (s *Source) subStream(stage, pid int) *stream {
	h := uint64(s.seed)
	h ^= uint64(stage) * 0x9e3779b97f4a7c15
	h ^= uint64(pid+1) * 0xbf58476d1ce4e5b9
	return &stream{rng: rand.New(rand.NewSource(h))}
}

func (s *Source) baseline(pid int) *stream {
	return s.subStream(baselineStage, pid)
}

func (s *Source) treatment(pid int) *stream {
	return s.subStream(treatmentStage, pid)
}

func (s *Source) outcome(pid int) *stream {
	return s.subStream(outcomeStage, pid)
}

// stream wraps one deterministic generator with the distribution draws the
// simulator needs. All draws consume the single underlying generator in call
// order.
type stream struct {
	rng *rand.Rand
}

func (s *stream) float() float64 {
	return s.rng.Float64()
}

func (s *stream) bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

func (s *stream) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.rng}.Rand()
}

// gamma draws from a Gamma distribution parameterized by shape and scale.
func (s *stream) gamma(shape, scale float64) float64 {
	return distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: s.rng}.Rand()
}

func (s *stream) uniform(min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: s.rng}.Rand()
}

func (s *stream) poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: s.rng}.Rand())
}

// negativeBinomial draws the number of failures before r successes with
// success probability p. For r = 1 this collapses to a geometric count, which
// is the only shape the baseline stage needs; distuv has no negative-binomial
// distribution.
func (s *stream) negativeBinomial(r int, p float64) int {
	failures := 0
	for successes := 0; successes < r; {
		if s.rng.Float64() < p {
			successes++
		} else {
			failures++
		}
	}
	return failures
}

// clip constrains a value to a closed interval. Every bounded physiologic
// field passes through clip as the final step of its computation.
func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
