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

package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renalsim/avfsim/lib"
)

func TestRunWritesArtifacts(t *testing.T) {
	params := DefaultParams()
	params.Name = "smoke"
	params.OutputPath = t.TempDir()
	params.NofPatients = 20
	params.NofTreatments = 30
	params.RandomSeed = 1

	require.NoError(t, Run(params))

	outputDir := filepath.Join(params.OutputPath, "smoke")
	for _, name := range []string{
		lib.PatientsFileName,
		lib.TreatmentsFileName,
		lib.OutcomesFileName,
		lib.ManifestFileName,
	} {
		info, err := os.Stat(filepath.Join(outputDir, name))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}
