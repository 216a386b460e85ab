package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/renalsim/avfsim/app"
)

/*
Avfsim is a tool for generating synthetic arteriovenous fistula (AVF) failure
data: a baseline patient table, a longitudinal treatment-session table, and a
risk-correlated failure-outcome table, suitable for training and demoing
access-failure prediction models.

Usage:
	avfsim path [flags]

Example:
	avfsim ./data/raw --name demo --nPatients 1000 --nTreatments 156
	--treatmentIntervalDays 2 --failureRate 0.30 --seed 42
	--cohorts "male,female,age70+,diabetic,highrisk"

The flags are:

--name string
	The name of the run. This name is used to generate the names of the output
	files.
--nPatients nr
	The number of patients to simulate.
--nTreatments nr
	The number of treatment sessions to simulate per patient. With the default
	2-day interval, 156 sessions cover roughly one year of thrice-weekly
	dialysis.
--treatmentIntervalDays nr
	The number of days between subsequent treatment sessions.
--failureRate nr
	The target population failure rate in (0,1). The target is informational:
	the generator reports the realized rate against it but never calibrates.
--seed nr
	The random seed. Two runs with the same seed and parameters produce
	byte-identical output tables.
--cohorts list
	A comma-separated list of patient filters (id | male | female | age70+ |
	age70- | diabetic | cvc | highrisk | lowrisk) for which the realized
	failure rate is reported separately.
--config file
	A YAML file with run parameters. File values fill in parameters left at
	their command-line defaults; explicit flags win.
--nrOfThreads nr
	The number of threads avfsim uses.
*/

const (
	programVersion = 0.1
	programName    = "avfsim"
)

func programMessage() string {
	return fmt.Sprint(programName, " version ", programVersion, " compiled with ", runtime.Version())
}

const avfsimHelp = "\navfsim parameters:\n" +
	"avfsim outputPath \n" +
	"[--name string]\n" +
	"[--nPatients nr]\n" +
	"[--nTreatments nr]\n" +
	"[--treatmentIntervalDays nr]\n" +
	"[--failureRate nr]\n" +
	"[--seed nr]\n" +
	"[--cohorts id | male | female | age70+ | age70- | diabetic | cvc | highrisk | lowrisk]\n" +
	"[--config file]\n" +
	"[--nrOfThreads nr]\n"

func parseFlags(flags flag.FlagSet, requiredArgs int, help string) {
	if len(os.Args) < requiredArgs {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
	flags.SetOutput(io.Discard)
	if err := flags.Parse(os.Args[requiredArgs:]); err != nil {
		x := 0
		if err != flag.ErrHelp {
			fmt.Fprint(os.Stderr, err)
		}
		fmt.Fprint(os.Stderr, help)
		os.Exit(x)
	}
	if flags.NArg() > 0 {
		fmt.Fprint(os.Stderr, "Cannot parse remaining parameters:", flags.Args())
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
}

func getFileName(s, help string) string {
	switch s {
	case "-h", "--h", "-help", "--help":
		fmt.Fprint(os.Stderr, help)
		os.Exit(1)
	}
	return s
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	fmt.Println(programMessage())

	params := app.DefaultParams()
	var flags flag.FlagSet

	// extract SimulationParams from command line params
	flags.StringVar(&params.Name, "name", params.Name, "The name of the run. This is used to generate the "+
		"names of the output files.")
	flags.IntVar(&params.NofPatients, "nPatients", params.NofPatients, "The number of patients to simulate.")
	flags.IntVar(&params.NofTreatments, "nTreatments", params.NofTreatments, "The number of treatment "+
		"sessions to simulate per patient.")
	flags.IntVar(&params.TreatmentIntervalDays, "treatmentIntervalDays", params.TreatmentIntervalDays,
		"The number of days between subsequent treatment sessions.")
	flags.Float64Var(&params.FailureRate, "failureRate", params.FailureRate, "The target population "+
		"failure rate. Informational only: reported against the realized rate, never enforced.")
	flags.Int64Var(&params.RandomSeed, "seed", params.RandomSeed, "The random seed for reproducible runs.")
	flags.StringVar(&params.Cohorts, "cohorts", params.Cohorts, "A list of patient filters for which the "+
		"realized failure rate is reported separately.")
	flags.StringVar(&params.ConfigFile, "config", "", "A YAML file with run parameters. Explicit flags win.")
	flags.IntVar(&params.NrOfThreads, "nrOfThreads", 0, "The number of threads avfsim uses.")

	// parse optional arguments
	parseFlags(flags, 2, avfsimHelp)

	// parse required arguments
	params.OutputPath, _ = filepath.Abs(getFileName(os.Args[1], avfsimHelp))
	fmt.Println("Output path: ", params.OutputPath)

	// build an output command line
	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " ", params.OutputPath)
	fmt.Fprint(&command, " --name ", params.Name)
	fmt.Fprint(&command, " --nPatients ", params.NofPatients)
	fmt.Fprint(&command, " --nTreatments ", params.NofTreatments)
	fmt.Fprint(&command, " --treatmentIntervalDays ", params.TreatmentIntervalDays)
	fmt.Fprint(&command, " --failureRate ", params.FailureRate)
	fmt.Fprint(&command, " --seed ", params.RandomSeed)
	fmt.Fprint(&command, " --cohorts ", params.Cohorts)

	if params.ConfigFile != "" {
		fmt.Fprint(&command, " --config ", params.ConfigFile)
	}

	if params.NrOfThreads > 0 {
		fmt.Fprint(&command, " --nrOfThreads ", params.NrOfThreads)
	}

	fmt.Println(command.String())

	if err := app.Run(params); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}
