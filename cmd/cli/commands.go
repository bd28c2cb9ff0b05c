package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/MelodyDNA/pkg/logger"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/audio"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/search"
)

const defaultHeuristicPath = "configs/patterns/monotonic.json"

var (
	melodies        int
	notes           int
	generations     int
	savePath        string
	play            bool
	algorithm       string
	heuristicConfig string
	seed            uint64
	useJudge        bool
	resume          bool
	wavPath         string
	spectrogramPath string
	metricsFile     string
	temperature     float64
	cooling         float64
	logLevel        string
	quiet           bool
	deleteRun       string

	rootCmd = &cobra.Command{
		Use:   "melodydna",
		Short: "Search for melodies that fit a pattern heuristic",
		Long: `melodydna evolves a population of short melodies with a genetic algorithm
or simulated annealing, scoring them with a configurable pattern heuristic.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				level, err := logger.ParseLevel(logLevel)
				if err != nil {
					return err
				}
				logger.SetLevel(level)
			}
			return nil
		},
		RunE: runGenerate, // Defined in cmd_generate.go
	}

	showCmd = &cobra.Command{
		Use:   "show <file>",
		Short: "Score every melody of a saved population",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow, // Defined in cmd_show.go
	}

	patternsCmd = &cobra.Command{
		Use:   "patterns",
		Short: "List the builtin heuristic configs and pattern kinds",
		Args:  cobra.NoArgs,
		RunE:  runPatterns, // Defined in cmd_show.go
	}

	spectrogramCmd = &cobra.Command{
		Use:   "spectrogram <wav> <png>",
		Short: "Draw a spectrogram PNG from a WAV file",
		Args:  cobra.ExactArgs(2),
		RunE:  runSpectrogram, // Defined in cmd_show.go
	}

	runsCmd = &cobra.Command{
		Use:   "runs <database>",
		Short: "List (or delete) the runs stored in a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE:  runRuns, // Defined in cmd_show.go
	}
)

// envSeed is read at run time so a seed from .env applies too.
func envSeed() uint64 {
	if v := os.Getenv("MELODY_SEED"); v != "" {
		if s, err := strconv.ParseUint(v, 10, 64); err == nil {
			return s
		}
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&heuristicConfig, "heuristic-config", "c", defaultHeuristicPath,
		"Heuristic config file (YAML or JSON) or builtin:<name>")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error); overrides "+logger.EnvLevel)

	flags := rootCmd.Flags()
	flags.IntVarP(&melodies, "melodies", "m", 6, "Number of melodies in the population")
	flags.IntVarP(&notes, "notes", "n", 8, "Number of notes per melody")
	flags.IntVarP(&generations, "generations", "g", 1000, "Generations (annealing iterations) to run")
	flags.StringVarP(&savePath, "save", "s", "melodies.json",
		"Where to save the final population (.json, or .sqlite/.sqlite3/.db for a database)")
	flags.BoolVarP(&play, "play", "p", false, "Play the best melody when done (player from "+audio.EnvPlayer+")")
	flags.StringVarP(&algorithm, "algorithm", "a", search.AlgorithmGenetic,
		"Search algorithm: "+search.AlgorithmGenetic+" or "+search.AlgorithmAnnealing)
	flags.Uint64Var(&seed, "seed", 0, "Random seed, 0 seeds from the clock (default $MELODY_SEED)")
	flags.BoolVar(&useJudge, "judge", false, "Pick parents by asking which of two melodies you prefer")
	flags.BoolVar(&resume, "resume", false, "Start from the population stored at --save")
	flags.StringVar(&wavPath, "wav", "", "Write the best melody to this WAV file")
	flags.StringVar(&spectrogramPath, "spectrogram", "", "Write a spectrogram PNG of the best melody")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")
	flags.Float64Var(&temperature, "temperature", search.DefaultTemperature, "Annealing start temperature")
	flags.Float64Var(&cooling, "cooling", search.DefaultCooling, "Annealing cooling factor in (0, 1]")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Do not print the banner")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(spectrogramCmd)

	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&deleteRun, "delete", "", "Delete the run with this id")
}
