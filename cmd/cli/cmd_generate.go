package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/MelodyDNA/pkg/logger"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/audio"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/judge"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/metrics"
	"github.com/himanishpuri/MelodyDNA/pkg/utils"
)

// heuristicRef falls back to the embedded copy when the default config path is not
// present, e.g. when run outside the repository.
func heuristicRef(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("heuristic-config") && !utils.FileExists(heuristicConfig) {
		return melodydna.DefaultHeuristic
	}
	return heuristicConfig
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()
	if !quiet {
		printBanner()
	}

	if !cmd.Flags().Changed("seed") {
		seed = envSeed()
	}

	player := audio.NewPlayer()
	opts := []melodydna.Option{
		melodydna.WithHeuristic(heuristicRef(cmd)),
		melodydna.WithSavePath(savePath),
		melodydna.WithAlgorithm(algorithm),
		melodydna.WithSeed(seed),
		melodydna.WithTemperature(temperature),
		melodydna.WithCooling(cooling),
		melodydna.WithResume(resume),
		melodydna.WithPlayer(player),
	}

	var sm *metrics.SearchMetrics
	if metricsFile != "" {
		sm = metrics.NewSearchMetrics()
		opts = append(opts, melodydna.WithObserver(sm))
	}

	if useJudge {
		if !judge.Interactive(os.Stdin) {
			log.Warnf("--judge reads answers from stdin, which is not a terminal")
		}
		var judgePlayer judge.Player
		if play {
			judgePlayer = player
		}
		opts = append(opts, melodydna.WithJudge(judge.NewConsole(judgePlayer)))
	}

	svc, err := melodydna.NewService(opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.Generate(melodies, notes, generations)
	if err != nil {
		return err
	}

	fmt.Printf("%s score: %g\n", res.Name, res.BestScore)
	fmt.Printf("Best melody: %s\n", res.BestMelody)
	fmt.Printf("Improved by %g over the starting population (%d rounds)\n", res.Improvement(), res.Generations)

	if sm != nil {
		if err := sm.WriteTextfile(metricsFile); err != nil {
			log.Errorf("%v", err)
		} else {
			log.Infof("metrics written to %s", metricsFile)
		}
	}

	if wavPath != "" || spectrogramPath != "" {
		samples := audio.Render(res.BestMelody, audio.DefaultRenderConfig())
		if wavPath != "" {
			if err := audio.WriteWAV(wavPath, samples, audio.DefaultSampleRate); err != nil {
				return fmt.Errorf("writing %s: %w", wavPath, err)
			}
			log.Infof("best melody written to %s", wavPath)
		}
		if spectrogramPath != "" {
			if err := audio.SaveSpectrogram(spectrogramPath, samples, audio.DefaultSampleRate); err != nil {
				return fmt.Errorf("writing %s: %w", spectrogramPath, err)
			}
			log.Infof("spectrogram written to %s", spectrogramPath)
		}
	}

	if play {
		if err := svc.Play(context.Background(), res.BestMelody); err != nil {
			log.Warnf("playback failed: %v", err)
		}
	}
	return nil
}
