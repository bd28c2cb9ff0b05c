package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/MelodyDNA/pkg/melodydna"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/audio"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/heuristic"
	"github.com/himanishpuri/MelodyDNA/pkg/melodydna/storage"
)

func runShow(cmd *cobra.Command, args []string) error {
	svc, err := melodydna.NewService(
		melodydna.WithHeuristic(heuristicRef(cmd)),
		melodydna.WithSavePath(args[0]),
	)
	if err != nil {
		return err
	}
	defer svc.Close()

	pop, err := svc.LoadPopulation()
	if err != nil {
		return err
	}
	if len(pop) == 0 {
		fmt.Println("Population is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSCORE\tMELODY\n")
	best := 0
	scores := make([]float64, len(pop))
	for id, m := range pop {
		scores[id] = svc.Evaluate(m)
		if scores[id] > scores[best] {
			best = id
		}
		fmt.Fprintf(w, "%d\t%g\t%s\n", id, scores[id], m)
	}
	w.Flush()

	fmt.Printf("\nBest: melody %d, %s score %g\n", best, svc.HeuristicName(), scores[best])
	return nil
}

func runPatterns(cmd *cobra.Command, args []string) error {
	fmt.Println("Builtin configs (use with -c builtin:<name>):")
	for _, name := range heuristic.Builtins() {
		h, err := heuristic.FromRef(heuristic.BuiltinPrefix + name)
		if err != nil {
			fmt.Printf("  %-12s (invalid: %v)\n", name, err)
			continue
		}
		fmt.Printf("  %-12s %s [%s]\n", name, h.Name(), h.Pattern())
	}

	fmt.Println("\nPattern kinds:")
	for _, p := range heuristic.Patterns() {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func runSpectrogram(cmd *cobra.Command, args []string) error {
	samples, rate, err := audio.ReadWAV(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	if err := audio.SaveSpectrogram(args[1], samples, rate); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}
	fmt.Printf("Spectrogram of %s (%d samples at %d Hz) written to %s\n", args[0], len(samples), rate, args[1])
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	if !melodydna.IsSQLitePath(args[0]) {
		return fmt.Errorf("%s is not a SQLite database (.sqlite, .sqlite3, .db)", args[0])
	}
	db, err := storage.NewDBClientWithPath(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	if deleteRun != "" {
		if err := db.DeleteRun(deleteRun); err != nil {
			return err
		}
		fmt.Printf("Deleted run %s\n", deleteRun)
		return nil
	}

	runs, err := db.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return storage.ErrNoRuns
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tCREATED\tMELODIES\tNOTES\tLABEL\n")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Melodies, r.Notes, r.Label)
	}
	return w.Flush()
}
