package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/san-kum/dpisim/internal/automation"
	"github.com/san-kum/dpisim/internal/control"
	"github.com/san-kum/dpisim/internal/discretize"
	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/san-kum/dpisim/internal/optim"
	"github.com/san-kum/dpisim/internal/report"
	"github.com/san-kum/dpisim/internal/sim"
	"github.com/san-kum/dpisim/internal/storage"
	"github.com/san-kum/dpisim/internal/tui"
	"github.com/spf13/cobra"
)

var (
	sweepKps     []float64
	sweepTis     []float64
	sweepMetric  string
	sweepWorkers int
	sweepTop     int

	mcTrials  int
	mcPerturb float64
	mcSeed    int64
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var observers []dynamo.Observer
	if live {
		n, err := sim.Config{Ts: cfg.Ts, Duration: cfg.Duration}.Steps()
		if err != nil {
			return err
		}
		observers = append(observers, tui.NewProgress(os.Stdout, n, 30))
	}

	start := time.Now()
	run, err := newRunner().Execute(cfg, observers...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := storage.NewMetadata(run)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(run)
		if err != nil {
			return err
		}
		meta.ID = id
	}

	fmt.Println(report.Summary(meta))
	fmt.Printf("completed in %v\n", elapsed)

	if showPlot {
		fmt.Println()
		fmt.Print(report.ASCII(run.Result.Series, report.DefaultASCIIOptions()))
	}
	if pngPath != "" {
		if err := report.SavePNG(pngPath, run.Result.Series, report.DefaultFigureOptions()); err != nil {
			return err
		}
		fmt.Printf("figure written to %s\n", pngPath)
	}
	return nil
}

func discretizePlant(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	coeffs, err := discretize.New(nil).Discretize(cfg.Plant, cfg.Ts)
	if err != nil {
		return err
	}
	ctrl, err := control.NewIncremental(cfg.Controller, cfg.Ts, cfg.Limits)
	if err != nil {
		return err
	}

	fmt.Printf("continuous plant: G(s) = %s\n", cfg.Plant)
	fmt.Printf("discrete plant (zoh, ts=%g): num=%v den=%v\n", cfg.Ts, coeffs.Num, coeffs.Den)
	fmt.Printf("recurrence: %s\n", coeffs)
	fmt.Printf("dc gain: %.6g\n", coeffs.DCGain())
	fmt.Printf("b1=%.10g a1=%.10g\n", coeffs.B1, coeffs.A1)
	fmt.Printf("K0=%.10g K1=%.10g\n", ctrl.K0, ctrl.K1)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPLANT\tTS\tKP\tTI\tIAE\tSAT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%.4g\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Plant,
			run.Ts,
			run.Gains.Kp,
			run.Gains.Ti,
			run.Metrics["iae"],
			run.Saturated,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	if pngPath != "" {
		if err := report.SavePNG(pngPath, series, report.DefaultFigureOptions()); err != nil {
			return err
		}
		fmt.Printf("figure written to %s\n", pngPath)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", series.Len())
	fmt.Print(report.ASCII(series, report.DefaultASCIIOptions()))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	series, err := storage.New(dataDir).LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, series)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, series)
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("sweep", "kps", len(sweepKps), "tis", len(sweepTis), "metric", sweepMetric)
	best, grid, err := optim.NewGridSearch(sweepKps, sweepTis, sweepWorkers).
		Search(ctx, newRunner(), base, sweepMetric)
	if err != nil {
		return err
	}

	sort.SliceStable(grid, func(i, j int) bool { return grid[i].Score < grid[j].Score })
	if sweepTop > 0 && len(grid) > sweepTop {
		grid = grid[:sweepTop]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KP\tTI\t%s\n", sweepMetric)
	for _, c := range grid {
		fmt.Fprintf(w, "%g\t%g\t%.6g\n", c.Gains.Kp, c.Gains.Ti, c.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: kp=%g ti=%g %s=%.6g\n", best.Gains.Kp, best.Gains.Ti, sweepMetric, best.Score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runs, err := automation.RunScenario(ctx, scenario, newRunner(), st, logger)
	if err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d runs\n", scenario.Name, len(runs))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKP\tTI\tIAE\tOVERSHOOT%\tSETTLING\tSAT")
	for _, r := range runs {
		m := r.Result.Metrics
		fmt.Fprintf(w, "%s\t%g\t%g\t%.4g\t%.3g\t%.3g\t%d\n",
			r.Config.Name, r.Config.Controller.Kp, r.Config.Controller.Ti,
			m["iae"], m["overshoot_pct"], m["settling_time"], r.Result.Saturated)
	}
	return w.Flush()
}

func runRobust(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
	}, newRunner())
	if err != nil {
		return err
	}

	settled, unsettled := automation.MonteCarloStats(results)
	worst := 0.0
	for _, r := range results {
		worst = max(worst, r.Overshoot)
	}

	fmt.Printf("trials: %d (perturbation ±%.0f%%)\n", len(results), mcPerturb*100)
	fmt.Printf("settled: %d\n", settled)
	fmt.Printf("not settled: %d\n", unsettled)
	fmt.Printf("worst overshoot: %.3g%%\n", worst)
	return nil
}

func watchRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	return tui.Run(meta.ID, series, meta.Limits)
}
