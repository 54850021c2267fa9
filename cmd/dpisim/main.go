package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dpisim/internal/config"
	"github.com/san-kum/dpisim/internal/experiment"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	// run parameters
	configFile string
	preset     string
	runName    string
	num        []float64
	den        []float64
	ts         float64
	duration   float64
	kp         float64
	ti         float64
	uMin       float64
	uMax       float64
	setpoint   float64
	refKind    string
	refAt      float64

	// outputs
	pngPath  string
	showPlot bool
	live     bool
	noSave   bool
)

// main registers the dpisim commands and executes the root command, exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "dpisim",
		Short:         "discrete PI closed-loop simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				Level:           lvl,
				ReportTimestamp: true,
				Prefix:          "dpisim",
			})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dpisim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate the closed loop and store the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&pngPath, "png", "", "write a response/control figure to this PNG file")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "print terminal plots")
	runCmd.Flags().BoolVar(&live, "live", false, "show progress while simulating")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	discretizeCmd := &cobra.Command{
		Use:   "discretize",
		Short: "print the zero-order-hold discretization and PI coefficients",
		Args:  cobra.NoArgs,
		RunE:  discretizePlant,
	}
	addConfigFlags(discretizeCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "write a PNG figure instead of terminal plots")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s %s kp=%g ti=%g ts=%g limits=[%g, %g]\n",
					name, p.Plant, p.Controller.Kp, p.Controller.Ti, p.Ts, p.Limits.Min, p.Limits.Max)
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over kp and ti",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepKps, "kps", []float64{0.2, 0.4, 0.8, 1.2, 1.6, 2.0}, "kp candidates")
	sweepCmd.Flags().Float64SliceVar(&sweepTis, "tis", []float64{3, 6, 9, 15, 30}, "ti candidates")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "iae", "metric to minimize")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel simulations (0 = GOMAXPROCS)")
	sweepCmd.Flags().IntVar(&sweepTop, "top", 10, "number of candidates to print")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	robustCmd := &cobra.Command{
		Use:   "robust",
		Short: "monte carlo over perturbed plant coefficients",
		Args:  cobra.NoArgs,
		RunE:  runRobust,
	}
	addConfigFlags(robustCmd)
	robustCmd.Flags().IntVar(&mcTrials, "trials", 100, "number of trials")
	robustCmd.Flags().Float64Var(&mcPerturb, "perturb", 0.2, "relative coefficient perturbation")
	robustCmd.Flags().Int64Var(&mcSeed, "seed", 1, "random seed (0 = time based)")

	watchCmd := &cobra.Command{
		Use:   "watch [run_id]",
		Short: "replay a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  watchRun,
	}

	rootCmd.AddCommand(runCmd, discretizeCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd,
		presetsCmd, sweepCmd, scenarioCmd, robustCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&runName, "name", "", "run name")
	f.Float64SliceVar(&num, "num", d.Plant.Num, "continuous numerator, highest power first")
	f.Float64SliceVar(&den, "den", d.Plant.Den, "continuous denominator, highest power first")
	f.Float64Var(&ts, "ts", d.Ts, "sample period (s)")
	f.Float64Var(&duration, "time", d.Duration, "simulated duration (s)")
	f.Float64Var(&kp, "kp", d.Controller.Kp, "proportional gain")
	f.Float64Var(&ti, "ti", d.Controller.Ti, "integral time (s)")
	f.Float64Var(&uMin, "umin", d.Limits.Min, "lower actuator limit")
	f.Float64Var(&uMax, "umax", d.Limits.Max, "upper actuator limit")
	f.Float64Var(&setpoint, "setpoint", d.Reference.Value, "reference value")
	f.StringVar(&refKind, "ref", d.Reference.Kind, "reference kind (step, constant, ramp)")
	f.Float64Var(&refAt, "step-at", d.Reference.At, "time of the reference step (s)")
}

// resolveConfig builds the run configuration: defaults, then preset, then config file,
// then any flag given explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Name = runName
	}
	if f.Changed("num") {
		cfg.Plant.Num = num
	}
	if f.Changed("den") {
		cfg.Plant.Den = den
	}
	if f.Changed("ts") {
		cfg.Ts = ts
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("kp") {
		cfg.Controller.Kp = kp
	}
	if f.Changed("ti") {
		cfg.Controller.Ti = ti
	}
	if f.Changed("umin") {
		cfg.Limits.Min = uMin
	}
	if f.Changed("umax") {
		cfg.Limits.Max = uMax
	}
	if f.Changed("setpoint") {
		cfg.Reference.Value = setpoint
	}
	if f.Changed("ref") {
		cfg.Reference.Kind = refKind
	}
	if f.Changed("step-at") {
		cfg.Reference.At = refAt
	}

	return cfg, cfg.Validate()
}

func newRunner() *experiment.Runner {
	return experiment.NewRunner(experiment.WithLogger(logger))
}
