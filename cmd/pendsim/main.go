package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pendsim/internal/config"
	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/metrics"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/storage"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

var (
	dataDir string
	solver  string
	tStart  float64
	tEnd    float64
	samples int
	theta1  float64
	omega1  float64
	theta2  float64
	omega2  float64
	gravity float64
	l1, l2  float64
	m1, m2  float64
	relTol  float64
	absTol  float64
	maxStep int
	timeout time.Duration
	noSave  bool

	configFile string
	preset     string

	// sweep
	runs   int
	spread float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pendsim",
		Short: "double pendulum simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pendsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate a trajectory and project bob positions",
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip saving the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run perturbed initial conditions concurrently",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&runs, "runs", 8, "number of trajectories")
	sweepCmd.Flags().Float64Var(&spread, "spread", 1e-6, "theta1 perturbation between neighbors (rad)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list named presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "terminal plot of a stored run's bob-2 x coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	rootCmd.AddCommand(runCmd, sweepCmd, presetsCmd, listCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&solver, "solver", def.Solver, "solver (rk45, rk4)")
	cmd.Flags().Float64Var(&tStart, "t-start", def.TStart, "start time")
	cmd.Flags().Float64Var(&tEnd, "t-end", def.TEnd, "end time")
	cmd.Flags().IntVar(&samples, "samples", def.Samples, "number of sample times")
	cmd.Flags().Float64Var(&theta1, "theta1", def.InitState.Theta1, "initial angle of arm 1 (rad)")
	cmd.Flags().Float64Var(&omega1, "omega1", def.InitState.Omega1, "initial angular velocity of arm 1")
	cmd.Flags().Float64Var(&theta2, "theta2", def.InitState.Theta2, "initial angle of arm 2 (rad)")
	cmd.Flags().Float64Var(&omega2, "omega2", def.InitState.Omega2, "initial angular velocity of arm 2")
	cmd.Flags().Float64Var(&gravity, "g", def.Params.G, "gravity")
	cmd.Flags().Float64Var(&l1, "l1", def.Params.L1, "length of rod 1")
	cmd.Flags().Float64Var(&l2, "l2", def.Params.L2, "length of rod 2")
	cmd.Flags().Float64Var(&m1, "m1", def.Params.M1, "mass of bob 1")
	cmd.Flags().Float64Var(&m2, "m2", def.Params.M2, "mass of bob 2")
	cmd.Flags().Float64Var(&relTol, "rel", def.Tolerances.Rel, "relative tolerance")
	cmd.Flags().Float64Var(&absTol, "abs", def.Tolerances.Abs, "absolute tolerance")
	cmd.Flags().IntVar(&maxStep, "max-steps", def.Tolerances.MaxSteps, "step budget")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "wall-clock ceiling (0 = none)")
}

// buildConfig resolves preset, config file, and flags, in increasing
// precedence, mirroring the run command's documented behavior.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("solver") {
		cfg.Solver = solver
	}
	if cmd.Flags().Changed("t-start") {
		cfg.TStart = tStart
	}
	if cmd.Flags().Changed("t-end") {
		cfg.TEnd = tEnd
	}
	if cmd.Flags().Changed("samples") {
		cfg.Samples = samples
	}
	if cmd.Flags().Changed("theta1") {
		cfg.InitState.Theta1 = theta1
	}
	if cmd.Flags().Changed("omega1") {
		cfg.InitState.Omega1 = omega1
	}
	if cmd.Flags().Changed("theta2") {
		cfg.InitState.Theta2 = theta2
	}
	if cmd.Flags().Changed("omega2") {
		cfg.InitState.Omega2 = omega2
	}
	if cmd.Flags().Changed("g") {
		cfg.Params.G = gravity
	}
	if cmd.Flags().Changed("l1") {
		cfg.Params.L1 = l1
	}
	if cmd.Flags().Changed("l2") {
		cfg.Params.L2 = l2
	}
	if cmd.Flags().Changed("m1") {
		cfg.Params.M1 = m1
	}
	if cmd.Flags().Changed("m2") {
		cfg.Params.M2 = m2
	}
	if cmd.Flags().Changed("rel") {
		cfg.Tolerances.Rel = relTol
	}
	if cmd.Flags().Changed("abs") {
		cfg.Tolerances.Abs = absTol
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.Tolerances.MaxSteps = maxStep
	}

	return cfg, nil
}

func runContext() (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(context.Background(), timeout)
	}
	return context.Background(), func() {}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sv, err := integrators.New(cfg.Solver)
	if err != nil {
		return err
	}

	params := cfg.PhysicalParams()
	sys := physics.NewDoublePendulum(params)

	ctx, cancel := runContext()
	defer cancel()

	start := time.Now()
	traj, err := sv.Solve(ctx, sys, cfg.GetInitState(), cfg.GetSpan(), cfg.GetSampleTimes(), cfg.GetTolerances())
	elapsed := time.Since(start)

	if err != nil {
		var ierr *dynamo.IntegrationError
		if errors.As(err, &ierr) {
			fmt.Println(yellow.Render(fmt.Sprintf(
				"integration failed: %v (%d partial samples kept)", ierr, ierr.Partial.Len())))
		}
		return err
	}

	positions := physics.Project(traj, params)
	drift := metrics.EnergyDrift(sys, traj)

	fmt.Println(cyan.Render("double pendulum"))
	fmt.Printf("  %s %s\n", dim.Render("solver:"), cfg.Solver)
	fmt.Printf("  %s [%.6g, %.6g] s, %d samples\n", dim.Render("span:"), cfg.TStart, cfg.TEnd, traj.Len())
	fmt.Printf("  %s %.3e\n", dim.Render("energy drift:"), drift)
	fmt.Printf("  %s %s\n", dim.Render("elapsed:"), elapsed.Round(time.Microsecond))

	last := positions[len(positions)-1]
	fmt.Printf("  %s bob1 (%.4f, %.4f)  bob2 (%.4f, %.4f)\n",
		dim.Render("final:"), last.X1, last.Y1, last.X2, last.Y2)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Solver, params, traj, positions, drift)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %s\n", dim.Render("saved:"), green.Render(runID))
	}

	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}

	sv, err := integrators.New(cfg.Solver)
	if err != nil {
		return err
	}

	params := cfg.PhysicalParams()
	sys := physics.NewDoublePendulum(params)

	base := cfg.GetInitState()
	x0s := make([]dynamo.State, runs)
	for i := range x0s {
		x0 := base.Clone()
		x0[0] += float64(i) * spread
		x0s[i] = x0
	}

	ctx, cancel := runContext()
	defer cancel()

	batch := &dynamo.Batch{Sys: sys, Solver: sv}
	start := time.Now()
	trajs, err := batch.Run(ctx, x0s, cfg.GetSpan(), cfg.GetSampleTimes(), cfg.GetTolerances())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(cyan.Render(fmt.Sprintf("sweep: %d trajectories, theta1 spread %.3g rad", runs, spread)))
	for i, traj := range trajs {
		last := traj.States[traj.Len()-1]
		_, _, x2, y2 := physics.Positions(last, params)
		fmt.Printf("  %s theta1=%-12.9f bob2 (%8.4f, %8.4f)  drift %.2e\n",
			dim.Render(fmt.Sprintf("#%02d", i)), x0s[i][0], x2, y2, metrics.EnergyDrift(sys, traj))
	}
	fmt.Printf("  %s %s\n", dim.Render("elapsed:"), elapsed.Round(time.Microsecond))

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	metas, err := st.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println(dim.Render("no runs"))
		return nil
	}
	for _, meta := range metas {
		fmt.Printf("%s  %s  %s  [%.4g, %.4g] s  %d samples  drift %.2e\n",
			green.Render(meta.ID),
			meta.Timestamp.Format(time.RFC3339),
			meta.Solver,
			meta.TStart, meta.TEnd, meta.Samples, meta.EnergyDrift)
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	positions, err := st.LoadPositions(args[0])
	if err != nil {
		return err
	}

	data := make([]float64, len(positions))
	for i, ps := range positions {
		data[i] = ps.X2
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s: bob2 x over %d samples", args[0], len(data))),
	)
	fmt.Println(graph)
	return nil
}
