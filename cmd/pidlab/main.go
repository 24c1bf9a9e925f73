package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/edaniels/golog"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/pidlab/internal/analysis"
	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/experiment"
	"github.com/san-kum/pidlab/internal/loop"
	"github.com/san-kum/pidlab/internal/pid"
	"github.com/san-kum/pidlab/internal/storage"
	"github.com/san-kum/pidlab/internal/viz"
)

var (
	dataDir string
	verbose bool

	// controller
	dt float64
	kp float64
	ki float64
	kd float64
	// output limits
	outMax float64
	outMin float64
	terms  bool

	// loop
	duration   float64
	substeps   int
	integrator string
	setpoint   float64
	stepTo     float64
	stepTime   float64
	initValue  float64
	configFile string
	preset     string
	noSave     bool
	showPlot   bool
	frameRate  int

	plotWidth  int
	plotHeight int

	tailFrac      float64
	minAmplitude  float64
	concentration float64
)

var logger = golog.NewDevelopmentLogger("pidlab")

func main() {
	rootCmd := &cobra.Command{
		Use:          "pidlab",
		Short:        "single-loop pid controller lab",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runDemo,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pidlab", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every controller tick")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "compute one output with the demo controller",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}

	computeCmd := &cobra.Command{
		Use:   "compute SETPOINT PV [SETPOINT PV ...]",
		Short: "feed setpoint/pv pairs through one controller",
		Args:  pairs,
		RunE:  runCompute,
	}
	addControllerFlags(computeCmd)
	computeCmd.Flags().BoolVar(&terms, "terms", false, "print the p, i and d terms")

	runCmd := &cobra.Command{
		Use:   "run [plant]",
		Short: "run a closed loop simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addControllerFlags(runCmd)
	addLoopFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the run when done")

	liveCmd := &cobra.Command{
		Use:   "live [plant]",
		Short: "run the loop with live visualization and tuning",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addControllerFlags(liveCmd)
	addLoopFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "look for a sustained oscillation in the tracking error",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&tailFrac, "tail", 0.5, "fraction of the run to analyze, counted from the end")
	analyzeCmd.Flags().Float64Var(&minAmplitude, "min-amplitude", 1e-3, "smallest error amplitude treated as oscillation")
	analyzeCmd.Flags().Float64Var(&concentration, "concentration", 0.5, "spectral share needed to call it a limit cycle")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [plant]",
		Short: "list available presets for a plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for plant: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(demoCmd, computeCmd, runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addControllerFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.1, "sample interval")
	cmd.Flags().Float64Var(&outMax, "max", 100, "output upper limit")
	cmd.Flags().Float64Var(&outMin, "min", -100, "output lower limit")
	cmd.Flags().Float64Var(&kp, "kp", 0.1, "proportional gain")
	cmd.Flags().Float64Var(&ki, "ki", 0.5, "integral gain")
	cmd.Flags().Float64Var(&kd, "kd", 0.01, "derivative gain")
}

func addLoopFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "plant integration steps per sample")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint")
	cmd.Flags().Float64Var(&stepTo, "step-to", 0, "setpoint after --step-time")
	cmd.Flags().Float64Var(&stepTime, "step-time", 0, "time of the setpoint step (0 for none)")
	cmd.Flags().Float64Var(&initValue, "init", 0, "initial process value")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func pairs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return fmt.Errorf("expected setpoint/pv pairs, got %d values", len(args))
	}
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	c, err := pid.New(0.1, 100.0, -100.0, 0.1, 0.01, 0.5)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "output:%g\n", c.Compute(10.0, 5.0))
	return err
}

func runCompute(cmd *cobra.Command, args []string) error {
	c, err := pid.New(dt, outMax, outMin, kp, kd, ki)
	if err != nil {
		return fmt.Errorf("invalid controller: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if terms {
		fmt.Fprintln(w, "SETPOINT\tPV\tP\tI\tD\tOUTPUT")
	}
	for i := 0; i < len(args); i += 2 {
		sp, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return fmt.Errorf("setpoint %q: %w", args[i], err)
		}
		pv, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil {
			return fmt.Errorf("pv %q: %w", args[i+1], err)
		}

		s, err := c.Step(sp, pv)
		if err != nil {
			return err
		}
		if terms {
			fmt.Fprintf(w, "%g\t%g\t%g\t%g\t%g\t%g\n", sp, pv, s.P, s.I, s.D, s.Output)
		} else {
			fmt.Fprintf(w, "%g\n", s.Output)
		}
	}
	return w.Flush()
}

// resolveConfig applies, in order: defaults, preset, config file, then
// any flag set on the command line.
func resolveConfig(cmd *cobra.Command, plantName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Plant = plantName

	if preset != "" {
		p := config.GetPreset(plantName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(plantName))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if loaded.Plant != plantName {
			logger.Warnw("config file plant ignored", "file", loaded.Plant, "plant", plantName)
			loaded.Plant = plantName
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Controller.SampleInterval = dt
	}
	if flags.Changed("max") {
		cfg.Controller.OutputMax = outMax
	}
	if flags.Changed("min") {
		cfg.Controller.OutputMin = outMin
	}
	if flags.Changed("kp") {
		cfg.Controller.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Controller.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Controller.Kd = kd
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("setpoint") {
		cfg.Setpoint.Initial = setpoint
		cfg.Setpoint.Final = setpoint
	}
	if flags.Changed("step-to") {
		cfg.Setpoint.Final = stepTo
	}
	if flags.Changed("step-time") {
		cfg.Setpoint.StepTime = stepTime
	}
	if flags.Changed("init") {
		cfg.InitState.Value = initValue
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	fmt.Printf("running %s loop...\n", cfg.Plant)
	start := time.Now()

	result, err := exp.Run(context.Background(), verbose)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("stopped: %v\n", e)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, preset, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range metricNames(result.Metrics) {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, result.Metrics[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if showPlot {
		fmt.Println()
		fmt.Print(viz.Plot(result.Samples, 80, 12))
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	m := viz.NewModel(exp.Session(), cfg.Plant, frameRate)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
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
	fmt.Fprintln(w, "ID\tPLANT\tPRESET\tTIME\tSTEPS\tDT\tKP\tKI\tKD\tIAE")

	for _, run := range runs {
		var ctrl pid.Params
		if run.Config != nil {
			ctrl = run.Config.Controller
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%g\t%g\t%g\t%g\t%.4f\n",
			run.ID,
			run.Plant,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			ctrl.SampleInterval,
			ctrl.Kp,
			ctrl.Ki,
			ctrl.Kd,
			run.Metrics["iae"],
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

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("plant: %s\n", meta.Plant)
	fmt.Printf("samples: %d\n\n", len(samples))
	fmt.Print(viz.Plot(samples, plotWidth, plotHeight))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	interval := sampleInterval(meta, samples)
	errs := tailErrors(samples, tailFrac)

	osc, err := analysis.DominantOscillation(errs, interval)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", runID, err)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples analyzed: %d\n", len(errs))
	if osc.Frequency == 0 {
		fmt.Println("error is constant, no oscillation")
		return nil
	}
	fmt.Printf("dominant period: %.4g s (%.4g Hz)\n", osc.Period, osc.Frequency)
	fmt.Printf("amplitude: %.4g\n", osc.Amplitude)
	fmt.Printf("concentration: %.2f\n", osc.Concentration)
	if osc.Sustained(concentration, minAmplitude) {
		fmt.Println("verdict: sustained oscillation")
	} else {
		fmt.Println("verdict: settled")
	}
	return nil
}

func sampleInterval(meta *storage.RunMetadata, samples []loop.Sample) float64 {
	if meta.Config != nil && meta.Config.Controller.SampleInterval > 0 {
		return meta.Config.Controller.SampleInterval
	}
	if len(samples) > 1 {
		return samples[1].Time - samples[0].Time
	}
	return 0
}

// tailErrors returns the tracking error of the last frac of the samples.
func tailErrors(samples []loop.Sample, frac float64) []float64 {
	if frac <= 0 || frac > 1 {
		frac = 1
	}
	start := len(samples) - int(math.Round(frac*float64(len(samples))))
	if start < 0 {
		start = 0
	}
	errs := make([]float64, 0, len(samples)-start)
	for _, s := range samples[start:] {
		errs = append(errs, s.Error())
	}
	return errs
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.WriteCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, samples)
}

func metricNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
