package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/browser"
	"github.com/sarchlab/flightsim/config"
	"github.com/sarchlab/flightsim/dataset"
	"github.com/sarchlab/flightsim/logging"
	"github.com/sarchlab/flightsim/sim"
	"github.com/sarchlab/flightsim/simulation"
	"github.com/sarchlab/flightsim/terminal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type runOptions struct {
	envFiles    []string
	paused      bool
	headless    bool
	noMonitor   bool
	monitorPort int
	openMonitor bool
	record      string
	tick        time.Duration
	logLevel    string
	globalIDs   bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [data.csv]",
		Short: "Run a simulation.",
		Long: "`run [data.csv]` replays the flights of a dataset on the " +
			"terminal. Without a file, the built-in sample is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, args, *opts)
		},
	}

	opts.bind(cmd.Flags())

	return cmd
}

func (o *runOptions) bind(flags *pflag.FlagSet) {
	flags.StringSliceVar(&o.envFiles, "env", nil,
		"Load settings from these .env files")
	flags.BoolVar(&o.paused, "paused", false,
		"Show the map but do not start the clock")
	flags.BoolVar(&o.headless, "headless", false,
		"Log departures and landings instead of drawing them")
	flags.BoolVar(&o.noMonitor, "no-monitor", false,
		"Do not serve the monitoring page")
	flags.IntVar(&o.monitorPort, "monitor-port", 0,
		"Port of the monitoring page, random if 0")
	flags.BoolVar(&o.openMonitor, "open-monitor", false,
		"Open the monitoring page in a browser")
	flags.StringVar(&o.record, "record", "",
		"Record the dispatch decisions into this SQLite file")
	flags.DurationVar(&o.tick, "tick", 0,
		"Wall-clock time between two ticks")
	flags.StringVar(&o.logLevel, "log-level", "",
		"One of debug, info, warn or error")
	flags.BoolVar(&o.globalIDs, "global-ids", false,
		"Give flights globally unique IDs instead of F1, F2, ...")
}

func init() {
	rootCmd.AddCommand(newRunCommand())
}

// loadConfig reads the .env files and the environment, then applies the
// flags that were set on the command line.
func loadConfig(cmd *cobra.Command, opts runOptions) (config.Config, error) {
	c, err := config.Load(opts.envFiles...)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()

	if flags.Changed("tick") {
		c.TickInterval = opts.tick
	}

	if flags.Changed("log-level") {
		c.LogLevel = opts.logLevel
	}

	if flags.Changed("monitor-port") {
		c.MonitorPort = opts.monitorPort
	}

	if flags.Changed("record") {
		c.RecordPath = opts.record
	}

	if flags.Changed("global-ids") {
		c.GlobalIDs = opts.globalIDs
	}

	if opts.noMonitor {
		if flags.Changed("monitor-port") || flags.Changed("open-monitor") {
			return config.Config{}, errors.New(
				"--no-monitor cannot be combined with other monitor flags")
		}

		c.MonitorPort = 0
	}

	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}

	return c, nil
}

func loadDataset(args []string) (*dataset.Dataset, error) {
	if len(args) == 0 {
		return dataset.Sample(), nil
	}

	return dataset.LoadFile(args[0])
}

func runSimulation(cmd *cobra.Command, args []string, opts runOptions) error {
	c, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	ds, err := loadDataset(args)
	if err != nil {
		return err
	}

	useIDGenerator(c)

	logger := logging.New(c.LogLevel, c.LogDir)
	defer logger.CatchAndReportCrash()

	builder := simulation.MakeBuilder().
		WithConfig(c).
		WithLogger(logger)

	if opts.noMonitor {
		builder = builder.WithoutMonitoring()
	}

	if opts.headless {
		return runHeadless(cmd.Context(), builder, ds, logger, opts)
	}

	return runInteractive(cmd.Context(), builder, ds, logger, c, opts)
}

// useIDGenerator picks how flight IDs are generated. It must run before any
// flight is created.
func useIDGenerator(c config.Config) {
	if c.GlobalIDs {
		sim.UseGlobalIDGenerator()
		return
	}

	sim.UseSequentialIDGenerator()
}

func startSimulation(s *simulation.Simulation, opts runOptions) {
	if url := s.MonitorURL(); url != "" && opts.openMonitor {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open %s: %v\n", url, err)
		}
	}

	if opts.paused {
		s.StartPaused()
		return
	}

	s.Start()
}

func runHeadless(
	ctx context.Context,
	builder simulation.Builder,
	ds *dataset.Dataset,
	logger *logging.Logger,
	opts runOptions,
) error {
	s := builder.
		WithDisplay(simulation.NewLogDisplay(logger)).
		Build(ds)
	defer s.Terminate()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	startSimulation(s, opts)

	fmt.Fprintf(os.Stderr, "Simulation %s running, logging to %s. "+
		"Press Ctrl-C to stop.\n", s.ID(), logger.LogFile)

	<-ctx.Done()

	return nil
}

// keyControls reports every key press to the idle watchdog.
type keyControls struct {
	*simulation.Simulation

	watchdog *simulation.IdleWatchdog
	renderer *terminal.Renderer
}

func (c keyControls) UserAction() {
	if c.watchdog != nil {
		c.watchdog.UserAction()
	}

	c.renderer.SetNotice("")
}

func runInteractive(
	ctx context.Context,
	builder simulation.Builder,
	ds *dataset.Dataset,
	logger *logging.Logger,
	c config.Config,
	opts runOptions,
) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}

	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	renderer := terminal.NewRenderer(screen)

	s := builder.WithDisplay(renderer).Build(ds)
	defer s.Terminate()

	renderer.WithSource(s)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	controls := keyControls{Simulation: s, renderer: renderer}

	if c.IdleKill > 0 {
		controls.watchdog = simulation.NewIdleWatchdog(c.IdleKill, c.IdleReminder).
			OnRemind(func(remaining time.Duration) {
				renderer.SetNotice(fmt.Sprintf("idle, quitting in %s",
					remaining.Round(time.Second)))
			}).
			OnKill(func() {
				logger.Warn("no user activity, quitting",
					"idle", c.IdleKill.String())
				cancel()
			})

		controls.watchdog.Start()
		defer controls.watchdog.Stop()
	}

	startSimulation(s, opts)

	return renderer.Run(ctx, controls)
}
