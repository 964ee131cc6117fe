package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iburimskiy/halo/internal/config"
	"github.com/iburimskiy/halo/internal/export"
	"github.com/iburimskiy/halo/internal/game"
)

type cli struct {
	verbose    bool
	configPath string
	logger     *zap.Logger

	width   int
	height  int
	preseed []time.Duration
	chime   bool
	track   string
	debug   bool

	outDir string
	at     []time.Duration
	dpr    float64
	fps    float64
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "halo",
		Short: "Animated halo background",
		Long: `halo draws concentric wavy rings that spawn at the center, expand, fade
and disappear, stroked with a slowly rotating color gradient.

Run without a subcommand to open the window.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = c.logger.Sync() },
		RunE:              c.runWindow,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "YAML animation config (defaults when empty)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Open a window and animate the halo",
		Long: `Opens a window and animates the halo until it is closed.

Keys:
  Esc, Q   stop and quit
  F3       toggle the debug overlay
  O        open a soundtrack (wav, mp3, flac), also right click
  Space    pause the soundtrack`,
		Args: cobra.NoArgs,
		RunE: c.runWindow,
	}
	c.windowFlags(root)
	c.windowFlags(runCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Render frames at given offsets to SVG files",
		Example: `  halo export --out frames --at 0s --at 3.5s --at 7s
  halo export --at 10s --preseed 12s,6s --dpr 2`,
		Args: cobra.NoArgs,
		RunE: c.runExport,
	}
	f := exportCmd.Flags()
	f.StringVarP(&c.outDir, "out", "o", "frames", "output directory")
	f.DurationSliceVar(&c.at, "at", []time.Duration{0, 3500 * time.Millisecond, 7 * time.Second, 10500 * time.Millisecond}, "offsets from start to render (repeatable)")
	f.IntVar(&c.width, "width", config.WindowWidth, "frame width in logical pixels")
	f.IntVar(&c.height, "height", config.WindowHeight, "frame height in logical pixels")
	f.Float64Var(&c.dpr, "dpr", 1, "device pixel ratio of the output")
	f.Float64Var(&c.fps, "fps", export.DefaultFPS, "frame rate the animation is stepped at")
	f.DurationSliceVar(&c.preseed, "preseed", nil, "ages of rings present at start")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  c.printConfig,
	}

	root.AddCommand(runCmd, exportCmd, configCmd)
	return root
}

func (c *cli) windowFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&c.width, "width", config.WindowWidth, "window width")
	f.IntVar(&c.height, "height", config.WindowHeight, "window height")
	f.DurationSliceVar(&c.preseed, "preseed", nil, "ages of rings present at start, e.g. 12s,8s,4s")
	f.BoolVar(&c.chime, "chime", false, "play a chime for every new ring")
	f.StringVar(&c.track, "soundtrack", "", "audio file to loop (wav, mp3, flac)")
	f.BoolVar(&c.debug, "debug", false, "show the debug overlay")
}

func (c *cli) setup(*cobra.Command, []string) error {
	cfg := zap.NewProductionConfig()
	if c.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger
	return nil
}

func (c *cli) loadConfig() (config.Animation, error) {
	if c.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.logger.Debug("config loaded", zap.String("path", c.configPath))
	return cfg, nil
}

func (c *cli) runWindow(*cobra.Command, []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	return game.Run(game.Options{
		Config:     cfg,
		Width:      c.width,
		Height:     c.height,
		Preseed:    c.preseed,
		Chime:      c.chime,
		Soundtrack: c.track,
		Debug:      c.debug,
		Log:        c.logger,
	})
}

func (c *cli) runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
	defer stop()

	paths, err := export.Render(ctx, export.Options{
		Config:  cfg,
		Dir:     c.outDir,
		At:      c.at,
		Preseed: c.preseed,
		Width:   float64(c.width),
		Height:  float64(c.height),
		DPR:     c.dpr,
		FPS:     c.fps,
		Log:     c.logger,
	})
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return err
}

func (c *cli) printConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	return config.Encode(cmd.OutOrStdout(), cfg)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
