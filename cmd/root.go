// Package cmd wires the command line to the config, logger, demo feed and
// the Bubble Tea program.
package cmd

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/miosa/osa-transcript/app"
	"github.com/miosa/osa-transcript/config"
	"github.com/miosa/osa-transcript/feed"
	"github.com/miosa/osa-transcript/logger"
	"github.com/miosa/osa-transcript/style"
)

// flags holds the command line overrides. Zero values mean "not given".
type flags struct {
	configPath string
	theme      string
	maxVisible int
	debug      bool
	logPath    string
	scriptPath string
	noColor    bool
}

var (
	version = "dev"
	opts    flags
)

// SetVersion sets the version reported by --version.
func SetVersion(v string) { version = v }

var rootCmd = &cobra.Command{
	Use:   "osa-transcript",
	Short: "Streaming-aware transcript viewer",
	Long: `osa-transcript renders a live conversation in a fixed viewport.
Replies stream in from a scripted feed while the view stays pinned to the
newest line, and scrolling away freezes it until you come back.`,
	Args:          cobra.NoArgs,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.osa/"+config.Filename+")")
	f.StringVar(&opts.theme, "theme", "", "color theme: dark, light, catppuccin, tokyo-night")
	f.IntVar(&opts.maxVisible, "max-visible", 0, "messages rendered in full before older ones are archived")
	f.BoolVar(&opts.debug, "debug", false, "debug logging and transcript stats in the status bar")
	f.StringVar(&opts.logPath, "log", "", "log file (default "+logger.DefaultPath()+")")
	f.StringVar(&opts.scriptPath, "script", "", "TOML reply script for the demo feed")
	f.BoolVar(&opts.noColor, "no-color", false, "disable ANSI colors")
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("osa-transcript {{.Version}}\n")
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, _ []string) error {
	if opts.noColor {
		os.Setenv("NO_COLOR", "1")
	}
	if err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}

	path := opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, cfgErr := config.Load(path)
	cfg = applyFlags(cfg, cmd)

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = logger.DefaultPath()
	}
	if err := logger.Init(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logger.Close()
	logger.SetDebug(cfg.Debug)
	log := logger.Component("main")
	if cfgErr != nil {
		// Load already fell back to usable values.
		log.Warn("config", "path", path, "err", cfgErr)
	}

	script := feed.DefaultScript()
	if opts.scriptPath != "" {
		s, err := feed.LoadScript(opts.scriptPath)
		if err != nil {
			return err
		}
		script = s
	}
	streamer, err := feed.New(script,
		feed.WithRate(cfg.TokensPerSecond),
		feed.WithLogger(logger.Component("feed")),
	)
	if err != nil {
		return err
	}

	workspace, _ := os.Getwd()
	m := app.New(app.Options{
		Config:     cfg,
		ConfigPath: path,
		Streamer:   streamer,
		Script:     script,
		Version:    version,
		Workspace:  workspace,
		Logger:     logger.Component("app"),
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := tea.NewProgram(m)
	go p.Send(app.ProgramReady{Sender: p})
	if err := config.Watch(ctx, path, config.DefaultDebounce, p); err != nil {
		// The directory may not exist until the first save.
		log.Warn("config watch disabled", "err", err)
	}

	log.Info("starting", "version", version, "config", path, "theme", cfg.Theme)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// applyFlags layers explicitly set flags over the loaded config.
func applyFlags(cfg config.Config, cmd *cobra.Command) config.Config {
	f := cmd.Flags()
	if f.Changed("theme") {
		if _, ok := style.Lookup(opts.theme); ok {
			cfg.Theme = opts.theme
		}
	}
	if f.Changed("max-visible") && opts.maxVisible > 0 {
		cfg.MaxVisibleMessages = opts.maxVisible
	}
	if f.Changed("debug") {
		cfg.Debug = opts.debug
	}
	if f.Changed("log") {
		cfg.LogFile = opts.logPath
	}
	return cfg
}
