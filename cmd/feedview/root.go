package main

import (
	"fmt"
	"io"

	"feedview/internal/events"
	"feedview/internal/history"
	"feedview/internal/tui"

	"github.com/spf13/cobra"
)

// Version 由构建时 -ldflags 注入。
var Version = "v0.1.0-dev"

type rootFlags struct {
	configPath string
	overrides  []string
	query      string

	// logFile 由 PersistentPreRunE 打开，Execute 返回后由调用方关闭。
	logFile io.Closer
}

func newRootCmd(flags *rootFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "feedview",
		Short: "Browse a paginated feed of variable-height blocks in the terminal",
		Long: `feedview renders an endless feed of variable-height content blocks.
Only the rows near the viewport are materialized; more pages are fetched
as the scroll position approaches the end of the loaded items.`,
		SilenceUsage: true,
		Version:      Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(flags)
			if err != nil {
				return err
			}
			if flags.logFile == nil {
				flags.logFile = setupLogging(cfg)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Configuration file path (default ~/.feedview/config.toml)")
	rootCmd.PersistentFlags().StringArrayVarP(&flags.overrides, "set", "c", nil, "Override a config value (key=value, repeatable)")
	rootCmd.PersistentFlags().StringVarP(&flags.query, "query", "q", "", "Initial search query")

	rootCmd.AddCommand(newSimulateCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func runInteractive(flags *rootFlags) error {
	cfg, err := loadSettings(flags)
	if err != nil {
		return err
	}
	source, err := buildSource(cfg)
	if err != nil {
		return err
	}

	bus := events.NewEventQueue(256)
	eqLog, closer := events.OpenLog(cfg.Log.EventsPath)
	bus.SetLogger(eqLog)
	if closer != nil {
		defer closer.Close()
	}
	defer bus.Close()

	queries, err := history.NewDefault()
	if err != nil {
		log.Warnf("query history disabled: %v", err)
		queries = nil
	}

	result, err := tui.Run(tui.Options{
		Source:        source,
		Config:        cfg.Engine(),
		FrameInterval: cfg.FrameInterval(),
		Query:         flags.query,
		Events:        bus,
		History:       queries,
	})
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	log.WithField("query", result.Query).WithField("loaded", result.Loaded).WithField("epoch", result.Epoch).Info("session finished")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the feedview version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "feedview "+Version)
		},
	}
}
