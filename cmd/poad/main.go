package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/poa"
	poad "github.com/iov-one/poa/cmd/poad/app"
	"github.com/iov-one/poa/commands/server"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagConfig   = "config"
	flagHome     = "home"
	flagBind     = "bind"
	flagDebug    = "debug"
	flagLogLevel = "log_level"
	flagMetrics  = "metrics"
	flagHeight   = "height"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd(ctx, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		stop()
		os.Exit(1)
	}
}

// RootCmd returns the poad command with all its subcommands. Output is
// written to out.
func RootCmd(ctx context.Context, out io.Writer) *cobra.Command {
	defaults := DefaultConfig()
	root := &cobra.Command{
		Use:           "poad",
		Short:         "Proof of authority node with unanimous validator governance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	pf := root.PersistentFlags()
	pf.String(flagConfig, "", "configuration file (default \"<home>/config/poad.yaml\")")
	pf.String(flagHome, defaults.Home, "directory to store files under")
	pf.String(flagLogLevel, defaults.LogLevel, "log level: debug, info, error or none")

	load := func(cmd *cobra.Command) (Config, log.Logger, error) {
		path, err := cmd.Flags().GetString(flagConfig)
		if err != nil {
			return Config{}, nil, err
		}
		cfg, err := LoadConfig(path, cmd.Flags())
		if err != nil {
			return cfg, nil, err
		}
		logger, err := newLogger(cmd.OutOrStdout(), cfg.LogLevel)
		return cfg, logger, err
	}

	initCmd := &cobra.Command{
		Use:   "init [admin-address|-] [validator-address:pubkey-hex ...]",
		Short: "Initialize the tendermint files and the app_state of the genesis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			return server.InitCmd(poad.GenInitOptions, logger, cfg.Home, args)
		},
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			return server.StartCmd(ctx, poad.GenerateApp, logger, cfg.Home, server.StartOptions{
				Bind:        cfg.Bind,
				MetricsAddr: cfg.MetricsAddr,
				Debug:       cfg.Debug,
			})
		},
	}
	sf := startCmd.Flags()
	sf.String(flagBind, defaults.Bind, "address server listens on")
	sf.String(flagMetrics, defaults.MetricsAddr, "address of the /metrics endpoint, empty to disable")
	sf.Bool(flagDebug, false, "call stack returned on error")

	validateCmd := &cobra.Command{
		Use:   "validate <genesis.json> [genesis.json ...]",
		Short: "Check that genesis files can initialize the application",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := server.ValidateGenesis(poad.NewModules().Initializer(), args); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "genesis is valid")
			return nil
		},
	}

	getBlockCmd := &cobra.Command{
		Use:   "getblock <path to blockstore.db>",
		Short: "Extract a block from the tendermint block store as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := cmd.Flags().GetInt64(flagHeight)
			if err != nil {
				return err
			}
			return server.GetBlockCmd(cmd.OutOrStdout(), args[0], height)
		},
	}
	getBlockCmd.Flags().Int64(flagHeight, 0, "height of the block to extract (default latest)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the app version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), poa.Version())
		},
	}

	root.AddCommand(initCmd, startCmd, validateCmd, getBlockCmd, versionCmd)
	return root
}

func newLogger(w io.Writer, level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	return log.NewFilter(logger, opt).With("module", "poad"), nil
}
