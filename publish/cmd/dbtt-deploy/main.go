package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Frank-Fourier/DBTT-contracts/internal/config"
	"github.com/Frank-Fourier/DBTT-contracts/publish"
	"github.com/Frank-Fourier/DBTT-contracts/publish/contracts"
)

type app struct {
	stdout io.Writer
	stderr io.Writer
	dial   publish.Dialer

	configFile string
	envFile    string
	network    string
	artifacts  string
	logLevel   string

	exitCode int
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr, publish.Dial))
}

func execute(args []string, stdout, stderr io.Writer, dial publish.Dialer) int {
	a := &app{stdout: stdout, stderr: stderr, dial: dial}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return publish.ExitFailure
	}
	return a.exitCode
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbtt-deploy",
		Short: "Deploy DBTT contracts from Hardhat artifacts",
		Long: `Deploy a compiled contract to a configured network and print its address.

Networks come from deploy.yaml (optional), a .env file (optional) and the
environment (PRIVATE_KEY, INFURA_KEY, NETWORK, DEPLOY_CONFIRM_TIMEOUT, ...).

Examples:
  # Local Hardhat/Anvil node
  dbtt-deploy deploy VaultETH

  # BSC testnet, key taken from PRIVATE_KEY
  dbtt-deploy deploy dbtt --network bscTestnet`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./deploy.yaml if present)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file (default ./.env if present)")
	root.PersistentFlags().StringVar(&a.network, "network", "", "network to use (default from config, then hardhat)")
	root.PersistentFlags().StringVar(&a.artifacts, "artifacts", "", "Hardhat artifacts directory (default ./artifacts)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(a.deployCmd(), a.networksCmd(), a.contractsCmd())
	return root
}

func (a *app) deployCmd() *cobra.Command {
	var (
		jsonOut        bool
		gasLimit       uint64
		confirmTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "deploy <contract>",
		Short: "Deploy one contract and wait until it is live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile, a.envFile)
			if err != nil {
				return err
			}
			nc, err := cfg.NetworkContext(a.network)
			if err != nil {
				return err
			}
			logger, err := a.logger()
			if err != nil {
				return err
			}

			opts := cfg.DeployerOptions(nc)
			if cmd.Flags().Changed("gas-limit") {
				opts.GasLimit = gasLimit
			}
			if cmd.Flags().Changed("confirm-timeout") {
				opts.ConfirmTimeout = confirmTimeout
			}

			artifactsDir := cfg.Paths.Artifacts
			if a.artifacts != "" {
				artifactsDir = a.artifacts
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result := publish.Run(ctx, publish.Environment{
				Network:   nc,
				Artifacts: publish.NewArtifactStore(artifactsDir),
				Dial:      a.dial,
				Options:   opts,
				Logger:    logger.With(slog.String("run_id", uuid.NewString())),
			}, contracts.Canonical(args[0]))

			reporter := publish.Reporter{Out: a.stdout, Err: a.stderr, JSON: jsonOut}
			a.exitCode = reporter.Report(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print a JSON report instead of the address line")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", 0, "fixed gas limit (estimated if not set)")
	cmd.Flags().DurationVar(&confirmTimeout, "confirm-timeout", publish.DefaultConfirmTimeout, "how long to wait for confirmation (0 waits forever)")
	return cmd
}

func (a *app) networksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List configured networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configFile, a.envFile)
			if err != nil {
				return err
			}
			selected := strings.ToLower(cfg.Network)
			if a.network != "" {
				selected = strings.ToLower(a.network)
			}
			for _, name := range cfg.NetworkNames() {
				n := cfg.Networks[name]
				marker := " "
				if name == selected {
					marker = "*"
				}
				fmt.Fprintf(a.stdout, "%s %-12s chain %-6d %s\n", marker, name, n.ChainID, n.URL)
			}
			return nil
		},
	}
}

func (a *app) contractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "List known contracts and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range contracts.All() {
				fmt.Fprintf(a.stdout, "%-26s solc %s (%s, %d runs)  aliases: %s\n",
					c.Name, c.SolidityVersion, c.EVMFork, c.OptimizerRuns, strings.Join(c.Aliases, ", "))
			}
			return nil
		},
	}
}

func (a *app) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})), nil
}
