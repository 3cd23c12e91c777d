package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v3"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/stakepool"
)

var logLevel = new(slog.LevelVar) // Info by default

func initApp() *StakePoolApp {
	log.SetFlags(0)
	// stdout carries command output, so logs go to stderr
	logger := misc.NewLogger(os.Stderr, logLevel)
	slog.SetDefault(logger)
	if os.Getenv("DEBUG") == "1" {
		logLevel.Set(slog.LevelDebug)
	}

	misc.LoadEnvSettings(logger)

	// We initialize our wrapper instance first, so we can call its methods in the 'Before' lambda func
	// in initialization of cli App instance.
	// signers are loaded by the Before hook of the commands that need them.
	appConfig := &StakePoolApp{logger: logger}

	appConfig.cliCmd = &cli.Command{
		Name:    "jito-stake-pool",
		Usage:   "Command-line tool for managing Solana stake pools",
		Version: misc.GetVersionInfo(),
		Before: func(ctx context.Context, cmd *cli.Command) error {
			// Further bootstrap of the 'app' once flags (url, config file, etc.) have been parsed.
			return appConfig.initClients(ctx, cmd)
		},
		// main reports errors and exits once metrics are written
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "envfile",
				Usage:   "env file to load",
				Sources: cli.EnvVars("STAKE_POOL_ENVFILE"),
				Aliases: []string{"e"},
			},
			&cli.StringFlag{
				Name:    "config-file",
				Usage:   "Configuration file to use, defaults to the solana cli config",
				Aliases: []string{"C"},
			},
			&cli.StringFlag{
				Name:    "url",
				Usage:   "JSON RPC URL for the cluster, or a moniker: [mainnet-beta, testnet, devnet, localhost]",
				Aliases: []string{"u"},
			},
			&cli.StringFlag{
				Name:  "commitment",
				Usage: "Commitment level for reads and confirmations: [processed, confirmed, finalized]. Defaults to the config file setting.",
			},
			&cli.StringFlag{
				Name:    "program-id",
				Usage:   "Stake pool program id",
				Sources: cli.EnvVars("STAKE_POOL_PROGRAM_ID"),
			},
			&cli.StringFlag{
				Name:  "staker",
				Usage: "Stake pool staker keypair, or ASK to enter a seed phrase. Defaults to the client keypair.",
			},
			&cli.StringFlag{
				Name:  "manager",
				Usage: "Stake pool manager keypair, or ASK to enter a seed phrase. Defaults to the client keypair.",
			},
			&cli.StringFlag{
				Name:  "funding-authority",
				Usage: "Stake pool funding authority for deposits or withdrawals, only needed when the pool sets one",
			},
			&cli.StringFlag{
				Name:  "token-owner",
				Usage: "Owner of pool token accounts. Defaults to the client keypair.",
			},
			&cli.StringFlag{
				Name:  "fee-payer",
				Usage: "Transaction fee payer account. Defaults to the client keypair.",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Simulate transactions instead of executing",
			},
			&cli.BoolFlag{
				Name:  "no-update",
				Usage: "Do not automatically update the stake pool if needed",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Return information in specified output format: display, display-verbose, json, json-compact",
				Value: string(stakepool.OutputDisplay),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Show additional information and debug logging",
				Aliases: []string{"v"},
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "Write rpc and stake pool metrics in prometheus text format to this file on exit",
				Sources: cli.EnvVars("STAKE_POOL_METRICS_FILE"),
			},
		},
		Commands: append(append(append(
			GetPoolCmdOpts(),
			GetValidatorCmdOpts()...),
			GetFundingCmdOpts()...),
			GetAuthorityCmdOpts()...),
	}
	return appConfig
}

type StakePoolApp struct {
	cliCmd      *cli.Command
	logger      *slog.Logger
	cliConfig   *CLIConfig
	rpcMetrics  *sol.Metrics
	chain       *sol.Client
	client      *stakepool.Client
	metricsFile string
}

// initClients loads configuration and builds the rpc and stake pool clients. No keypairs are
// touched here so read-only commands work without one.
func (ac *StakePoolApp) initClients(ctx context.Context, cmd *cli.Command) error {
	if envfile := cmd.String("envfile"); envfile != "" {
		if err := misc.LoadNamedEnvFile(ac.logger, envfile); err != nil {
			return err
		}
	}
	verbose := cmd.Bool("verbose")
	if verbose {
		logLevel.Set(slog.LevelDebug)
	}

	cliConfig, err := LoadCLIConfig(cmd.String("config-file"))
	if err != nil {
		return err
	}
	ac.cliConfig = cliConfig

	output, err := stakepool.ParseOutputFormat(cmd.String("output"))
	if err != nil {
		return err
	}
	var programID solana.PublicKey
	if id := cmd.String("program-id"); id != "" {
		if programID, err = solana.PublicKeyFromBase58(id); err != nil {
			return fmt.Errorf("invalid program id:%s, error:%w", id, err)
		}
	}

	url := cmd.String("url")
	if url == "" {
		url = cliConfig.JSONRPCURL
	}
	netCfg := sol.GetNetworkConfig(url)
	commitment := cmd.String("commitment")
	if commitment == "" {
		commitment = cliConfig.Commitment
	}
	if netCfg.Commitment, err = sol.ParseCommitment(commitment); err != nil {
		return err
	}
	misc.Debugf(ac.logger, "network config:%s", netCfg)

	ac.metricsFile = cmd.String("metrics-file")
	ac.rpcMetrics = sol.NewMetrics()
	ac.chain = sol.NewClient(ac.logger, netCfg, ac.rpcMetrics)
	ac.client = stakepool.New(ac.chain, stakepool.Config{
		ProgramID: programID,
		DryRun:    cmd.Bool("dry-run"),
		NoUpdate:  cmd.Bool("no-update"),
		Verbose:   verbose,
		Output:    output,
		Out:       os.Stdout,
	}, ac.logger, stakepool.NewMetrics(ac.rpcMetrics.Registry()))
	return nil
}

// writeMetrics saves the collected metrics when --metrics-file was given.
func (ac *StakePoolApp) writeMetrics() {
	if ac.metricsFile == "" || ac.rpcMetrics == nil {
		return
	}
	if err := ac.rpcMetrics.WriteMetrics(ac.metricsFile); err != nil {
		misc.Warnf(ac.logger, "unable to write metrics file:%s, error:%v", ac.metricsFile, err)
	}
}
