package main

import (
	"context"
	"fmt"
	"math"

	"github.com/urfave/cli/v3"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/stakepool"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

func GetPoolCmdOpts() []*cli.Command {
	return []*cli.Command{
		{
			Name:     "create-pool",
			Usage:    "Create a new stake pool",
			Category: "pool",
			Before:   requireSigners,
			Action:   CreatePool,
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:     "epoch-fee-numerator",
					Usage:    "Epoch fee numerator, fee amount is numerator divided by denominator.",
					Aliases:  []string{"n"},
					Required: true,
				},
				&cli.UintFlag{
					Name:     "epoch-fee-denominator",
					Usage:    "Epoch fee denominator, fee amount is numerator divided by denominator.",
					Aliases:  []string{"d"},
					Required: true,
				},
				&cli.UintFlag{
					Name:  "withdrawal-fee-numerator",
					Usage: "Withdrawal fee numerator, fee amount is numerator divided by denominator (default 0).",
				},
				&cli.UintFlag{
					Name:  "withdrawal-fee-denominator",
					Usage: "Withdrawal fee denominator, fee amount is numerator divided by denominator (default 0).",
				},
				&cli.UintFlag{
					Name:  "deposit-fee-numerator",
					Usage: "Deposit fee numerator, fee amount is numerator divided by denominator (default 0).",
				},
				&cli.UintFlag{
					Name:  "deposit-fee-denominator",
					Usage: "Deposit fee denominator, fee amount is numerator divided by denominator (default 0).",
				},
				&cli.UintFlag{
					Name:  "referral-fee",
					Usage: "Referral fee percentage, maximum 100",
				},
				&cli.UintFlag{
					Name:     "max-validators",
					Usage:    "Max number of validators included in the stake pool",
					Aliases:  []string{"m"},
					Required: true,
				},
				&cli.StringFlag{
					Name:    "deposit-authority",
					Usage:   "Deposit authority required to sign all deposits into the stake pool",
					Aliases: []string{"a"},
				},
				&cli.StringFlag{
					Name:    "pool-keypair",
					Usage:   "Stake pool keypair [default: new keypair]",
					Aliases: []string{"p"},
				},
				&cli.StringFlag{
					Name:  "validator-list-keypair",
					Usage: "Validator list keypair [default: new keypair]",
				},
				&cli.StringFlag{
					Name:  "mint-keypair",
					Usage: "Stake pool mint keypair [default: new keypair]",
				},
				&cli.StringFlag{
					Name:  "reserve-keypair",
					Usage: "Stake pool reserve keypair [default: new keypair]",
				},
				&cli.BoolFlag{
					Name:  "unsafe-fees",
					Usage: "Bypass fee checks, allowing pool to be created with unsafe fees",
				},
			},
		},
		{
			Name:      "list",
			Usage:     "List stake accounts managed by this pool",
			ArgsUsage: "<pool>",
			Category:  "pool",
			Action:    ListPool,
		},
		{
			Name:     "list-all",
			Usage:    "List information about all stake pools",
			Category: "pool",
			Action:   ListAllPools,
		},
		{
			Name:      "update",
			Usage:     "Updates all balances in the pool after validator stake accounts receive rewards.",
			ArgsUsage: "<pool>",
			Category:  "pool",
			Before:    requireSigners,
			Action:    UpdatePool,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "force",
					Usage: "Update all balances, even if it has already been performed this epoch.",
				},
				&cli.BoolFlag{
					Name:  "no-merge",
					Usage: "Do not automatically merge transient stakes. Useful if the stake pool is in an expected state, but the balances still need to be updated.",
				},
				&cli.BoolFlag{
					Name:  "watch",
					Usage: "Keep running, updating the pool once per epoch until interrupted",
				},
			},
		},
	}
}

func feeFlags(cmd *cli.Command, prefix string) sdk.Fee {
	return sdk.Fee{
		Numerator:   cmd.Uint(prefix + "-numerator"),
		Denominator: cmd.Uint(prefix + "-denominator"),
	}
}

func CreatePool(ctx context.Context, cmd *cli.Command) error {
	referralFee := cmd.Uint("referral-fee")
	if referralFee > 100 {
		return cli.Exit(fmt.Sprintf("Invalid fee %d%%. Fee needs to be in range [0-100]", referralFee), 1)
	}
	maxValidators := cmd.Uint("max-validators")
	if maxValidators == 0 || maxValidators > math.MaxUint32 {
		return cli.Exit(fmt.Sprintf("invalid max validators:%d", maxValidators), 1)
	}
	args := stakepool.CreatePoolArgs{
		EpochFee:      feeFlags(cmd, "epoch-fee"),
		WithdrawalFee: feeFlags(cmd, "withdrawal-fee"),
		DepositFee:    feeFlags(cmd, "deposit-fee"),
		ReferralFee:   uint8(referralFee),
		MaxValidators: uint32(maxValidators),
		UnsafeFees:    cmd.Bool("unsafe-fees"),
	}
	var err error
	if args.DepositAuthority, err = optionalSignerFlag(cmd, "deposit-authority"); err != nil {
		return err
	}
	if args.StakePool, err = optionalSignerFlag(cmd, "pool-keypair"); err != nil {
		return err
	}
	if args.ValidatorList, err = optionalSignerFlag(cmd, "validator-list-keypair"); err != nil {
		return err
	}
	if args.Mint, err = optionalSignerFlag(cmd, "mint-keypair"); err != nil {
		return err
	}
	if args.Reserve, err = optionalSignerFlag(cmd, "reserve-keypair"); err != nil {
		return err
	}
	return App.client.CreatePool(ctx, args)
}

func ListPool(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	return App.client.List(ctx, pool)
}

func ListAllPools(ctx context.Context, cmd *cli.Command) error {
	return App.client.ListAll(ctx)
}

func UpdatePool(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	if cmd.Bool("watch") {
		return runUpdateWatch(ctx, pool, cmd.Bool("no-merge"))
	}
	return App.client.Update(ctx, pool, cmd.Bool("force"), cmd.Bool("no-merge"))
}
