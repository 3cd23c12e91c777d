package main

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v3"

	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

func GetAuthorityCmdOpts() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "set-manager",
			Usage:     "Change manager or fee receiver account for the stake pool. Must be signed by the current manager.",
			ArgsUsage: "<pool>",
			Category:  "authority",
			Before:    requireSigners,
			Action:    SetManager,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "new-manager",
					Usage: "Keypair for the new stake pool manager.",
				},
				&cli.StringFlag{
					Name:  "new-fee-receiver",
					Usage: "Public key for the new account to set as the stake pool fee receiver.",
				},
			},
		},
		{
			Name:      "set-staker",
			Usage:     "Change staker account for the stake pool. Must be signed by the manager or current staker.",
			ArgsUsage: "<pool> <new-staker>",
			Category:  "authority",
			Before:    requireSigners,
			Action:    SetStaker,
		},
		{
			Name:      "set-funding-authority",
			Usage:     "Change one of the funding authorities for the stake pool. Must be signed by the manager.",
			ArgsUsage: "<pool> <stake-deposit|sol-deposit|sol-withdraw> [new-authority]",
			Category:  "authority",
			Before:    requireSigners,
			Action:    SetFundingAuthority,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "unset",
					Usage: "Unset the funding authority, so anyone can deposit or withdraw.",
				},
			},
		},
		{
			Name:      "set-fee",
			Usage:     "Change the fee assessed by the stake pool. Must be signed by the manager.",
			ArgsUsage: "<pool> <epoch|stake-deposit|sol-deposit|stake-withdrawal|sol-withdrawal> <numerator> <denominator>",
			Category:  "authority",
			Before:    requireSigners,
			Action:    SetFee,
		},
		{
			Name:      "set-referral-fee",
			Usage:     "Change the referral fee assessed by the stake pool for stake deposits. Must be signed by the manager.",
			ArgsUsage: "<pool> <stake|sol> <fee>",
			Category:  "authority",
			Before:    requireSigners,
			Action:    SetReferralFee,
		},
	}
}

func SetManager(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	newManager, err := optionalSignerFlag(cmd, "new-manager")
	if err != nil {
		return err
	}
	newFeeReceiver, err := optionalPubkeyFlag(cmd, "new-fee-receiver")
	if err != nil {
		return err
	}
	if newManager == nil && newFeeReceiver == nil {
		return cli.Exit("at least one of --new-manager or --new-fee-receiver is required", 1)
	}
	return App.client.SetManager(ctx, pool, newManager, newFeeReceiver)
}

func SetStaker(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	newStaker, err := pubkeyArg(cmd, 1, "new-staker")
	if err != nil {
		return err
	}
	return App.client.SetStaker(ctx, pool, newStaker)
}

func SetFundingAuthority(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	typeArg, err := requiredArg(cmd, 1, "funding-type")
	if err != nil {
		return err
	}
	fundingType, err := parseFundingType(typeArg)
	if err != nil {
		return err
	}
	var newAuthority *solana.PublicKey
	authorityArg := cmd.Args().Get(2)
	switch {
	case authorityArg != "" && cmd.Bool("unset"):
		return cli.Exit("new-authority and --unset are mutually exclusive", 1)
	case authorityArg == "" && !cmd.Bool("unset"):
		return cli.Exit("one of new-authority or --unset is required", 1)
	case authorityArg != "":
		pk, err := parsePubkey("new-authority", authorityArg)
		if err != nil {
			return err
		}
		newAuthority = &pk
	}
	return App.client.SetFundingAuthority(ctx, pool, fundingType, newAuthority)
}

func SetFee(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	typeArg, err := requiredArg(cmd, 1, "fee-type")
	if err != nil {
		return err
	}
	kind, err := parseFeeKind(typeArg)
	if err != nil {
		return err
	}
	numerator, err := uintArg(cmd, 2, "numerator")
	if err != nil {
		return err
	}
	denominator, err := uintArg(cmd, 3, "denominator")
	if err != nil {
		return err
	}
	return App.client.SetFee(ctx, pool, sdk.FeeType{
		Kind: kind,
		Fee:  sdk.Fee{Numerator: numerator, Denominator: denominator},
	})
}

func SetReferralFee(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	typeArg, err := requiredArg(cmd, 1, "stake|sol")
	if err != nil {
		return err
	}
	kind, err := parseReferralKind(typeArg)
	if err != nil {
		return err
	}
	fee, err := uintArg(cmd, 2, "fee")
	if err != nil {
		return err
	}
	if fee > 100 {
		return cli.Exit(fmt.Sprintf("Invalid fee %d%%. Fee needs to be in range [0-100]", fee), 1)
	}
	return App.client.SetReferralFee(ctx, pool, kind, uint8(fee))
}
