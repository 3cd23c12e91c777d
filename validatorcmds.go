package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func GetValidatorCmdOpts() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "add-validator",
			Usage:     "Add validator account to the stake pool. Must be signed by the pool staker.",
			ArgsUsage: "<pool> <vote-account>",
			Category:  "validator",
			Before:    requireSigners,
			Action:    AddValidator,
		},
		{
			Name:      "remove-validator",
			Usage:     "Remove validator account from the stake pool. Must be signed by the pool staker.",
			ArgsUsage: "<pool> <vote-account>",
			Category:  "validator",
			Before:    requireSigners,
			Action:    RemoveValidator,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "new-authority",
					Usage: "New authority to set as Staker and Withdrawer in the stake account removed from the pool. Defaults to the fee payer.",
				},
				&cli.StringFlag{
					Name:  "stake-receiver",
					Usage: "Stake account to receive SOL from the stake pool. Defaults to a new stake account.",
				},
			},
		},
		{
			Name:      "increase-validator-stake",
			Usage:     "Increase stake to a validator, drawing from the stake pool reserve. Must be signed by the pool staker.",
			ArgsUsage: "<pool> <vote-account> [amount]",
			Category:  "validator",
			Before:    requireSigners,
			Action:    IncreaseValidatorStake,
		},
		{
			Name:      "decrease-validator-stake",
			Usage:     "Decrease stake to a validator, splitting from the active stake. Must be signed by the pool staker.",
			ArgsUsage: "<pool> <vote-account> [amount]",
			Category:  "validator",
			Before:    requireSigners,
			Action:    DecreaseValidatorStake,
		},
		{
			Name:      "set-preferred-validator",
			Usage:     "Set the preferred validator for deposits or withdrawals. Must be signed by the pool staker.",
			ArgsUsage: "<pool> <deposit|withdraw>",
			Category:  "validator",
			Before:    requireSigners,
			Action:    SetPreferredValidator,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "vote-account",
					Usage: "The validator vote account that deposits or withdrawals must go through",
				},
				&cli.BoolFlag{
					Name:  "unset",
					Usage: "Unset the preferred validator.",
				},
			},
		},
	}
}

func AddValidator(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	vote, err := pubkeyArg(cmd, 1, "vote-account")
	if err != nil {
		return err
	}
	return App.client.AddValidator(ctx, pool, vote)
}

func RemoveValidator(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	vote, err := pubkeyArg(cmd, 1, "vote-account")
	if err != nil {
		return err
	}
	newAuthority, err := optionalPubkeyFlag(cmd, "new-authority")
	if err != nil {
		return err
	}
	stakeReceiver, err := optionalPubkeyFlag(cmd, "stake-receiver")
	if err != nil {
		return err
	}
	return App.client.RemoveValidator(ctx, pool, vote, newAuthority, stakeReceiver)
}

func IncreaseValidatorStake(ctx context.Context, cmd *cli.Command) error {
	return changeValidatorStake(ctx, cmd, true)
}

func DecreaseValidatorStake(ctx context.Context, cmd *cli.Command) error {
	return changeValidatorStake(ctx, cmd, false)
}

func changeValidatorStake(ctx context.Context, cmd *cli.Command, increase bool) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	vote, err := pubkeyArg(cmd, 1, "vote-account")
	if err != nil {
		return err
	}
	lamports, err := optionalSolAmountArg(cmd, 2, "amount")
	if err != nil {
		return err
	}
	if increase {
		return App.client.IncreaseValidatorStake(ctx, pool, vote, lamports)
	}
	return App.client.DecreaseValidatorStake(ctx, pool, vote, lamports)
}

func SetPreferredValidator(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	typeArg, err := requiredArg(cmd, 1, "deposit|withdraw")
	if err != nil {
		return err
	}
	validatorType, err := parsePreferredType(typeArg)
	if err != nil {
		return err
	}
	vote, err := optionalPubkeyFlag(cmd, "vote-account")
	if err != nil {
		return err
	}
	if (vote == nil) == !cmd.Bool("unset") {
		return cli.Exit("exactly one of --vote-account or --unset is required", 1)
	}
	return App.client.SetPreferredValidator(ctx, pool, validatorType, vote)
}
