package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/stakepool"
)

func GetFundingCmdOpts() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "deposit-sol",
			Usage:     "Deposit SOL into the stake pool in exchange for pool tokens",
			ArgsUsage: "<pool> [amount]",
			Category:  "funding",
			Before:    requireSigners,
			Action:    DepositSol,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "from",
					Usage: "Source account of funds. Defaults to the fee payer.",
				},
				&cli.StringFlag{
					Name:  "token-receiver",
					Usage: "Account to receive the minted pool tokens. Defaults to the token owner's associated pool token account.",
				},
				&cli.StringFlag{
					Name:  "referrer",
					Usage: "Pool token account to receive the referral fees for deposits. Defaults to the token receiver.",
				},
			},
		},
		{
			Name:      "deposit-stake",
			Usage:     "Deposit an active stake account into the stake pool in exchange for pool tokens",
			ArgsUsage: "<pool> <stake-account>",
			Category:  "funding",
			Before:    requireSigners,
			Action:    DepositStake,
			Flags:     depositStakeFlags(),
		},
		{
			Name:      "deposit-all-stake",
			Usage:     "Deposit all active stake accounts of a withdraw authority into the stake pool in exchange for pool tokens",
			ArgsUsage: "<pool> <stake-authority>",
			Category:  "funding",
			Before:    requireSigners,
			Action:    DepositAllStake,
			Flags:     depositStakeFlags(),
		},
		{
			Name:      "withdraw-stake",
			Usage:     "Withdraw active stake from the stake pool in exchange for pool tokens",
			ArgsUsage: "<pool> <amount>",
			Category:  "funding",
			Before:    requireSigners,
			Action:    WithdrawStake,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "pool-account",
					Usage: "Pool token account to withdraw tokens from. Defaults to the token owner's associated pool token account.",
				},
				&cli.StringFlag{
					Name:  "stake-receiver",
					Usage: "Stake account to receive the withdrawn stake. Defaults to a new stake account. Requires --vote-account or --use-reserve.",
				},
				&cli.StringFlag{
					Name:  "vote-account",
					Usage: "Validator to withdraw from. Defaults to the largest validator stakes in the pool.",
				},
				&cli.BoolFlag{
					Name:  "use-reserve",
					Usage: "Withdraw from the stake pool's reserve. Only possible if all validator stakes are at the minimum possible amount.",
				},
			},
		},
		{
			Name:      "withdraw-sol",
			Usage:     "Withdraw SOL from the stake pool's reserve in exchange for pool tokens",
			ArgsUsage: "<pool> <sol-receiver> <amount>",
			Category:  "funding",
			Before:    requireSigners,
			Action:    WithdrawSol,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "pool-account",
					Usage: "Pool token account to withdraw tokens from. Defaults to the token owner's associated pool token account.",
				},
			},
		},
	}
}

func depositStakeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "withdraw-authority",
			Usage: "Withdraw authority keypair of the stake to deposit. Defaults to the fee payer.",
		},
		&cli.StringFlag{
			Name:  "token-receiver",
			Usage: "Account to receive the minted pool tokens. Defaults to the token owner's associated pool token account.",
		},
		&cli.StringFlag{
			Name:  "referrer",
			Usage: "Pool token account to receive the referral fees for deposits. Defaults to the token receiver.",
		},
	}
}

func depositStakeArgs(cmd *cli.Command) (stakepool.DepositStakeArgs, error) {
	var (
		args stakepool.DepositStakeArgs
		err  error
	)
	if args.WithdrawAuthority, err = optionalSignerFlag(cmd, "withdraw-authority"); err != nil {
		return args, err
	}
	if args.TokenReceiver, err = optionalPubkeyFlag(cmd, "token-receiver"); err != nil {
		return args, err
	}
	if args.Referrer, err = optionalPubkeyFlag(cmd, "referrer"); err != nil {
		return args, err
	}
	return args, nil
}

func DepositStake(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	stake, err := pubkeyArg(cmd, 1, "stake-account")
	if err != nil {
		return err
	}
	args, err := depositStakeArgs(cmd)
	if err != nil {
		return err
	}
	return App.client.DepositStake(ctx, pool, stake, args)
}

func DepositAllStake(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	authority, err := pubkeyArg(cmd, 1, "stake-authority")
	if err != nil {
		return err
	}
	args, err := depositStakeArgs(cmd)
	if err != nil {
		return err
	}
	return App.client.DepositAllStake(ctx, pool, authority, args)
}

func WithdrawStake(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	poolTokens, err := solAmountArg(cmd, 1, "amount")
	if err != nil {
		return err
	}
	args := stakepool.WithdrawStakeArgs{PoolTokens: poolTokens, UseReserve: cmd.Bool("use-reserve")}
	if args.PoolAccount, err = optionalPubkeyFlag(cmd, "pool-account"); err != nil {
		return err
	}
	if args.StakeReceiver, err = optionalPubkeyFlag(cmd, "stake-receiver"); err != nil {
		return err
	}
	if args.VoteAccount, err = optionalPubkeyFlag(cmd, "vote-account"); err != nil {
		return err
	}
	if args.VoteAccount != nil && args.UseReserve {
		return cli.Exit("only one of --vote-account or --use-reserve may be given", 1)
	}
	if args.StakeReceiver != nil && args.VoteAccount == nil && !args.UseReserve {
		return cli.Exit("--stake-receiver requires --vote-account or --use-reserve", 1)
	}
	return App.client.WithdrawStake(ctx, pool, args)
}

func DepositSol(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	lamports, err := optionalSolAmountArg(cmd, 1, "amount")
	if err != nil {
		return err
	}
	args := stakepool.DepositSolArgs{Lamports: lamports}
	if args.From, err = optionalSignerFlag(cmd, "from"); err != nil {
		return err
	}
	if args.TokenReceiver, err = optionalPubkeyFlag(cmd, "token-receiver"); err != nil {
		return err
	}
	if args.Referrer, err = optionalPubkeyFlag(cmd, "referrer"); err != nil {
		return err
	}
	return App.client.DepositSol(ctx, pool, args)
}

func WithdrawSol(ctx context.Context, cmd *cli.Command) error {
	pool, err := pubkeyArg(cmd, 0, "pool")
	if err != nil {
		return err
	}
	receiver, err := pubkeyArg(cmd, 1, "sol-receiver")
	if err != nil {
		return err
	}
	poolTokens, err := solAmountArg(cmd, 2, "amount")
	if err != nil {
		return err
	}
	poolAccount, err := optionalPubkeyFlag(cmd, "pool-account")
	if err != nil {
		return err
	}
	return App.client.WithdrawSol(ctx, pool, stakepool.WithdrawSolArgs{
		PoolAccount: poolAccount,
		SolReceiver: receiver,
		PoolTokens:  poolTokens,
	})
}
