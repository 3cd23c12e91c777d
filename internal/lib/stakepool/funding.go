package stakepool

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// DepositSolArgs are the deposit-sol options. From defaults to the fee payer, TokenReceiver to the
// token owner's associated pool token account and Referrer to the token receiver.
type DepositSolArgs struct {
	From          sol.Signer
	TokenReceiver *solana.PublicKey
	Referrer      *solana.PublicKey
	Lamports      uint64
}

// DepositSol deposits SOL into the pool reserve in exchange for pool tokens.
func (c *Client) DepositSol(ctx context.Context, poolAddress solana.PublicKey, args DepositSolArgs) error {
	if err := requireSigner("fee payer", c.Config.FeePayer); err != nil {
		return err
	}
	if err := c.updateIfNeeded(ctx, poolAddress); err != nil {
		return err
	}
	from := args.From
	if from == nil {
		from = c.Config.FeePayer
	}
	balance, err := c.Chain.Balance(ctx, from.PublicKey())
	if err != nil {
		return err
	}
	if balance < args.Lamports {
		return fmt.Errorf("%w: Not enough SOL to deposit into pool: ◎%s.\nMaximum deposit amount is ◎%s SOL.",
			ErrInsufficientSol, sol.FormattedSolAmount(args.Lamports), sol.FormattedSolAmount(balance))
	}
	pool, err := c.GetStakePool(ctx, poolAddress)
	if err != nil {
		return err
	}

	// the deposit is made from an ephemeral account funded by from
	userTransfer := solana.NewWallet().PrivateKey
	signers := []sol.Signer{userTransfer, from}
	instructions := []solana.Instruction{
		system.NewTransferInstruction(args.Lamports, from.PublicKey(), userTransfer.PublicKey()).Build(),
	}

	var rent uint64
	var receiver solana.PublicKey
	if args.TokenReceiver != nil {
		receiver = *args.TokenReceiver
	} else {
		if err = requireSigner("token owner", c.Config.TokenOwner); err != nil {
			return err
		}
		if receiver, err = c.addAssociatedTokenAccount(ctx, pool.PoolMint, c.Config.TokenOwner.PublicKey(), &instructions, &rent); err != nil {
			return err
		}
	}
	referrer := receiver
	if args.Referrer != nil {
		referrer = *args.Referrer
	}

	withdrawAuthority, _, err := sdk.FindWithdrawAuthority(c.Config.ProgramID, poolAddress)
	if err != nil {
		return err
	}
	params := sdk.DepositSolParams{
		StakePool:         poolAddress,
		WithdrawAuthority: withdrawAuthority,
		ReserveStake:      pool.ReserveStake,
		From:              userTransfer.PublicKey(),
		PoolTokensTo:      receiver,
		ManagerFeeAccount: pool.ManagerFeeAccount,
		Referrer:          referrer,
		PoolMint:          pool.PoolMint,
		TokenProgramID:    pool.TokenProgramID,
	}
	if params.SolDepositAuthority, err = c.fundingAuthority(pool.SolDepositAuthority, "deposit"); err != nil {
		return err
	}
	if params.SolDepositAuthority != nil {
		signers = append(signers, c.Config.FundingAuthority)
	}
	instructions = append(instructions, sdk.DepositSol(c.Config.ProgramID, params, args.Lamports))

	tx, err := c.checkedTransactionWithRent(ctx, instructions, rent, signers...)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// WithdrawSolArgs are the withdraw-sol options. PoolAccount defaults to the token owner's associated
// pool token account.
type WithdrawSolArgs struct {
	PoolAccount *solana.PublicKey
	SolReceiver solana.PublicKey
	PoolTokens  uint64
}

// WithdrawSol burns pool tokens for SOL taken from the reserve.
func (c *Client) WithdrawSol(ctx context.Context, poolAddress solana.PublicKey, args WithdrawSolArgs) error {
	if err := requireSigner("token owner", c.Config.TokenOwner); err != nil {
		return err
	}
	if err := c.updateIfNeeded(ctx, poolAddress); err != nil {
		return err
	}
	pool, err := c.GetStakePool(ctx, poolAddress)
	if err != nil {
		return err
	}
	poolAccount, err := c.poolTokenSource(ctx, pool, args.PoolAccount, args.PoolTokens)
	if err != nil {
		return err
	}

	withdrawAuthority, _, err := sdk.FindWithdrawAuthority(c.Config.ProgramID, poolAddress)
	if err != nil {
		return err
	}
	params := sdk.WithdrawSolParams{
		StakePool:         poolAddress,
		WithdrawAuthority: withdrawAuthority,
		UserTransferAuth:  c.Config.TokenOwner.PublicKey(),
		PoolTokensFrom:    poolAccount,
		ReserveStake:      pool.ReserveStake,
		LamportsTo:        args.SolReceiver,
		ManagerFeeAccount: pool.ManagerFeeAccount,
		PoolMint:          pool.PoolMint,
		TokenProgramID:    pool.TokenProgramID,
	}
	signers := []sol.Signer{c.Config.TokenOwner}
	if params.SolWithdrawAuthority, err = c.fundingAuthority(pool.SolWithdrawAuthority, "withdraw"); err != nil {
		return err
	}
	if params.SolWithdrawAuthority != nil {
		signers = append(signers, c.Config.FundingAuthority)
	}

	tx, err := c.checkedTransaction(ctx, []solana.Instruction{sdk.WithdrawSol(c.Config.ProgramID, params, args.PoolTokens)}, signers...)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// poolTokenSource returns the token account pool tokens are burnt from, by default the token owner's
// associated pool token account, after checking it holds at least poolTokens.
func (c *Client) poolTokenSource(ctx context.Context, pool *sdk.StakePool, poolAccount *solana.PublicKey, poolTokens uint64) (solana.PublicKey, error) {
	var address solana.PublicKey
	if poolAccount != nil {
		address = *poolAccount
	} else {
		ata, _, err := solana.FindAssociatedTokenAddress(c.Config.TokenOwner.PublicKey(), pool.PoolMint)
		if err != nil {
			return address, fmt.Errorf("unable to derive associated token account: %w", err)
		}
		address = ata
	}
	tokenAccount, err := c.GetTokenAccount(ctx, address, pool.PoolMint)
	if err != nil {
		return address, err
	}
	if tokenAccount.Amount < poolTokens {
		return address, fmt.Errorf("%w: Not enough token balance to withdraw %s pool tokens.\nMaximum withdraw amount is %s pool tokens.",
			ErrInsufficientTokens, sol.FormattedSolAmount(poolTokens), sol.FormattedSolAmount(tokenAccount.Amount))
	}
	return address, nil
}

// fundingAuthority matches the configured funding authority against the pool's authority for kind.
// It returns nil when the pool has no authority set.
func (c *Client) fundingAuthority(expected *solana.PublicKey, kind string) (*solana.PublicKey, error) {
	configured := c.Config.FundingAuthority
	switch {
	case expected == nil && configured == nil:
		return nil, nil
	case expected == nil:
		return nil, fmt.Errorf("%w: SOL %s authority specified in arguments but stake pool has none", ErrInvalidAuthority, kind)
	case configured == nil:
		return nil, fmt.Errorf("%w: stake pool requires SOL %s authority %s, set it with --funding-authority",
			ErrInvalidAuthority, kind, expected)
	case !configured.PublicKey().Equals(*expected):
		return nil, fmt.Errorf("%w: Invalid %s authority specified, expected %s, received %s",
			ErrInvalidAuthority, kind, expected, configured.PublicKey())
	}
	pk := configured.PublicKey()
	return &pk, nil
}
