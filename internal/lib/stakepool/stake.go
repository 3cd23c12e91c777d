package stakepool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// DepositStakeArgs are the deposit-stake and deposit-all-stake options. WithdrawAuthority is the
// current withdrawer of the deposited stake and defaults to the fee payer. TokenReceiver and Referrer
// default as in DepositSolArgs.
type DepositStakeArgs struct {
	WithdrawAuthority sol.Signer
	TokenReceiver     *solana.PublicKey
	Referrer          *solana.PublicKey
}

// stakeDeposit is everything a DepositStake needs besides the stake account itself.
type stakeDeposit struct {
	poolAddress       solana.PublicKey
	pool              *sdk.StakePool
	list              *sdk.ValidatorList
	withdrawAuthority solana.PublicKey
	depositAuthority  solana.PublicKey
	customAuthority   bool
	receiver          solana.PublicKey
	referrer          solana.PublicKey
	withdrawer        sol.Signer
}

// prepareStakeDeposit resolves the pool authorities and token accounts of a stake deposit. Creation
// of a missing associated token account is appended to instructions.
func (c *Client) prepareStakeDeposit(
	ctx context.Context,
	poolAddress solana.PublicKey,
	args DepositStakeArgs,
	instructions *[]solana.Instruction,
	rent *uint64,
) (*stakeDeposit, error) {
	pool, list, err := c.getPoolAndList(ctx, poolAddress)
	if err != nil {
		return nil, err
	}
	d := &stakeDeposit{poolAddress: poolAddress, pool: pool, list: list, withdrawer: args.WithdrawAuthority}
	if d.withdrawer == nil {
		d.withdrawer = c.Config.FeePayer
	}
	if d.withdrawAuthority, _, err = sdk.FindWithdrawAuthority(c.Config.ProgramID, poolAddress); err != nil {
		return nil, err
	}
	if d.depositAuthority, d.customAuthority, err = c.stakeDepositAuthority(poolAddress, pool); err != nil {
		return nil, err
	}

	if args.TokenReceiver != nil {
		d.receiver = *args.TokenReceiver
	} else {
		if err = requireSigner("token owner", c.Config.TokenOwner); err != nil {
			return nil, err
		}
		if d.receiver, err = c.addAssociatedTokenAccount(ctx, pool.PoolMint, c.Config.TokenOwner.PublicKey(), instructions, rent); err != nil {
			return nil, err
		}
	}
	d.referrer = d.receiver
	if args.Referrer != nil {
		d.referrer = *args.Referrer
	}
	return d, nil
}

// stakeDepositAuthority returns the authority stake is handed to on deposit. Pools with a custom
// stake deposit authority need it configured as the funding authority, since it must sign.
func (c *Client) stakeDepositAuthority(poolAddress solana.PublicKey, pool *sdk.StakePool) (solana.PublicKey, bool, error) {
	programAuthority, _, err := sdk.FindDepositAuthority(c.Config.ProgramID, poolAddress)
	if err != nil {
		return solana.PublicKey{}, false, err
	}
	configured := c.Config.FundingAuthority
	custom := !pool.StakeDepositAuthority.Equals(programAuthority)
	switch {
	case !custom && configured == nil:
		return programAuthority, false, nil
	case configured == nil:
		return solana.PublicKey{}, false, fmt.Errorf("%w: stake pool requires stake deposit authority %s, set it with --funding-authority",
			ErrInvalidAuthority, pool.StakeDepositAuthority)
	case !configured.PublicKey().Equals(pool.StakeDepositAuthority):
		return solana.PublicKey{}, false, fmt.Errorf("%w: Invalid deposit authority specified, expected %s, received %s",
			ErrInvalidAuthority, pool.StakeDepositAuthority, configured.PublicKey())
	}
	return pool.StakeDepositAuthority, true, nil
}

// instructions checks stake can join the pool and returns the authorize and deposit instructions for it.
func (d *stakeDeposit) instructions(programID, stakeAddress solana.PublicKey, stake *sdk.StakeAccount) ([]solana.Instruction, error) {
	if !stake.IsDelegated() {
		return nil, fmt.Errorf("%w: %s", ErrStakeNotDelegated, stakeAddress)
	}
	if !stake.Withdrawer.Equals(d.withdrawer.PublicKey()) {
		return nil, fmt.Errorf("%w: withdraw authority of stake account %s is %s, received %s",
			ErrInvalidAuthority, stakeAddress, stake.Withdrawer, d.withdrawer.PublicKey())
	}
	info, err := findValidator(d.list, stake.Voter)
	if err != nil {
		return nil, err
	}
	validatorStake, _, err := sdk.FindStakeAddress(programID, stake.Voter, d.poolAddress, info.ValidatorSeedSuffix)
	if err != nil {
		return nil, err
	}
	return sdk.DepositStake(programID, sdk.DepositStakeParams{
		StakePool:         d.poolAddress,
		ValidatorList:     d.pool.ValidatorList,
		DepositAuthority:  d.depositAuthority,
		WithdrawAuthority: d.withdrawAuthority,
		DepositStake:      stakeAddress,
		ValidatorStake:    validatorStake,
		ReserveStake:      d.pool.ReserveStake,
		PoolTokensTo:      d.receiver,
		ManagerFeeAccount: d.pool.ManagerFeeAccount,
		Referrer:          d.referrer,
		PoolMint:          d.pool.PoolMint,
		TokenProgramID:    d.pool.TokenProgramID,
	}, d.withdrawer.PublicKey(), d.customAuthority), nil
}

func (c *Client) stakeDepositSigners(d *stakeDeposit) []sol.Signer {
	signers := []sol.Signer{d.withdrawer}
	if d.customAuthority {
		signers = append(signers, c.Config.FundingAuthority)
	}
	return signers
}

// DepositStake deposits an active stake account, delegated to a validator of the pool, in exchange
// for pool tokens.
func (c *Client) DepositStake(ctx context.Context, poolAddress, stakeAddress solana.PublicKey, args DepositStakeArgs) error {
	if err := requireSigner("fee payer", c.Config.FeePayer); err != nil {
		return err
	}
	if err := c.updateIfNeeded(ctx, poolAddress); err != nil {
		return err
	}
	stake, err := c.GetStakeAccount(ctx, stakeAddress)
	if err != nil {
		return err
	}
	var (
		instructions []solana.Instruction
		rent         uint64
	)
	d, err := c.prepareStakeDeposit(ctx, poolAddress, args, &instructions, &rent)
	if err != nil {
		return err
	}
	deposit, err := d.instructions(c.Config.ProgramID, stakeAddress, stake)
	if err != nil {
		return err
	}
	c.printf("Depositing stake %s, delegated to %s, into stake pool %s", stakeAddress, stake.Voter, poolAddress)
	instructions = append(instructions, deposit...)

	tx, err := c.checkedTransactionWithRent(ctx, instructions, rent, c.stakeDepositSigners(d)...)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// DepositAllStake deposits every stake account whose withdraw authority is stakeAuthority. Accounts
// that aren't delegated to a validator of the pool are skipped with a warning. Each deposit is its
// own transaction.
func (c *Client) DepositAllStake(ctx context.Context, poolAddress, stakeAuthority solana.PublicKey, args DepositStakeArgs) error {
	if err := requireSigner("fee payer", c.Config.FeePayer); err != nil {
		return err
	}
	withdrawer := args.WithdrawAuthority
	if withdrawer == nil {
		withdrawer = c.Config.FeePayer
	}
	if !withdrawer.PublicKey().Equals(stakeAuthority) {
		return fmt.Errorf("%w: withdraw authority %s can't deposit stake accounts of %s",
			ErrInvalidAuthority, withdrawer.PublicKey(), stakeAuthority)
	}
	if err := c.updateIfNeeded(ctx, poolAddress); err != nil {
		return err
	}
	accounts, err := c.Chain.ProgramAccounts(ctx, solana.StakeProgramID, rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{Offset: sdk.StakeWithdrawerOffset, Bytes: solana.Base58(stakeAuthority.Bytes())},
	})
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return fmt.Errorf("%w: withdraw authority %s", ErrNoStakeAccounts, stakeAuthority)
	}
	slices.SortFunc(accounts, func(a, b sol.ProgramAccount) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})

	var (
		instructions []solana.Instruction
		rent         uint64
		deposited    int
	)
	d, err := c.prepareStakeDeposit(ctx, poolAddress, args, &instructions, &rent)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		stake, err := sdk.DecodeStakeAccount(account.Data)
		if err != nil {
			misc.Warnf(c.Logger, "Skipping %s, invalid stake account: %v", account.Address, err)
			continue
		}
		deposit, err := d.instructions(c.Config.ProgramID, account.Address, stake)
		if err != nil {
			misc.Warnf(c.Logger, "Skipping stake account %s: %v", account.Address, err)
			continue
		}
		c.printf("Depositing stake %s, delegated to %s, into stake pool %s", account.Address, stake.Voter, poolAddress)
		// the token account creation, if any, rides with the first deposit
		tx, err := c.checkedTransactionWithRent(ctx, append(instructions, deposit...), rent, c.stakeDepositSigners(d)...)
		if err != nil {
			return err
		}
		if err = c.send(ctx, tx); err != nil {
			return err
		}
		instructions, rent = nil, 0
		deposited++
	}
	if deposited == 0 {
		return fmt.Errorf("%w: none of the %d stake accounts of %s can be deposited into the pool",
			ErrNoStakeAccounts, len(accounts), stakeAuthority)
	}
	misc.Debugf(c.Logger, "deposited %d of %d stake accounts", deposited, len(accounts))
	return nil
}

// WithdrawStakeArgs are the withdraw-stake options. Without VoteAccount or UseReserve the withdrawal
// is spread over the largest validator stakes. StakeReceiver only applies to a single source account.
type WithdrawStakeArgs struct {
	PoolAccount   *solana.PublicKey
	StakeReceiver *solana.PublicKey
	VoteAccount   *solana.PublicKey
	UseReserve    bool
	PoolTokens    uint64
}

// withdrawSource is a stake account to split from and the pool tokens burnt for it.
type withdrawSource struct {
	stake      solana.PublicKey
	vote       *solana.PublicKey
	poolTokens uint64
}

// WithdrawStake burns pool tokens for stake split off validator stake accounts or the reserve. The
// new stake accounts are owned by the token owner.
func (c *Client) WithdrawStake(ctx context.Context, poolAddress solana.PublicKey, args WithdrawStakeArgs) error {
	if err := requireSigner("token owner", c.Config.TokenOwner); err != nil {
		return err
	}
	if args.VoteAccount != nil && args.UseReserve {
		return errors.New("withdrawing from a validator and from the reserve are exclusive")
	}
	if args.StakeReceiver != nil && args.VoteAccount == nil && !args.UseReserve {
		return errors.New("a stake receiver needs a vote account or the reserve to withdraw from")
	}
	if err := c.updateIfNeeded(ctx, poolAddress); err != nil {
		return err
	}
	pool, list, err := c.getPoolAndList(ctx, poolAddress)
	if err != nil {
		return err
	}
	poolAccount, err := c.poolTokenSource(ctx, pool, args.PoolAccount, args.PoolTokens)
	if err != nil {
		return err
	}
	stakeRent, err := c.Chain.MinimumBalanceForRentExemption(ctx, sdk.StakeStateLen)
	if err != nil {
		return err
	}

	var sources []withdrawSource
	switch {
	case args.UseReserve:
		sources = []withdrawSource{{stake: pool.ReserveStake, poolTokens: args.PoolTokens}}
	case args.VoteAccount != nil:
		source, err := c.validatorWithdrawSource(poolAddress, pool, list, *args.VoteAccount, stakeRent, args.PoolTokens)
		if err != nil {
			return err
		}
		sources = []withdrawSource{source}
	default:
		if sources, err = c.prepareWithdrawSources(ctx, poolAddress, pool, list, stakeRent, args.PoolTokens); err != nil {
			return err
		}
	}

	withdrawAuthority, _, err := sdk.FindWithdrawAuthority(c.Config.ProgramID, poolAddress)
	if err != nil {
		return err
	}
	var (
		instructions []solana.Instruction
		signers      = []sol.Signer{c.Config.TokenOwner}
		rent         uint64
	)
	for _, source := range sources {
		lamports := pool.CalcLamportsWithdrawAmount(source.poolTokens)
		if source.vote != nil {
			c.printf("Withdrawing ◎%s, or %s pool tokens, from stake account %s, delegated to %s",
				sol.FormattedSolAmount(lamports), sol.FormattedSolAmount(source.poolTokens), source.stake, *source.vote)
		} else {
			c.printf("Withdrawing ◎%s, or %s pool tokens, from stake account %s",
				sol.FormattedSolAmount(lamports), sol.FormattedSolAmount(source.poolTokens), source.stake)
		}
		var receiver solana.PublicKey
		if args.StakeReceiver != nil {
			receiver = *args.StakeReceiver
		} else {
			newStake := c.newStakeAccount(&instructions, stakeRent)
			receiver = newStake.PublicKey()
			signers = append(signers, newStake)
			rent += stakeRent
		}
		instructions = append(instructions, sdk.WithdrawStake(c.Config.ProgramID, sdk.WithdrawStakeParams{
			StakePool:          poolAddress,
			ValidatorList:      pool.ValidatorList,
			WithdrawAuthority:  withdrawAuthority,
			StakeToSplit:       source.stake,
			StakeToReceive:     receiver,
			UserStakeAuthority: c.Config.TokenOwner.PublicKey(),
			UserTransferAuth:   c.Config.TokenOwner.PublicKey(),
			PoolTokensFrom:     poolAccount,
			ManagerFeeAccount:  pool.ManagerFeeAccount,
			PoolMint:           pool.PoolMint,
			TokenProgramID:     pool.TokenProgramID,
		}, source.poolTokens))
	}

	tx, err := c.checkedTransactionWithRent(ctx, instructions, rent, signers...)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// withdrawableLamports is what a stake account can give up while keeping rent and the minimum delegation.
func withdrawableLamports(balance, stakeRent uint64) uint64 {
	keep := stakeRent + sdk.MinimumActiveStake
	if balance <= keep {
		return 0
	}
	return balance - keep
}

func (c *Client) validatorWithdrawSource(
	poolAddress solana.PublicKey,
	pool *sdk.StakePool,
	list *sdk.ValidatorList,
	vote solana.PublicKey,
	stakeRent,
	poolTokens uint64,
) (withdrawSource, error) {
	info, err := findValidator(list, vote)
	if err != nil {
		return withdrawSource{}, err
	}
	stake, _, err := sdk.FindStakeAddress(c.Config.ProgramID, vote, poolAddress, info.ValidatorSeedSuffix)
	if err != nil {
		return withdrawSource{}, err
	}
	available := pool.CalcPoolTokensForStakeWithdrawal(withdrawableLamports(info.ActiveStakeLamports, stakeRent))
	if available < poolTokens {
		return withdrawSource{}, fmt.Errorf("%w: Not enough lamports available for withdrawal from %s, %s pool tokens asked, %s available",
			ErrInsufficientStake, stake, sol.FormattedSolAmount(poolTokens), sol.FormattedSolAmount(available))
	}
	return withdrawSource{stake: stake, vote: &vote, poolTokens: poolTokens}, nil
}

// prepareWithdrawSources spreads poolTokens over the validator stakes, largest first, and the
// reserve last.
func (c *Client) prepareWithdrawSources(
	ctx context.Context,
	poolAddress solana.PublicKey,
	pool *sdk.StakePool,
	list *sdk.ValidatorList,
	stakeRent,
	poolTokens uint64,
) ([]withdrawSource, error) {
	type candidate struct {
		stake    solana.PublicKey
		vote     *solana.PublicKey
		lamports uint64
	}
	var candidates []candidate
	for _, v := range list.Validators {
		if v.Status != sdk.StakeStatusActive {
			continue
		}
		lamports := withdrawableLamports(v.ActiveStakeLamports, stakeRent)
		if lamports == 0 {
			continue
		}
		stake, _, err := sdk.FindStakeAddress(c.Config.ProgramID, v.VoteAccountAddress, poolAddress, v.ValidatorSeedSuffix)
		if err != nil {
			return nil, err
		}
		vote := v.VoteAccountAddress
		candidates = append(candidates, candidate{stake: stake, vote: &vote, lamports: lamports})
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		switch {
		case a.lamports > b.lamports:
			return -1
		case a.lamports < b.lamports:
			return 1
		}
		return 0
	})
	reserveBalance, err := c.Chain.Balance(ctx, pool.ReserveStake)
	if err != nil {
		return nil, err
	}
	if reserve := withdrawableLamports(reserveBalance, stakeRent); reserve > 0 {
		candidates = append(candidates, candidate{stake: pool.ReserveStake, lamports: reserve})
	}

	var sources []withdrawSource
	remaining := poolTokens
	for _, cand := range candidates {
		amount := min(pool.CalcPoolTokensForStakeWithdrawal(cand.lamports), remaining)
		if amount == 0 {
			continue
		}
		sources = append(sources, withdrawSource{stake: cand.stake, vote: cand.vote, poolTokens: amount})
		remaining -= amount
		if remaining == 0 {
			break
		}
	}
	if remaining > 0 {
		return nil, fmt.Errorf("%w: No stake accounts found in this pool with enough balance to withdraw %s pool tokens.",
			ErrInsufficientStake, sol.FormattedSolAmount(poolTokens))
	}
	misc.Debugf(c.Logger, "withdrawing %d pool tokens from %d stake accounts", poolTokens, len(sources))
	return sources, nil
}
