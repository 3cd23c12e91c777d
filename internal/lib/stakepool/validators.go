package stakepool

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// AddValidator adds the validator stake account for vote to the pool. A validator already in the
// list is skipped with a warning.
func (c *Client) AddValidator(ctx context.Context, poolAddress, vote solana.PublicKey) error {
	if err := requireSigner("staker", c.Config.Staker); err != nil {
		return err
	}
	stake, _, err := sdk.FindStakeAddress(c.Config.ProgramID, vote, poolAddress, 0)
	if err != nil {
		return err
	}
	c.printf("Adding stake account %s, delegated to %s", stake, vote)

	pool, list, err := c.getPoolAndList(ctx, poolAddress)
	if err != nil {
		return err
	}
	if list.Contains(vote) {
		misc.Warnf(c.Logger, "Stake pool already contains validator %s, ignoring", vote)
		return nil
	}
	if err = c.updateIfNeeded(ctx, poolAddress); err != nil {
		return err
	}

	ix, err := sdk.AddValidatorToPoolWithVote(c.Config.ProgramID, pool, poolAddress, c.Config.FeePayer.PublicKey(), vote)
	if err != nil {
		return err
	}
	tx, err := c.checkedTransaction(ctx, []solana.Instruction{ix}, c.Config.Staker)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// RemoveValidator removes vote from the pool. Its stake is moved into stakeReceiver, or a new stake
// account when stakeReceiver is nil, with newAuthority (default: fee payer) as staker and withdrawer.
func (c *Client) RemoveValidator(ctx context.Context, poolAddress, vote solana.PublicKey, newAuthority, stakeReceiver *solana.PublicKey) error {
	if err := requireSigner("staker", c.Config.Staker); err != nil {
		return err
	}
	if err := c.updateIfNeeded(ctx, poolAddress); err != nil {
		return err
	}
	pool, list, err := c.getPoolAndList(ctx, poolAddress)
	if err != nil {
		return err
	}
	info, err := findValidator(list, vote)
	if err != nil {
		return err
	}
	stake, _, err := sdk.FindStakeAddress(c.Config.ProgramID, vote, poolAddress, info.ValidatorSeedSuffix)
	if err != nil {
		return err
	}
	c.printf("Removing stake account %s, delegated to %s", stake, vote)

	authority := c.Config.FeePayer.PublicKey()
	if newAuthority != nil {
		authority = *newAuthority
	}

	var (
		instructions []solana.Instruction
		signers      = []sol.Signer{c.Config.Staker}
		rent         uint64
		receiver     solana.PublicKey
	)
	if stakeReceiver != nil {
		receiver = *stakeReceiver
	} else {
		if rent, err = c.Chain.MinimumBalanceForRentExemption(ctx, sdk.StakeStateLen); err != nil {
			return err
		}
		newStake := c.newStakeAccount(&instructions, rent)
		receiver = newStake.PublicKey()
		signers = append(signers, newStake)
	}

	ix, err := sdk.RemoveValidatorFromPoolWithVote(c.Config.ProgramID, pool, poolAddress, vote, authority,
		info.ValidatorSeedSuffix, info.TransientSeedSuffix, receiver)
	if err != nil {
		return err
	}
	instructions = append(instructions, ix)
	tx, err := c.checkedTransactionWithRent(ctx, instructions, rent, signers...)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// IncreaseValidatorStake moves lamports from the reserve to the validator through its transient stake account.
func (c *Client) IncreaseValidatorStake(ctx context.Context, poolAddress, vote solana.PublicKey, lamports uint64) error {
	return c.changeValidatorStake(ctx, poolAddress, vote, lamports, true)
}

// DecreaseValidatorStake moves lamports from the validator back toward the reserve.
func (c *Client) DecreaseValidatorStake(ctx context.Context, poolAddress, vote solana.PublicKey, lamports uint64) error {
	return c.changeValidatorStake(ctx, poolAddress, vote, lamports, false)
}

func (c *Client) changeValidatorStake(ctx context.Context, poolAddress, vote solana.PublicKey, lamports uint64, increase bool) error {
	if err := requireSigner("staker", c.Config.Staker); err != nil {
		return err
	}
	if err := c.updateIfNeeded(ctx, poolAddress); err != nil {
		return err
	}
	pool, list, err := c.getPoolAndList(ctx, poolAddress)
	if err != nil {
		return err
	}
	info, err := findValidator(list, vote)
	if err != nil {
		return err
	}

	var ix solana.Instruction
	if increase {
		ix, err = sdk.IncreaseValidatorStakeWithVote(c.Config.ProgramID, pool, poolAddress, vote, lamports,
			info.ValidatorSeedSuffix, info.TransientSeedSuffix)
	} else {
		ix, err = sdk.DecreaseValidatorStakeWithVote(c.Config.ProgramID, pool, poolAddress, vote, lamports,
			info.ValidatorSeedSuffix, info.TransientSeedSuffix)
	}
	if err != nil {
		return err
	}
	misc.Debugf(c.Logger, "changing stake of validator:%s by %d lamports, increase:%v, transient seed:%d",
		vote, lamports, increase, info.TransientSeedSuffix)
	tx, err := c.checkedTransaction(ctx, []solana.Instruction{ix}, c.Config.Staker)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// SetPreferredValidator sets the preferred deposit or withdraw validator, or clears it when vote is nil.
func (c *Client) SetPreferredValidator(ctx context.Context, poolAddress solana.PublicKey, validatorType sdk.PreferredValidatorType, vote *solana.PublicKey) error {
	if err := requireSigner("staker", c.Config.Staker); err != nil {
		return err
	}
	pool, list, err := c.getPoolAndList(ctx, poolAddress)
	if err != nil {
		return err
	}
	if vote != nil {
		if _, err = findValidator(list, *vote); err != nil {
			return err
		}
	}
	misc.Debugf(c.Logger, "setting preferred %s validator:%v", preferredTypeName(validatorType), vote)
	ix := sdk.SetPreferredValidator(c.Config.ProgramID, poolAddress, c.Config.Staker.PublicKey(), pool.ValidatorList,
		validatorType, vote)
	tx, err := c.checkedTransaction(ctx, []solana.Instruction{ix}, c.Config.Staker)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

func preferredTypeName(t sdk.PreferredValidatorType) string {
	switch t {
	case sdk.PreferredValidatorDeposit:
		return "deposit"
	case sdk.PreferredValidatorWithdraw:
		return "withdraw"
	}
	return fmt.Sprintf("unknown(%d)", t)
}
