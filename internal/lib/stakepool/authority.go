package stakepool

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// SetManager hands the pool to newManager and/or points fees at newFeeReceiver. Either may be nil to
// keep the current value.
func (c *Client) SetManager(ctx context.Context, poolAddress solana.PublicKey, newManager sol.Signer, newFeeReceiver *solana.PublicKey) error {
	if err := requireSigner("manager", c.Config.Manager); err != nil {
		return err
	}
	pool, err := c.GetStakePool(ctx, poolAddress)
	if err != nil {
		return err
	}
	signers := []sol.Signer{c.Config.Manager}
	manager := pool.Manager
	if newManager != nil {
		manager = newManager.PublicKey()
		signers = append(signers, newManager)
	}
	feeReceiver := pool.ManagerFeeAccount
	if newFeeReceiver != nil {
		// fee receiver must hold the pool mint
		if _, err = c.GetTokenAccount(ctx, *newFeeReceiver, pool.PoolMint); err != nil {
			return err
		}
		feeReceiver = *newFeeReceiver
	}
	ix := sdk.SetManager(c.Config.ProgramID, poolAddress, c.Config.Manager.PublicKey(), manager, feeReceiver)
	tx, err := c.checkedTransaction(ctx, []solana.Instruction{ix}, signers...)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

func (c *Client) SetStaker(ctx context.Context, poolAddress, newStaker solana.PublicKey) error {
	if err := requireSigner("manager", c.Config.Manager); err != nil {
		return err
	}
	ix := sdk.SetStaker(c.Config.ProgramID, poolAddress, c.Config.Manager.PublicKey(), newStaker)
	tx, err := c.checkedTransaction(ctx, []solana.Instruction{ix}, c.Config.Manager)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// SetFundingAuthority sets the authority for fundingType, or clears it when newAuthority is nil.
func (c *Client) SetFundingAuthority(ctx context.Context, poolAddress solana.PublicKey, fundingType sdk.FundingType, newAuthority *solana.PublicKey) error {
	if err := requireSigner("manager", c.Config.Manager); err != nil {
		return err
	}
	ix := sdk.SetFundingAuthority(c.Config.ProgramID, poolAddress, c.Config.Manager.PublicKey(), newAuthority, fundingType)
	tx, err := c.checkedTransaction(ctx, []solana.Instruction{ix}, c.Config.Manager)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

func (c *Client) SetFee(ctx context.Context, poolAddress solana.PublicKey, fee sdk.FeeType) error {
	if err := requireSigner("manager", c.Config.Manager); err != nil {
		return err
	}
	ix, err := sdk.SetFee(c.Config.ProgramID, poolAddress, c.Config.Manager.PublicKey(), fee)
	if err != nil {
		return err
	}
	misc.Debugf(c.Logger, "setting fee kind:%d to %s on pool:%s", fee.Kind, fee, poolAddress)
	tx, err := c.checkedTransaction(ctx, []solana.Instruction{ix}, c.Config.Manager)
	if err != nil {
		return err
	}
	return c.send(ctx, tx)
}

// SetReferralFee sets the stake or sol referral fee, a percentage of the deposit fee.
func (c *Client) SetReferralFee(ctx context.Context, poolAddress solana.PublicKey, kind sdk.FeeKind, percent uint8) error {
	if percent > 100 {
		return fmt.Errorf("%w: Invalid fee %d%%. Fee needs to be in range [0-100]", ErrInvalidReferralFee, percent)
	}
	if kind != sdk.FeeKindSolReferral && kind != sdk.FeeKindStakeReferral {
		return fmt.Errorf("%w: %d is not a referral fee", sdk.ErrInvalidFeeType, kind)
	}
	return c.SetFee(ctx, poolAddress, sdk.FeeType{Kind: kind, Referral: percent})
}
