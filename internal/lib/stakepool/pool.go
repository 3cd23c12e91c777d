package stakepool

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// CreatePoolArgs are the create-pool options. Keypairs left nil are generated.
type CreatePoolArgs struct {
	EpochFee      sdk.Fee
	WithdrawalFee sdk.Fee
	DepositFee    sdk.Fee
	ReferralFee   uint8
	MaxValidators uint32

	DepositAuthority sol.Signer
	StakePool        sol.Signer
	ValidatorList    sol.Signer
	Mint             sol.Signer
	Reserve          sol.Signer

	UnsafeFees bool
}

func checkStakePoolFees(epochFee, withdrawalFee, depositFee sdk.Fee) error {
	if epochFee.IsZero() {
		return ErrZeroEpochFee
	}
	if withdrawalFee.IsZero() && depositFee.IsZero() {
		return ErrZeroDepositWithdraw
	}
	return nil
}

func signerOrNew(s sol.Signer) sol.Signer {
	if s == nil {
		return solana.NewWallet().PrivateKey
	}
	return s
}

// CreatePool creates the reserve, mint and fee account in a setup transaction and then the validator
// list and pool in an initialize transaction.
func (c *Client) CreatePool(ctx context.Context, args CreatePoolArgs) error {
	if !args.UnsafeFees {
		if err := checkStakePoolFees(args.EpochFee, args.WithdrawalFee, args.DepositFee); err != nil {
			return err
		}
	}
	if err := requireSigner("manager", c.Config.Manager); err != nil {
		return err
	}
	if err := requireSigner("staker", c.Config.Staker); err != nil {
		return err
	}
	if err := requireSigner("fee payer", c.Config.FeePayer); err != nil {
		return err
	}
	feePayer := c.Config.FeePayer.PublicKey()

	reserve := signerOrNew(args.Reserve)
	c.printf("Creating reserve stake %s", reserve.PublicKey())
	mint := signerOrNew(args.Mint)
	c.printf("Creating mint %s", mint.PublicKey())
	stakePool := signerOrNew(args.StakePool)
	validatorList := signerOrNew(args.ValidatorList)

	rentFor := func(size uint64) (uint64, error) {
		return c.Chain.MinimumBalanceForRentExemption(ctx, size)
	}
	reserveBalance, err := rentFor(sdk.StakeStateLen)
	if err != nil {
		return err
	}
	// reserve holds rent plus one lamport
	reserveBalance++
	mintBalance, err := rentFor(sdk.MintLen)
	if err != nil {
		return err
	}
	poolBalance, err := rentFor(sdk.StakePoolLen)
	if err != nil {
		return err
	}
	listSize := sdk.ValidatorListSize(args.MaxValidators)
	listBalance, err := rentFor(listSize)
	if err != nil {
		return err
	}
	totalRent := reserveBalance + mintBalance + poolBalance + listBalance

	withdrawAuthority, _, err := sdk.FindWithdrawAuthority(c.Config.ProgramID, stakePool.PublicKey())
	if err != nil {
		return err
	}
	if c.Config.Verbose {
		c.printf("Stake pool withdraw authority %s", withdrawAuthority)
	}

	setup := []solana.Instruction{
		system.NewCreateAccountInstruction(reserveBalance, sdk.StakeStateLen, solana.StakeProgramID,
			feePayer, reserve.PublicKey()).Build(),
		sdk.StakeInitialize(reserve.PublicKey(), withdrawAuthority, withdrawAuthority, sdk.Lockup{}),
		system.NewCreateAccountInstruction(mintBalance, sdk.MintLen, solana.TokenProgramID,
			feePayer, mint.PublicKey()).Build(),
		sdk.TokenInitializeMint(solana.TokenProgramID, mint.PublicKey(), withdrawAuthority, sdk.NativeDecimals),
	}
	feeAccount, err := c.addAssociatedTokenAccount(ctx, mint.PublicKey(), c.Config.Manager.PublicKey(), &setup, &totalRent)
	if err != nil {
		return err
	}
	c.printf("Creating pool fee collection account %s", feeAccount)

	var depositAuthority *solana.PublicKey
	if args.DepositAuthority != nil {
		pk := args.DepositAuthority.PublicKey()
		depositAuthority = &pk
	}
	initializeIx, err := sdk.Initialize(c.Config.ProgramID, stakePool.PublicKey(), c.Config.Manager.PublicKey(),
		c.Config.Staker.PublicKey(), withdrawAuthority, validatorList.PublicKey(), reserve.PublicKey(),
		mint.PublicKey(), feeAccount, solana.TokenProgramID, depositAuthority, sdk.InitializeParams{
			EpochFee:      args.EpochFee,
			WithdrawalFee: args.WithdrawalFee,
			DepositFee:    args.DepositFee,
			ReferralFee:   args.ReferralFee,
			MaxValidators: args.MaxValidators,
		})
	if err != nil {
		return err
	}
	initialize := []solana.Instruction{
		system.NewCreateAccountInstruction(listBalance, listSize, c.Config.ProgramID,
			feePayer, validatorList.PublicKey()).Build(),
		system.NewCreateAccountInstruction(poolBalance, sdk.StakePoolLen, c.Config.ProgramID,
			feePayer, stakePool.PublicKey()).Build(),
		initializeIx,
	}

	blockhash, err := c.Chain.LatestBlockhash(ctx)
	if err != nil {
		return err
	}
	setupTx, err := c.newTransaction(blockhash, setup)
	if err != nil {
		return err
	}
	initializeTx, err := c.newTransaction(blockhash, initialize)
	if err != nil {
		return err
	}
	setupFee, err := c.Chain.FeeForMessage(ctx, &setupTx.Message)
	if err != nil {
		return err
	}
	initializeFee, err := c.Chain.FeeForMessage(ctx, &initializeTx.Message)
	if err != nil {
		return err
	}
	if err = c.checkFeePayerBalance(ctx, totalRent+setupFee+initializeFee); err != nil {
		return err
	}

	if err = sol.SignTransaction(setupTx, c.Config.FeePayer, mint, reserve); err != nil {
		return err
	}
	initializeSigners := []sol.Signer{c.Config.FeePayer, stakePool, validatorList, c.Config.Manager}
	if args.DepositAuthority != nil {
		c.printf("Deposits will be restricted to %s only, this can be changed using the set-funding-authority command.",
			args.DepositAuthority.PublicKey())
		initializeSigners = append(initializeSigners, args.DepositAuthority)
	}
	if err = sol.SignTransaction(initializeTx, initializeSigners...); err != nil {
		return err
	}

	if err = c.send(ctx, setupTx); err != nil {
		return err
	}
	c.printf("Creating stake pool %s with validator list %s", stakePool.PublicKey(), validatorList.PublicKey())
	return c.send(ctx, initializeTx)
}

// Update refreshes validator and pool balances for the current epoch. Unless force is set, a pool
// already updated this epoch is left alone.
func (c *Client) Update(ctx context.Context, poolAddress solana.PublicKey, force, noMerge bool) error {
	pool, err := c.GetStakePool(ctx, poolAddress)
	if err != nil {
		return err
	}
	epoch, err := c.Chain.EpochInfo(ctx)
	if err != nil {
		return err
	}
	if pool.LastUpdateEpoch == epoch.Epoch {
		if !force {
			c.printf("Update not required")
			return nil
		}
		c.printf("Update not required, but --force flag specified, so doing it anyway")
	}
	list, err := c.GetValidatorList(ctx, pool.ValidatorList)
	if err != nil {
		return err
	}
	updates, final, err := sdk.UpdateStakePool(c.Config.ProgramID, pool, list, poolAddress, noMerge)
	if err != nil {
		return err
	}
	misc.Debugf(c.Logger, "updating pool:%s, validators:%d, chunks:%d, epoch:%d", poolAddress,
		len(list.Validators), len(updates), epoch.Epoch)

	// list balance chunks are independent of each other, only the final pair needs them all landed
	for _, ix := range updates {
		tx, err := c.checkedTransaction(ctx, []solana.Instruction{ix})
		if err != nil {
			return err
		}
		if err = c.sendNoWait(ctx, tx); err != nil {
			return err
		}
	}
	tx, err := c.checkedTransaction(ctx, final)
	if err != nil {
		return err
	}
	if err = c.send(ctx, tx); err != nil {
		return err
	}
	c.Metrics.observe(poolAddress.String(), pool, list)
	return nil
}
