package sdk

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Instruction tags understood by the stake pool program.
const (
	InstructionInitialize                     uint8 = 0
	InstructionAddValidatorToPool             uint8 = 1
	InstructionRemoveValidatorFromPool        uint8 = 2
	InstructionDecreaseValidatorStake         uint8 = 3
	InstructionIncreaseValidatorStake         uint8 = 4
	InstructionSetPreferredValidator          uint8 = 5
	InstructionUpdateValidatorListBalance     uint8 = 6
	InstructionUpdateStakePoolBalance         uint8 = 7
	InstructionCleanupRemovedValidatorEntries uint8 = 8
	InstructionDepositStake                   uint8 = 9
	InstructionWithdrawStake                  uint8 = 10
	InstructionSetManager                     uint8 = 11
	InstructionSetFee                         uint8 = 12
	InstructionSetStaker                      uint8 = 13
	InstructionDepositSol                     uint8 = 14
	InstructionSetFundingAuthority            uint8 = 15
	InstructionWithdrawSol                    uint8 = 16
)

type PreferredValidatorType uint8

const (
	PreferredValidatorDeposit PreferredValidatorType = iota
	PreferredValidatorWithdraw
)

type FundingType uint8

const (
	FundingTypeStakeDeposit FundingType = iota
	FundingTypeSolDeposit
	FundingTypeSolWithdraw
)

type FeeKind uint8

const (
	FeeKindSolReferral FeeKind = iota
	FeeKindStakeReferral
	FeeKindEpoch
	FeeKindStakeWithdrawal
	FeeKindSolDeposit
	FeeKindStakeDeposit
	FeeKindSolWithdrawal
)

// FeeType is the SetFee payload. Referral kinds carry a percentage, all others a Fee.
type FeeType struct {
	Kind     FeeKind
	Fee      Fee
	Referral uint8
}

func (f FeeType) IsReferral() bool {
	return f.Kind == FeeKindSolReferral || f.Kind == FeeKindStakeReferral
}

func (f FeeType) String() string {
	if f.IsReferral() {
		return fmt.Sprintf("%d%%", f.Referral)
	}
	return f.Fee.String()
}

// AddValidatorToPool adds a validator stake account to the pool, funded by funder.
func AddValidatorToPool(
	programID,
	stakePool,
	staker,
	funder,
	withdrawAuthority,
	validatorList,
	stake,
	vote solana.PublicKey,
) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(staker).SIGNER(),
		solana.Meta(funder).WRITE().SIGNER(),
		solana.Meta(withdrawAuthority),
		solana.Meta(validatorList).WRITE(),
		solana.Meta(stake).WRITE(),
		solana.Meta(vote),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.SysVarStakeHistoryPubkey),
		solana.Meta(StakeConfigID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.StakeProgramID),
	}, []byte{InstructionAddValidatorToPool})
}

// AddValidatorToPoolWithVote derives the withdraw authority and validator stake account for vote.
func AddValidatorToPoolWithVote(
	programID solana.PublicKey,
	pool *StakePool,
	stakePoolAddress,
	funder,
	vote solana.PublicKey,
) (solana.Instruction, error) {
	withdrawAuthority, _, err := FindWithdrawAuthority(programID, stakePoolAddress)
	if err != nil {
		return nil, err
	}
	stake, _, err := FindStakeAddress(programID, vote, stakePoolAddress, 0)
	if err != nil {
		return nil, err
	}
	return AddValidatorToPool(programID, stakePoolAddress, pool.Staker, funder, withdrawAuthority,
		pool.ValidatorList, stake, vote), nil
}

func RemoveValidatorFromPool(
	programID,
	stakePool,
	staker,
	withdrawAuthority,
	newStakeAuthority,
	validatorList,
	stake,
	transientStake,
	destinationStake solana.PublicKey,
) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(staker).SIGNER(),
		solana.Meta(withdrawAuthority),
		solana.Meta(newStakeAuthority),
		solana.Meta(validatorList).WRITE(),
		solana.Meta(stake).WRITE(),
		solana.Meta(transientStake),
		solana.Meta(destinationStake).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.StakeProgramID),
	}, []byte{InstructionRemoveValidatorFromPool})
}

func RemoveValidatorFromPoolWithVote(
	programID solana.PublicKey,
	pool *StakePool,
	stakePoolAddress,
	vote,
	newStakeAuthority solana.PublicKey,
	validatorSeed uint32,
	transientSeed uint64,
	destinationStake solana.PublicKey,
) (solana.Instruction, error) {
	addrs, err := findValidatorAddresses(programID, stakePoolAddress, vote, validatorSeed, transientSeed)
	if err != nil {
		return nil, err
	}
	return RemoveValidatorFromPool(programID, stakePoolAddress, pool.Staker, addrs.withdrawAuthority,
		newStakeAuthority, pool.ValidatorList, addrs.stake, addrs.transient, destinationStake), nil
}

// IncreaseValidatorStake moves lamports from the reserve into a transient stake account delegated to vote.
func IncreaseValidatorStake(
	programID,
	stakePool,
	staker,
	withdrawAuthority,
	validatorList,
	reserveStake,
	transientStake,
	validatorStake,
	vote solana.PublicKey,
	lamports uint64,
	transientSeed uint64,
) solana.Instruction {
	w := newWriter()
	w.u8(InstructionIncreaseValidatorStake)
	w.u64(lamports)
	w.u64(transientSeed)
	data, _ := w.bytes()
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool),
		solana.Meta(staker).SIGNER(),
		solana.Meta(withdrawAuthority),
		solana.Meta(validatorList).WRITE(),
		solana.Meta(reserveStake).WRITE(),
		solana.Meta(transientStake).WRITE(),
		solana.Meta(validatorStake),
		solana.Meta(vote),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SysVarStakeHistoryPubkey),
		solana.Meta(StakeConfigID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.StakeProgramID),
	}, data)
}

func IncreaseValidatorStakeWithVote(
	programID solana.PublicKey,
	pool *StakePool,
	stakePoolAddress,
	vote solana.PublicKey,
	lamports uint64,
	validatorSeed uint32,
	transientSeed uint64,
) (solana.Instruction, error) {
	addrs, err := findValidatorAddresses(programID, stakePoolAddress, vote, validatorSeed, transientSeed)
	if err != nil {
		return nil, err
	}
	return IncreaseValidatorStake(programID, stakePoolAddress, pool.Staker, addrs.withdrawAuthority,
		pool.ValidatorList, pool.ReserveStake, addrs.transient, addrs.stake, vote, lamports, transientSeed), nil
}

// DecreaseValidatorStake splits lamports off the validator stake account into a deactivating transient account.
func DecreaseValidatorStake(
	programID,
	stakePool,
	staker,
	withdrawAuthority,
	validatorList,
	validatorStake,
	transientStake solana.PublicKey,
	lamports uint64,
	transientSeed uint64,
) solana.Instruction {
	w := newWriter()
	w.u8(InstructionDecreaseValidatorStake)
	w.u64(lamports)
	w.u64(transientSeed)
	data, _ := w.bytes()
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool),
		solana.Meta(staker).SIGNER(),
		solana.Meta(withdrawAuthority),
		solana.Meta(validatorList).WRITE(),
		solana.Meta(validatorStake).WRITE(),
		solana.Meta(transientStake).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.SysVarRentPubkey),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.StakeProgramID),
	}, data)
}

func DecreaseValidatorStakeWithVote(
	programID solana.PublicKey,
	pool *StakePool,
	stakePoolAddress,
	vote solana.PublicKey,
	lamports uint64,
	validatorSeed uint32,
	transientSeed uint64,
) (solana.Instruction, error) {
	addrs, err := findValidatorAddresses(programID, stakePoolAddress, vote, validatorSeed, transientSeed)
	if err != nil {
		return nil, err
	}
	return DecreaseValidatorStake(programID, stakePoolAddress, pool.Staker, addrs.withdrawAuthority,
		pool.ValidatorList, addrs.stake, addrs.transient, lamports, transientSeed), nil
}

// SetPreferredValidator sets or, with a nil vote, clears the preferred deposit or withdraw validator.
func SetPreferredValidator(
	programID,
	stakePool,
	staker,
	validatorList solana.PublicKey,
	validatorType PreferredValidatorType,
	vote *solana.PublicKey,
) solana.Instruction {
	w := newWriter()
	w.u8(InstructionSetPreferredValidator)
	w.u8(uint8(validatorType))
	w.optionPubkey(vote)
	data, _ := w.bytes()
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(staker).SIGNER(),
		solana.Meta(validatorList),
	}, data)
}

// UpdateValidatorListBalance updates the balances of the given validators, starting at startIndex in the list.
func UpdateValidatorListBalance(
	programID,
	stakePool,
	withdrawAuthority,
	validatorList,
	reserveStake solana.PublicKey,
	validatorVotes []solana.PublicKey,
	validatorSeeds []uint32,
	transientSeeds []uint64,
	startIndex uint32,
	noMerge bool,
) (solana.Instruction, error) {
	accounts := solana.AccountMetaSlice{
		solana.Meta(stakePool),
		solana.Meta(withdrawAuthority),
		solana.Meta(validatorList).WRITE(),
		solana.Meta(reserveStake).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.SysVarStakeHistoryPubkey),
		solana.Meta(solana.StakeProgramID),
	}
	for i, vote := range validatorVotes {
		stake, _, err := FindStakeAddress(programID, vote, stakePool, validatorSeeds[i])
		if err != nil {
			return nil, err
		}
		transient, _, err := FindTransientStakeAddress(programID, vote, stakePool, transientSeeds[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, solana.Meta(stake).WRITE(), solana.Meta(transient).WRITE())
	}
	w := newWriter()
	w.u8(InstructionUpdateValidatorListBalance)
	w.u32(startIndex)
	w.bool(noMerge)
	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

func UpdateStakePoolBalance(
	programID,
	stakePool,
	withdrawAuthority,
	validatorList,
	reserveStake,
	managerFeeAccount,
	poolMint,
	tokenProgramID solana.PublicKey,
) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(withdrawAuthority),
		solana.Meta(validatorList).WRITE(),
		solana.Meta(reserveStake),
		solana.Meta(managerFeeAccount).WRITE(),
		solana.Meta(poolMint).WRITE(),
		solana.Meta(tokenProgramID),
	}, []byte{InstructionUpdateStakePoolBalance})
}

func CleanupRemovedValidatorEntries(programID, stakePool, validatorList solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool),
		solana.Meta(validatorList).WRITE(),
	}, []byte{InstructionCleanupRemovedValidatorEntries})
}

// UpdateStakePool returns the list balance updates, chunked to fit a transaction each, followed by the
// final pool balance update and cleanup pair which must land after all of them.
func UpdateStakePool(
	programID solana.PublicKey,
	pool *StakePool,
	list *ValidatorList,
	stakePoolAddress solana.PublicKey,
	noMerge bool,
) ([]solana.Instruction, []solana.Instruction, error) {
	withdrawAuthority, _, err := FindWithdrawAuthority(programID, stakePoolAddress)
	if err != nil {
		return nil, nil, err
	}
	var updateList []solana.Instruction
	for start := 0; start < len(list.Validators); start += MaxValidatorsToUpdate {
		end := min(start+MaxValidatorsToUpdate, len(list.Validators))
		var (
			votes          []solana.PublicKey
			validatorSeeds []uint32
			transientSeeds []uint64
		)
		for _, v := range list.Validators[start:end] {
			votes = append(votes, v.VoteAccountAddress)
			validatorSeeds = append(validatorSeeds, v.ValidatorSeedSuffix)
			transientSeeds = append(transientSeeds, v.TransientSeedSuffix)
		}
		ix, err := UpdateValidatorListBalance(programID, stakePoolAddress, withdrawAuthority,
			pool.ValidatorList, pool.ReserveStake, votes, validatorSeeds, transientSeeds, uint32(start), noMerge)
		if err != nil {
			return nil, nil, err
		}
		updateList = append(updateList, ix)
	}
	final := []solana.Instruction{
		UpdateStakePoolBalance(programID, stakePoolAddress, withdrawAuthority, pool.ValidatorList,
			pool.ReserveStake, pool.ManagerFeeAccount, pool.PoolMint, pool.TokenProgramID),
		CleanupRemovedValidatorEntries(programID, stakePoolAddress, pool.ValidatorList),
	}
	return updateList, final, nil
}

// InitializeParams holds the fee schedule and capacity for a new pool.
type InitializeParams struct {
	EpochFee      Fee
	WithdrawalFee Fee
	DepositFee    Fee
	ReferralFee   uint8
	MaxValidators uint32
}

func Initialize(
	programID,
	stakePool,
	manager,
	staker,
	withdrawAuthority,
	validatorList,
	reserveStake,
	poolMint,
	managerPoolAccount,
	tokenProgramID solana.PublicKey,
	depositAuthority *solana.PublicKey,
	params InitializeParams,
) (solana.Instruction, error) {
	w := newWriter()
	w.u8(InstructionInitialize)
	w.fee(params.EpochFee)
	w.fee(params.WithdrawalFee)
	w.fee(params.DepositFee)
	w.u8(params.ReferralFee)
	w.u32(params.MaxValidators)
	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	accounts := solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(manager).SIGNER(),
		solana.Meta(staker),
		solana.Meta(withdrawAuthority),
		solana.Meta(validatorList).WRITE(),
		solana.Meta(reserveStake),
		solana.Meta(poolMint).WRITE(),
		solana.Meta(managerPoolAccount).WRITE(),
		solana.Meta(tokenProgramID),
	}
	if depositAuthority != nil {
		accounts = append(accounts, solana.Meta(*depositAuthority).SIGNER())
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// DepositStakeParams are the accounts of a DepositStake. DepositAuthority is the pool's stake deposit
// authority, which must sign when the pool uses a custom one.
type DepositStakeParams struct {
	StakePool         solana.PublicKey
	ValidatorList     solana.PublicKey
	DepositAuthority  solana.PublicKey
	WithdrawAuthority solana.PublicKey
	DepositStake      solana.PublicKey
	ValidatorStake    solana.PublicKey
	ReserveStake      solana.PublicKey
	PoolTokensTo      solana.PublicKey
	ManagerFeeAccount solana.PublicKey
	Referrer          solana.PublicKey
	PoolMint          solana.PublicKey
	TokenProgramID    solana.PublicKey
}

// DepositStake returns the instructions to move both authorities of the stake account to the pool
// deposit authority, signed by its current withdrawer, followed by the deposit itself.
func DepositStake(programID solana.PublicKey, p DepositStakeParams, stakeWithdrawer solana.PublicKey, customAuthority bool) []solana.Instruction {
	depositAuthority := solana.Meta(p.DepositAuthority)
	if customAuthority {
		depositAuthority = depositAuthority.SIGNER()
	}
	deposit := solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(p.StakePool).WRITE(),
		solana.Meta(p.ValidatorList).WRITE(),
		depositAuthority,
		solana.Meta(p.WithdrawAuthority),
		solana.Meta(p.DepositStake).WRITE(),
		solana.Meta(p.ValidatorStake).WRITE(),
		solana.Meta(p.ReserveStake).WRITE(),
		solana.Meta(p.PoolTokensTo).WRITE(),
		solana.Meta(p.ManagerFeeAccount).WRITE(),
		solana.Meta(p.Referrer).WRITE(),
		solana.Meta(p.PoolMint).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.SysVarStakeHistoryPubkey),
		solana.Meta(p.TokenProgramID),
		solana.Meta(solana.StakeProgramID),
	}, []byte{InstructionDepositStake})
	return []solana.Instruction{
		StakeAuthorize(p.DepositStake, stakeWithdrawer, p.DepositAuthority, StakeAuthorizeStaker),
		StakeAuthorize(p.DepositStake, stakeWithdrawer, p.DepositAuthority, StakeAuthorizeWithdrawer),
		deposit,
	}
}

// WithdrawStakeParams are the accounts of a WithdrawStake. StakeToSplit is a validator stake account
// or the reserve, StakeToReceive an uninitialized stake account.
type WithdrawStakeParams struct {
	StakePool          solana.PublicKey
	ValidatorList      solana.PublicKey
	WithdrawAuthority  solana.PublicKey
	StakeToSplit       solana.PublicKey
	StakeToReceive     solana.PublicKey
	UserStakeAuthority solana.PublicKey
	UserTransferAuth   solana.PublicKey
	PoolTokensFrom     solana.PublicKey
	ManagerFeeAccount  solana.PublicKey
	PoolMint           solana.PublicKey
	TokenProgramID     solana.PublicKey
}

func WithdrawStake(programID solana.PublicKey, p WithdrawStakeParams, poolTokens uint64) solana.Instruction {
	w := newWriter()
	w.u8(InstructionWithdrawStake)
	w.u64(poolTokens)
	data, _ := w.bytes()
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(p.StakePool).WRITE(),
		solana.Meta(p.ValidatorList).WRITE(),
		solana.Meta(p.WithdrawAuthority),
		solana.Meta(p.StakeToSplit).WRITE(),
		solana.Meta(p.StakeToReceive).WRITE(),
		solana.Meta(p.UserStakeAuthority),
		solana.Meta(p.UserTransferAuth).SIGNER(),
		solana.Meta(p.PoolTokensFrom).WRITE(),
		solana.Meta(p.ManagerFeeAccount).WRITE(),
		solana.Meta(p.PoolMint).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(p.TokenProgramID),
		solana.Meta(solana.StakeProgramID),
	}, data)
}

// DepositSolParams are the accounts of a DepositSol. SolDepositAuthority is only set for pools that
// restrict SOL deposits.
type DepositSolParams struct {
	StakePool           solana.PublicKey
	WithdrawAuthority   solana.PublicKey
	ReserveStake        solana.PublicKey
	From                solana.PublicKey
	PoolTokensTo        solana.PublicKey
	ManagerFeeAccount   solana.PublicKey
	Referrer            solana.PublicKey
	PoolMint            solana.PublicKey
	TokenProgramID      solana.PublicKey
	SolDepositAuthority *solana.PublicKey
}

func DepositSol(programID solana.PublicKey, p DepositSolParams, lamports uint64) solana.Instruction {
	w := newWriter()
	w.u8(InstructionDepositSol)
	w.u64(lamports)
	data, _ := w.bytes()
	accounts := solana.AccountMetaSlice{
		solana.Meta(p.StakePool).WRITE(),
		solana.Meta(p.WithdrawAuthority),
		solana.Meta(p.ReserveStake).WRITE(),
		solana.Meta(p.From).WRITE().SIGNER(),
		solana.Meta(p.PoolTokensTo).WRITE(),
		solana.Meta(p.ManagerFeeAccount).WRITE(),
		solana.Meta(p.Referrer).WRITE(),
		solana.Meta(p.PoolMint).WRITE(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(p.TokenProgramID),
	}
	if p.SolDepositAuthority != nil {
		accounts = append(accounts, solana.Meta(*p.SolDepositAuthority).SIGNER())
	}
	return solana.NewInstruction(programID, accounts, data)
}

type WithdrawSolParams struct {
	StakePool            solana.PublicKey
	WithdrawAuthority    solana.PublicKey
	UserTransferAuth     solana.PublicKey
	PoolTokensFrom       solana.PublicKey
	ReserveStake         solana.PublicKey
	LamportsTo           solana.PublicKey
	ManagerFeeAccount    solana.PublicKey
	PoolMint             solana.PublicKey
	TokenProgramID       solana.PublicKey
	SolWithdrawAuthority *solana.PublicKey
}

func WithdrawSol(programID solana.PublicKey, p WithdrawSolParams, poolTokens uint64) solana.Instruction {
	w := newWriter()
	w.u8(InstructionWithdrawSol)
	w.u64(poolTokens)
	data, _ := w.bytes()
	accounts := solana.AccountMetaSlice{
		solana.Meta(p.StakePool).WRITE(),
		solana.Meta(p.WithdrawAuthority),
		solana.Meta(p.UserTransferAuth).SIGNER(),
		solana.Meta(p.PoolTokensFrom).WRITE(),
		solana.Meta(p.ReserveStake).WRITE(),
		solana.Meta(p.LamportsTo).WRITE(),
		solana.Meta(p.ManagerFeeAccount).WRITE(),
		solana.Meta(p.PoolMint).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(solana.SysVarStakeHistoryPubkey),
		solana.Meta(solana.StakeProgramID),
		solana.Meta(p.TokenProgramID),
	}
	if p.SolWithdrawAuthority != nil {
		accounts = append(accounts, solana.Meta(*p.SolWithdrawAuthority).SIGNER())
	}
	return solana.NewInstruction(programID, accounts, data)
}

func SetManager(programID, stakePool, manager, newManager, newFeeReceiver solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(manager).SIGNER(),
		solana.Meta(newManager).SIGNER(),
		solana.Meta(newFeeReceiver),
	}, []byte{InstructionSetManager})
}

// SetStaker must be signed by either the manager or the current staker.
func SetStaker(programID, stakePool, setStakerAuthority, newStaker solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(setStakerAuthority).SIGNER(),
		solana.Meta(newStaker),
	}, []byte{InstructionSetStaker})
}

func SetFee(programID, stakePool, manager solana.PublicKey, fee FeeType) (solana.Instruction, error) {
	if fee.Kind > FeeKindSolWithdrawal {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFeeType, fee.Kind)
	}
	w := newWriter()
	w.u8(InstructionSetFee)
	w.u8(uint8(fee.Kind))
	if fee.IsReferral() {
		w.u8(fee.Referral)
	} else {
		w.fee(fee.Fee)
	}
	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(manager).SIGNER(),
	}, data), nil
}

// SetFundingAuthority sets or, with a nil authority, clears the authority for the funding type.
func SetFundingAuthority(
	programID,
	stakePool,
	manager solana.PublicKey,
	newAuthority *solana.PublicKey,
	fundingType FundingType,
) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		solana.Meta(stakePool).WRITE(),
		solana.Meta(manager).SIGNER(),
	}
	if newAuthority != nil {
		accounts = append(accounts, solana.Meta(*newAuthority))
	}
	return solana.NewInstruction(programID, accounts, []byte{InstructionSetFundingAuthority, uint8(fundingType)})
}

type validatorAddresses struct {
	withdrawAuthority solana.PublicKey
	stake             solana.PublicKey
	transient         solana.PublicKey
}

func findValidatorAddresses(
	programID,
	stakePoolAddress,
	vote solana.PublicKey,
	validatorSeed uint32,
	transientSeed uint64,
) (validatorAddresses, error) {
	var (
		addrs validatorAddresses
		err   error
	)
	addrs.withdrawAuthority, _, err = FindWithdrawAuthority(programID, stakePoolAddress)
	if err != nil {
		return addrs, err
	}
	addrs.stake, _, err = FindStakeAddress(programID, vote, stakePoolAddress, validatorSeed)
	if err != nil {
		return addrs, err
	}
	addrs.transient, _, err = FindTransientStakeAddress(programID, vote, stakePoolAddress, transientSeed)
	if err != nil {
		return addrs, err
	}
	return addrs, nil
}
