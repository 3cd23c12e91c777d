package sdk

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoolState() *StakePool {
	return &StakePool{
		AccountType:       AccountTypeStakePool,
		Manager:           solana.NewWallet().PublicKey(),
		Staker:            solana.NewWallet().PublicKey(),
		ValidatorList:     solana.NewWallet().PublicKey(),
		ReserveStake:      solana.NewWallet().PublicKey(),
		PoolMint:          solana.NewWallet().PublicKey(),
		ManagerFeeAccount: solana.NewWallet().PublicKey(),
		TokenProgramID:    solana.TokenProgramID,
	}
}

func instructionData(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

func TestAddValidatorToPoolWithVote(t *testing.T) {
	pool := testPoolState()
	funder := solana.NewWallet().PublicKey()

	ix, err := AddValidatorToPoolWithVote(StakePoolProgramID, pool, testPool, funder, testVote)
	require.NoError(t, err)
	assert.True(t, ix.ProgramID().Equals(StakePoolProgramID))
	assert.Equal(t, []byte{InstructionAddValidatorToPool}, instructionData(t, ix))

	accounts := ix.Accounts()
	require.Len(t, accounts, 13)
	withdrawAuthority, _, _ := FindWithdrawAuthority(StakePoolProgramID, testPool)
	stake, _, _ := FindStakeAddress(StakePoolProgramID, testVote, testPool, 0)

	assert.True(t, accounts[0].PublicKey.Equals(testPool))
	assert.True(t, accounts[0].IsWritable)
	assert.True(t, accounts[1].PublicKey.Equals(pool.Staker))
	assert.True(t, accounts[1].IsSigner)
	assert.False(t, accounts[1].IsWritable)
	assert.True(t, accounts[2].PublicKey.Equals(funder))
	assert.True(t, accounts[2].IsSigner && accounts[2].IsWritable)
	assert.True(t, accounts[3].PublicKey.Equals(withdrawAuthority))
	assert.True(t, accounts[4].PublicKey.Equals(pool.ValidatorList))
	assert.True(t, accounts[5].PublicKey.Equals(stake))
	assert.True(t, accounts[6].PublicKey.Equals(testVote))
	assert.True(t, accounts[10].PublicKey.Equals(StakeConfigID))
	assert.True(t, accounts[12].PublicKey.Equals(solana.StakeProgramID))
}

func TestValidatorStakeInstructionData(t *testing.T) {
	pool := testPoolState()
	const lamports = 5 * LamportsPerSol

	increase, err := IncreaseValidatorStakeWithVote(StakePoolProgramID, pool, testPool, testVote, lamports, 0, 3)
	require.NoError(t, err)
	data := instructionData(t, increase)
	require.Len(t, data, 17)
	assert.Equal(t, InstructionIncreaseValidatorStake, data[0])
	assert.Equal(t, uint64(lamports), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(data[9:17]))

	transient, _, _ := FindTransientStakeAddress(StakePoolProgramID, testVote, testPool, 3)
	accounts := increase.Accounts()
	require.Len(t, accounts, 14)
	assert.True(t, accounts[4].PublicKey.Equals(pool.ReserveStake))
	assert.True(t, accounts[5].PublicKey.Equals(transient))
	assert.True(t, accounts[7].PublicKey.Equals(testVote))

	decrease, err := DecreaseValidatorStakeWithVote(StakePoolProgramID, pool, testPool, testVote, lamports, 0, 3)
	require.NoError(t, err)
	data = instructionData(t, decrease)
	assert.Equal(t, InstructionDecreaseValidatorStake, data[0])
	assert.Equal(t, uint64(lamports), binary.LittleEndian.Uint64(data[1:9]))
	require.Len(t, decrease.Accounts(), 10)
	assert.True(t, decrease.Accounts()[5].PublicKey.Equals(transient))
}

func TestSetFeeData(t *testing.T) {
	manager := solana.NewWallet().PublicKey()

	ix, err := SetFee(StakePoolProgramID, testPool, manager, FeeType{Kind: FeeKindEpoch, Fee: Fee{Numerator: 3, Denominator: 100}})
	require.NoError(t, err)
	data := instructionData(t, ix)
	require.Len(t, data, 18)
	assert.Equal(t, []byte{InstructionSetFee, byte(FeeKindEpoch)}, data[:2])
	assert.Equal(t, uint64(100), binary.LittleEndian.Uint64(data[2:10]), "denominator first")
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(data[10:18]))

	ix, err = SetFee(StakePoolProgramID, testPool, manager, FeeType{Kind: FeeKindSolReferral, Referral: 40})
	require.NoError(t, err)
	assert.Equal(t, []byte{InstructionSetFee, byte(FeeKindSolReferral), 40}, instructionData(t, ix))

	_, err = SetFee(StakePoolProgramID, testPool, manager, FeeType{Kind: 42})
	assert.ErrorIs(t, err, ErrInvalidFeeType)
}

func TestSetPreferredValidatorData(t *testing.T) {
	pool := testPoolState()
	ix := SetPreferredValidator(StakePoolProgramID, testPool, pool.Staker, pool.ValidatorList, PreferredValidatorWithdraw, &testVote)
	data := instructionData(t, ix)
	require.Len(t, data, 35)
	assert.Equal(t, []byte{InstructionSetPreferredValidator, 1, 1}, data[:3])
	assert.Equal(t, testVote[:], data[3:])

	ix = SetPreferredValidator(StakePoolProgramID, testPool, pool.Staker, pool.ValidatorList, PreferredValidatorDeposit, nil)
	assert.Equal(t, []byte{InstructionSetPreferredValidator, 0, 0}, instructionData(t, ix))
}

func TestSetFundingAuthority(t *testing.T) {
	manager := solana.NewWallet().PublicKey()
	auth := solana.NewWallet().PublicKey()

	ix := SetFundingAuthority(StakePoolProgramID, testPool, manager, &auth, FundingTypeSolWithdraw)
	assert.Equal(t, []byte{InstructionSetFundingAuthority, 2}, instructionData(t, ix))
	assert.Len(t, ix.Accounts(), 3)

	ix = SetFundingAuthority(StakePoolProgramID, testPool, manager, nil, FundingTypeSolDeposit)
	assert.Len(t, ix.Accounts(), 2)
}

func TestDepositSolData(t *testing.T) {
	pool := testPoolState()
	from := solana.NewWallet().PublicKey()
	params := DepositSolParams{
		StakePool:         testPool,
		ReserveStake:      pool.ReserveStake,
		From:              from,
		PoolTokensTo:      solana.NewWallet().PublicKey(),
		ManagerFeeAccount: pool.ManagerFeeAccount,
		Referrer:          pool.ManagerFeeAccount,
		PoolMint:          pool.PoolMint,
		TokenProgramID:    pool.TokenProgramID,
	}
	ix := DepositSol(StakePoolProgramID, params, 2*LamportsPerSol)
	data := instructionData(t, ix)
	assert.Equal(t, InstructionDepositSol, data[0])
	assert.Equal(t, uint64(2*LamportsPerSol), binary.LittleEndian.Uint64(data[1:]))
	assert.Len(t, ix.Accounts(), 10)
	assert.True(t, ix.Accounts()[3].IsSigner)

	depositAuth := solana.NewWallet().PublicKey()
	params.SolDepositAuthority = &depositAuth
	ix = DepositSol(StakePoolProgramID, params, 1)
	require.Len(t, ix.Accounts(), 11)
	assert.True(t, ix.Accounts()[10].IsSigner)
}

func TestUpdateStakePoolChunks(t *testing.T) {
	pool := testPoolState()
	list := &ValidatorList{Header: ValidatorListHeader{AccountType: AccountTypeValidatorList, MaxValidators: 20}}
	for i := 0; i < 7; i++ {
		list.Validators = append(list.Validators, ValidatorStakeInfo{
			VoteAccountAddress:  solana.NewWallet().PublicKey(),
			TransientSeedSuffix: uint64(i),
		})
	}

	updates, final, err := UpdateStakePool(StakePoolProgramID, pool, list, testPool, true)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	require.Len(t, final, 2)

	first := instructionData(t, updates[0])
	assert.Equal(t, InstructionUpdateValidatorListBalance, first[0])
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(first[1:5]))
	assert.Equal(t, byte(1), first[5])
	assert.Len(t, updates[0].Accounts(), 7+2*MaxValidatorsToUpdate)

	second := instructionData(t, updates[1])
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(second[1:5]))
	assert.Len(t, updates[1].Accounts(), 7+2*2)

	assert.Equal(t, []byte{InstructionUpdateStakePoolBalance}, instructionData(t, final[0]))
	assert.Equal(t, []byte{InstructionCleanupRemovedValidatorEntries}, instructionData(t, final[1]))
}

func TestInitializeData(t *testing.T) {
	keys := make([]solana.PublicKey, 10)
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}
	ix, err := Initialize(StakePoolProgramID, keys[0], keys[1], keys[2], keys[3], keys[4], keys[5], keys[6], keys[7],
		solana.TokenProgramID, nil, InitializeParams{
			EpochFee:      Fee{Numerator: 1, Denominator: 100},
			WithdrawalFee: Fee{Numerator: 2, Denominator: 100},
			DepositFee:    Fee{Numerator: 3, Denominator: 100},
			ReferralFee:   10,
			MaxValidators: 2950,
		})
	require.NoError(t, err)
	data := instructionData(t, ix)
	require.Len(t, data, 1+16*3+1+4)
	assert.Equal(t, InstructionInitialize, data[0])
	assert.Equal(t, byte(10), data[49])
	assert.Equal(t, uint32(2950), binary.LittleEndian.Uint32(data[50:]))
	assert.Len(t, ix.Accounts(), 9)
}

func TestStakeInitializeData(t *testing.T) {
	stake := solana.NewWallet().PublicKey()
	auth := solana.NewWallet().PublicKey()
	ix := StakeInitialize(stake, auth, auth, Lockup{})
	data := instructionData(t, ix)
	require.Len(t, data, 4+32+32+8+8+32)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[:4]))
	assert.Equal(t, auth[:], data[4:36])
	assert.True(t, ix.ProgramID().Equals(solana.StakeProgramID))

	mint := TokenInitializeMint(solana.TokenProgramID, stake, auth, NativeDecimals)
	data = instructionData(t, mint)
	require.Len(t, data, 35)
	assert.Equal(t, []byte{0, NativeDecimals}, data[:2])
	assert.Equal(t, byte(0), data[34], "no freeze authority")
}

func TestDepositStake(t *testing.T) {
	pool := testPoolState()
	stake := solana.NewWallet().PublicKey()
	withdrawer := solana.NewWallet().PublicKey()
	depositAuthority, _, _ := FindDepositAuthority(StakePoolProgramID, testPool)
	params := DepositStakeParams{
		StakePool:         testPool,
		ValidatorList:     pool.ValidatorList,
		DepositAuthority:  depositAuthority,
		DepositStake:      stake,
		ReserveStake:      pool.ReserveStake,
		PoolTokensTo:      solana.NewWallet().PublicKey(),
		ManagerFeeAccount: pool.ManagerFeeAccount,
		Referrer:          pool.ManagerFeeAccount,
		PoolMint:          pool.PoolMint,
		TokenProgramID:    pool.TokenProgramID,
	}

	ixs := DepositStake(StakePoolProgramID, params, withdrawer, false)
	require.Len(t, ixs, 3)
	for i, kind := range []StakeAuthorizeKind{StakeAuthorizeStaker, StakeAuthorizeWithdrawer} {
		assert.True(t, ixs[i].ProgramID().Equals(solana.StakeProgramID))
		data := instructionData(t, ixs[i])
		require.Len(t, data, 4+32+4)
		assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[:4]))
		assert.Equal(t, depositAuthority[:], data[4:36])
		assert.Equal(t, uint32(kind), binary.LittleEndian.Uint32(data[36:]))
		assert.True(t, ixs[i].Accounts()[2].PublicKey.Equals(withdrawer))
		assert.True(t, ixs[i].Accounts()[2].IsSigner)
	}

	deposit := ixs[2]
	assert.Equal(t, []byte{InstructionDepositStake}, instructionData(t, deposit))
	require.Len(t, deposit.Accounts(), 15)
	assert.True(t, deposit.Accounts()[2].PublicKey.Equals(depositAuthority))
	assert.False(t, deposit.Accounts()[2].IsSigner)
	assert.True(t, deposit.Accounts()[4].PublicKey.Equals(stake))

	custom := DepositStake(StakePoolProgramID, params, withdrawer, true)
	assert.True(t, custom[2].Accounts()[2].IsSigner)
}

func TestWithdrawStakeData(t *testing.T) {
	pool := testPoolState()
	owner := solana.NewWallet().PublicKey()
	ix := WithdrawStake(StakePoolProgramID, WithdrawStakeParams{
		StakePool:          testPool,
		ValidatorList:      pool.ValidatorList,
		StakeToSplit:       pool.ReserveStake,
		StakeToReceive:     solana.NewWallet().PublicKey(),
		UserStakeAuthority: owner,
		UserTransferAuth:   owner,
		PoolTokensFrom:     solana.NewWallet().PublicKey(),
		ManagerFeeAccount:  pool.ManagerFeeAccount,
		PoolMint:           pool.PoolMint,
		TokenProgramID:     pool.TokenProgramID,
	}, 3*LamportsPerSol)
	data := instructionData(t, ix)
	require.Len(t, data, 9)
	assert.Equal(t, InstructionWithdrawStake, data[0])
	assert.Equal(t, uint64(3*LamportsPerSol), binary.LittleEndian.Uint64(data[1:]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 13)
	assert.True(t, accounts[3].PublicKey.Equals(pool.ReserveStake))
	assert.True(t, accounts[4].IsWritable)
	assert.False(t, accounts[5].IsSigner)
	assert.True(t, accounts[6].IsSigner)
}
