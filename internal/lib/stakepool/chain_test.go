package stakepool

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// fakeChain is an in-memory sol.Chain serving encoded accounts and recording what gets submitted.
type fakeChain struct {
	mu        sync.Mutex
	accounts  map[solana.PublicKey][]byte
	balances  map[solana.PublicKey]uint64
	epoch     uint64
	fee       uint64
	sent      []*solana.Transaction
	confirmed []*solana.Transaction
	simulated []*solana.Transaction
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		accounts: map[solana.PublicKey][]byte{},
		balances: map[solana.PublicKey]uint64{},
		fee:      5000,
	}
}

func (f *fakeChain) AccountData(_ context.Context, address solana.PublicKey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, found := f.accounts[address]
	if !found {
		return nil, fmt.Errorf("%w: %s", sol.ErrAccountNotFound, address)
	}
	return data, nil
}

func (f *fakeChain) Balance(_ context.Context, address solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[address], nil
}

func (f *fakeChain) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{9, 9, 9}, nil
}

func (f *fakeChain) FeeForMessage(context.Context, *solana.Message) (uint64, error) {
	return f.fee, nil
}

func (f *fakeChain) MinimumBalanceForRentExemption(_ context.Context, dataLen uint64) (uint64, error) {
	return (dataLen + 128) * 6960, nil
}

func (f *fakeChain) ProgramAccounts(_ context.Context, _ solana.PublicKey, filters ...rpc.RPCFilter) ([]sol.ProgramAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sol.ProgramAccount
	for address, data := range f.accounts {
		matches := true
		for _, filter := range filters {
			if m := filter.Memcmp; m != nil {
				end := int(m.Offset) + len(m.Bytes)
				if end > len(data) || !bytes.Equal(data[m.Offset:end], m.Bytes) {
					matches = false
				}
			}
		}
		if matches {
			out = append(out, sol.ProgramAccount{Address: address, Data: data})
		}
	}
	return out, nil
}

func (f *fakeChain) EpochInfo(context.Context) (sol.EpochInfo, error) {
	return sol.EpochInfo{Epoch: f.epoch, SlotIndex: 100, SlotsInEpoch: 432_000}, nil
}

func (f *fakeChain) Simulate(_ context.Context, tx *solana.Transaction) (*sol.SimulateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simulated = append(f.simulated, tx)
	return &sol.SimulateResult{Logs: []string{"Program log: ok"}}, nil
}

func (f *fakeChain) Send(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return tx.Signatures[0], nil
}

func (f *fakeChain) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := f.Send(ctx, tx)
	f.mu.Lock()
	f.confirmed = append(f.confirmed, tx)
	f.mu.Unlock()
	return sig, err
}

func (f *fakeChain) put(t *testing.T, address solana.PublicKey, encode func() ([]byte, error)) {
	t.Helper()
	data, err := encode()
	require.NoError(t, err)
	f.accounts[address] = data
}

// poolFixture is a stake pool with a validator list, loaded into a fake chain.
type poolFixture struct {
	chain    *fakeChain
	client   *Client
	out      *bytes.Buffer
	logs     *bytes.Buffer
	address  solana.PublicKey
	pool     *sdk.StakePool
	list     *sdk.ValidatorList
	feePayer solana.PrivateKey
	staker   solana.PrivateKey
	manager  solana.PrivateKey
	owner    solana.PrivateKey
}

const testEpoch = 640

func newPoolFixture(t *testing.T, numValidators int) *poolFixture {
	t.Helper()
	fx := &poolFixture{
		chain:    newFakeChain(),
		out:      &bytes.Buffer{},
		logs:     &bytes.Buffer{},
		address:  solana.NewWallet().PublicKey(),
		feePayer: solana.NewWallet().PrivateKey,
		staker:   solana.NewWallet().PrivateKey,
		manager:  solana.NewWallet().PrivateKey,
		owner:    solana.NewWallet().PrivateKey,
	}
	fx.chain.epoch = testEpoch
	depositAuthority, _, err := sdk.FindDepositAuthority(sdk.StakePoolProgramID, fx.address)
	require.NoError(t, err)
	fx.pool = &sdk.StakePool{
		AccountType:           sdk.AccountTypeStakePool,
		Manager:               fx.manager.PublicKey(),
		Staker:                fx.staker.PublicKey(),
		StakeDepositAuthority: depositAuthority,
		ValidatorList:         solana.NewWallet().PublicKey(),
		ReserveStake:          solana.NewWallet().PublicKey(),
		PoolMint:              solana.NewWallet().PublicKey(),
		ManagerFeeAccount:     solana.NewWallet().PublicKey(),
		TokenProgramID:        solana.TokenProgramID,
		TotalLamports:         100 * sdk.LamportsPerSol,
		PoolTokenSupply:       90 * sdk.LamportsPerSol,
		LastUpdateEpoch:       testEpoch,
		EpochFee:              sdk.Fee{Denominator: 100, Numerator: 5},
	}
	fx.list = &sdk.ValidatorList{Header: sdk.ValidatorListHeader{AccountType: sdk.AccountTypeValidatorList, MaxValidators: 10}}
	for i := 0; i < numValidators; i++ {
		fx.list.Validators = append(fx.list.Validators, sdk.ValidatorStakeInfo{
			ActiveStakeLamports: uint64(i+1) * sdk.LamportsPerSol,
			LastUpdateEpoch:     testEpoch,
			TransientSeedSuffix: uint64(i + 2),
			ValidatorSeedSuffix: uint32(i),
			VoteAccountAddress:  solana.NewWallet().PublicKey(),
		})
	}
	fx.store(t)
	fx.chain.balances[fx.feePayer.PublicKey()] = 10 * sdk.LamportsPerSol
	fx.chain.balances[fx.pool.ReserveStake] = 3 * sdk.LamportsPerSol

	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)
	logger := slog.New(misc.NewMinimalHandler(fx.logs, misc.MinimalHandlerOptions{SlogOpts: slog.HandlerOptions{Level: level}}))
	fx.client = New(fx.chain, Config{
		NoUpdate:   true,
		Manager:    fx.manager,
		Staker:     fx.staker,
		TokenOwner: fx.owner,
		FeePayer:   fx.feePayer,
		Out:        fx.out,
	}, logger, nil)
	return fx
}

// store writes the fixture pool and list back to the chain.
func (fx *poolFixture) store(t *testing.T) {
	t.Helper()
	fx.chain.put(t, fx.address, fx.pool.Encode)
	fx.chain.put(t, fx.pool.ValidatorList, fx.list.Encode)
}

// putStake stores a stake account delegated to vote, or just initialized when vote is zero.
func (fx *poolFixture) putStake(t *testing.T, address, withdrawer, vote solana.PublicKey) {
	t.Helper()
	stake := &sdk.StakeAccount{
		State:             sdk.StakeStateStake,
		RentExemptReserve: 2_282_880,
		Staker:            withdrawer,
		Withdrawer:        withdrawer,
		Voter:             vote,
		Stake:             2 * sdk.LamportsPerSol,
		DeactivationEpoch: ^uint64(0),
	}
	if vote.IsZero() {
		stake.State = sdk.StakeStateInitialized
	}
	fx.chain.put(t, address, stake.Encode)
}

// instruction returns the program id and data of the idx'th instruction of tx.
func instruction(t *testing.T, tx *solana.Transaction, idx int) (solana.PublicKey, []byte) {
	t.Helper()
	require.Greater(t, len(tx.Message.Instructions), idx)
	ix := tx.Message.Instructions[idx]
	program, err := tx.Message.Program(ix.ProgramIDIndex)
	require.NoError(t, err)
	return program, []byte(ix.Data)
}
