package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/stakepool"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// memChain is an in-memory sol.Chain for running commands end to end.
type memChain struct {
	mu        sync.Mutex
	accounts  map[solana.PublicKey][]byte
	balances  map[solana.PublicKey]uint64
	epoch     uint64
	simulated []*solana.Transaction
	sent      []*solana.Transaction
}

func newMemChain() *memChain {
	return &memChain{accounts: map[solana.PublicKey][]byte{}, balances: map[solana.PublicKey]uint64{}}
}

func (m *memChain) AccountData(_ context.Context, address solana.PublicKey) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, found := m.accounts[address]
	if !found {
		return nil, fmt.Errorf("%w: %s", sol.ErrAccountNotFound, address)
	}
	return data, nil
}

func (m *memChain) Balance(_ context.Context, address solana.PublicKey) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[address], nil
}

func (m *memChain) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{1}, nil
}

func (m *memChain) FeeForMessage(context.Context, *solana.Message) (uint64, error) {
	return 5000, nil
}

func (m *memChain) MinimumBalanceForRentExemption(_ context.Context, dataLen uint64) (uint64, error) {
	return (dataLen + 128) * 6960, nil
}

func (m *memChain) ProgramAccounts(context.Context, solana.PublicKey, ...rpc.RPCFilter) ([]sol.ProgramAccount, error) {
	return nil, nil
}

func (m *memChain) EpochInfo(context.Context) (sol.EpochInfo, error) {
	return sol.EpochInfo{Epoch: m.epoch, SlotIndex: 431_000, SlotsInEpoch: 432_000}, nil
}

func (m *memChain) Simulate(_ context.Context, tx *solana.Transaction) (*sol.SimulateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulated = append(m.simulated, tx)
	return &sol.SimulateResult{}, nil
}

func (m *memChain) Send(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, tx)
	return tx.Signatures[0], nil
}

func (m *memChain) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return m.Send(ctx, tx)
}

// testPool is a one validator pool stored in a memChain, current as of the chain epoch.
type testPool struct {
	chain   *memChain
	address solana.PublicKey
	pool    *sdk.StakePool
	vote    solana.PublicKey
	key     solana.PrivateKey
	out     *bytes.Buffer
}

func newTestPool(t *testing.T) *testPool {
	t.Helper()
	tp := &testPool{
		chain:   newMemChain(),
		address: solana.NewWallet().PublicKey(),
		vote:    solana.NewWallet().PublicKey(),
		key:     solana.NewWallet().PrivateKey,
		out:     &bytes.Buffer{},
	}
	tp.chain.epoch = 500
	tp.pool = &sdk.StakePool{
		AccountType:       sdk.AccountTypeStakePool,
		Manager:           tp.key.PublicKey(),
		Staker:            tp.key.PublicKey(),
		ValidatorList:     solana.NewWallet().PublicKey(),
		ReserveStake:      solana.NewWallet().PublicKey(),
		PoolMint:          solana.NewWallet().PublicKey(),
		ManagerFeeAccount: solana.NewWallet().PublicKey(),
		TokenProgramID:    solana.TokenProgramID,
		TotalLamports:     10 * sdk.LamportsPerSol,
		PoolTokenSupply:   10 * sdk.LamportsPerSol,
		LastUpdateEpoch:   tp.chain.epoch,
	}
	list := &sdk.ValidatorList{
		Header: sdk.ValidatorListHeader{AccountType: sdk.AccountTypeValidatorList, MaxValidators: 4},
		Validators: []sdk.ValidatorStakeInfo{{
			ActiveStakeLamports: 2 * sdk.LamportsPerSol,
			LastUpdateEpoch:     tp.chain.epoch,
			TransientSeedSuffix: 1,
			VoteAccountAddress:  tp.vote,
		}},
	}
	poolData, err := tp.pool.Encode()
	require.NoError(t, err)
	listData, err := list.Encode()
	require.NoError(t, err)
	tp.chain.accounts[tp.address] = poolData
	tp.chain.accounts[tp.pool.ValidatorList] = listData
	tp.chain.balances[tp.key.PublicKey()] = 5 * sdk.LamportsPerSol
	tp.chain.balances[tp.pool.ReserveStake] = 3 * sdk.LamportsPerSol
	return tp
}

// install points the global App at the pool chain, with its key as the client keypair.
func (tp *testPool) install(t *testing.T) {
	t.Helper()
	ints := make([]int, len(tp.key))
	for i, b := range tp.key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)
	keypairPath := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(keypairPath, data, 0o600))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	App = &StakePoolApp{
		logger:    logger,
		cliConfig: &CLIConfig{KeypairPath: keypairPath},
		client: stakepool.New(tp.chain, stakepool.Config{
			DryRun:   true,
			NoUpdate: true,
			Out:      tp.out,
		}, logger, nil),
	}
	t.Cleanup(func() { App = nil })
}

// run executes one subcommand from commands.
func (tp *testPool) run(commands []*cli.Command, args ...string) error {
	root := &cli.Command{
		Name:           "jito-stake-pool",
		Commands:       commands,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	return root.Run(context.Background(), append([]string{"jito-stake-pool"}, args...))
}

// lastInstruction is the final instruction of the last simulated transaction.
func (tp *testPool) lastInstruction(t *testing.T) solana.CompiledInstruction {
	t.Helper()
	require.NotEmpty(t, tp.chain.simulated)
	tx := tp.chain.simulated[len(tp.chain.simulated)-1]
	require.NotEmpty(t, tx.Message.Instructions)
	return tx.Message.Instructions[len(tx.Message.Instructions)-1]
}
