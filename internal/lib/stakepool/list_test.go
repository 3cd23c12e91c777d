package stakepool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

func TestListDisplay(t *testing.T) {
	fx := newPoolFixture(t, 2)
	require.NoError(t, fx.client.List(context.Background(), fx.address))

	out := fx.out.String()
	assert.Contains(t, out, "Stake Pool")
	assert.Contains(t, out, fx.address.String())
	assert.Contains(t, out, "5/100 of epoch rewards")
	assert.Contains(t, out, "◎3")
	for _, v := range fx.list.Validators {
		assert.Contains(t, out, v.VoteAccountAddress.String())
	}
	stake, _, err := sdk.FindStakeAddress(sdk.StakePoolProgramID, fx.list.Validators[0].VoteAccountAddress, fx.address, 0)
	require.NoError(t, err)
	assert.NotContains(t, out, stake.String())

	fx.out.Reset()
	fx.client.Config.Verbose = true
	require.NoError(t, fx.client.List(context.Background(), fx.address))
	assert.Contains(t, fx.out.String(), stake.String())
}

func TestListJSON(t *testing.T) {
	fx := newPoolFixture(t, 3)
	fx.client.Config.Output = OutputJSON
	fx.client.Metrics = NewMetrics(prometheus.NewRegistry())
	require.NoError(t, fx.client.List(context.Background(), fx.address))

	var view PoolView
	require.NoError(t, json.Unmarshal(fx.out.Bytes(), &view))
	assert.Equal(t, fx.address, view.Address)
	assert.Equal(t, uint64(3*sdk.LamportsPerSol), view.ReserveStakeLamports)
	assert.Equal(t, uint32(10), view.MaxValidators)
	require.Len(t, view.Validators, 3)
	assert.Equal(t, fx.list.Validators[2].VoteAccountAddress, view.Validators[2].VoteAccount)
	assert.Equal(t, uint64(3*sdk.LamportsPerSol), view.Validators[2].ActiveStakeLamports)
	assert.Greater(t, strings.Count(fx.out.String(), "\n"), 1)

	assert.Equal(t, 100.0, testutil.ToFloat64(fx.client.Metrics.totalLamports.WithLabelValues(fx.address.String())))

	fx.out.Reset()
	fx.client.Config.Output = OutputJSONCompact
	require.NoError(t, fx.client.List(context.Background(), fx.address))
	assert.Equal(t, 1, strings.Count(fx.out.String(), "\n"))
}

// addPool stores a second pool with its own validator list.
func (fx *poolFixture) addPool(t *testing.T, totalLamports uint64, validators int) solana.PublicKey {
	t.Helper()
	address := solana.NewWallet().PublicKey()
	pool := *fx.pool
	pool.ValidatorList = solana.NewWallet().PublicKey()
	pool.TotalLamports = totalLamports
	list := &sdk.ValidatorList{Header: sdk.ValidatorListHeader{AccountType: sdk.AccountTypeValidatorList, MaxValidators: 5}}
	for i := 0; i < validators; i++ {
		list.Validators = append(list.Validators, sdk.ValidatorStakeInfo{VoteAccountAddress: solana.NewWallet().PublicKey()})
	}
	fx.chain.put(t, address, pool.Encode)
	fx.chain.put(t, pool.ValidatorList, list.Encode)
	return address
}

func TestGetAllPools(t *testing.T) {
	fx := newPoolFixture(t, 2)
	big := fx.addPool(t, 500*sdk.LamportsPerSol, 4)
	small := fx.addPool(t, sdk.LamportsPerSol, 0)
	// matches the account type filter but doesn't decode
	fx.chain.accounts[solana.NewWallet().PublicKey()] = []byte{byte(sdk.AccountTypeStakePool), 1, 2}

	pools, err := fx.client.GetAllPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 3)
	assert.Equal(t, big, pools[0].Address)
	assert.Equal(t, 4, pools[0].Validators)
	assert.Equal(t, fx.address, pools[1].Address)
	assert.Equal(t, 2, pools[1].Validators)
	assert.Equal(t, small, pools[2].Address)
	assert.Contains(t, fx.logs.String(), "warn: Invalid stake pool data")
}

func TestGetAllPoolsMissingList(t *testing.T) {
	fx := newPoolFixture(t, 1)
	orphan := fx.addPool(t, 2*sdk.LamportsPerSol, 0)
	data := fx.chain.accounts[orphan]
	pool, err := sdk.DecodeStakePool(data)
	require.NoError(t, err)
	delete(fx.chain.accounts, pool.ValidatorList)

	pools, err := fx.client.GetAllPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, fx.address, pools[0].Address)
	assert.Contains(t, fx.logs.String(), "unable to load validator list for pool "+orphan.String())
}

func TestListAll(t *testing.T) {
	fx := newPoolFixture(t, 1)
	other := fx.addPool(t, 7*sdk.LamportsPerSol, 1)

	require.NoError(t, fx.client.ListAll(context.Background()))
	out := fx.out.String()
	assert.Contains(t, out, fx.address.String())
	assert.Contains(t, out, other.String())
	assert.Contains(t, out, "◎100")
	assert.True(t, strings.HasSuffix(out, "Number of pools: 2\n"))

	fx.out.Reset()
	fx.client.Config.Output = OutputJSONCompact
	require.NoError(t, fx.client.ListAll(context.Background()))
	var pools []PoolSummary
	require.NoError(t, json.Unmarshal(fx.out.Bytes(), &pools))
	require.Len(t, pools, 2)
	assert.Equal(t, fx.address, pools[0].Address)
	assert.Equal(t, uint64(7*sdk.LamportsPerSol), pools[1].TotalLamports)
}
