package stakepool

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mailgun/holster/v4/syncutil"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// listAllConcurrency bounds the validator list fetches of list-all.
const listAllConcurrency = 8

type ValidatorView struct {
	VoteAccount            solana.PublicKey `json:"voteAccountAddress"`
	StakeAccount           solana.PublicKey `json:"stakeAccountAddress"`
	TransientStakeAccount  solana.PublicKey `json:"transientStakeAccountAddress"`
	ActiveStakeLamports    uint64           `json:"activeStakeLamports"`
	TransientStakeLamports uint64           `json:"transientStakeLamports"`
	LastUpdateEpoch        uint64           `json:"lastUpdateEpoch"`
	Status                 sdk.StakeStatus  `json:"status"`
}

// PoolView is what list prints for a pool.
type PoolView struct {
	Address              solana.PublicKey `json:"address"`
	WithdrawAuthority    solana.PublicKey `json:"withdrawAuthority"`
	StakePool            *sdk.StakePool   `json:"stakePool"`
	ReserveStakeLamports uint64           `json:"reserveStakeLamports"`
	MaxValidators        uint32           `json:"maxValidators"`
	Validators           []ValidatorView  `json:"validators"`
}

// PoolSummary is one row of list-all.
type PoolSummary struct {
	Address         solana.PublicKey `json:"address"`
	ValidatorList   solana.PublicKey `json:"validatorList"`
	Manager         solana.PublicKey `json:"manager"`
	PoolMint        solana.PublicKey `json:"poolMint"`
	Validators      int              `json:"validatorCount"`
	TotalLamports   uint64           `json:"totalLamports"`
	PoolTokenSupply uint64           `json:"poolTokenSupply"`
	LastUpdateEpoch uint64           `json:"lastUpdateEpoch"`
}

// GetPoolView gathers the pool, its reserve balance and each validator's derived stake accounts.
func (c *Client) GetPoolView(ctx context.Context, poolAddress solana.PublicKey) (*PoolView, error) {
	pool, list, err := c.getPoolAndList(ctx, poolAddress)
	if err != nil {
		return nil, err
	}
	withdrawAuthority, _, err := sdk.FindWithdrawAuthority(c.Config.ProgramID, poolAddress)
	if err != nil {
		return nil, err
	}
	reserve, err := c.Chain.Balance(ctx, pool.ReserveStake)
	if err != nil {
		return nil, err
	}
	view := &PoolView{
		Address:              poolAddress,
		WithdrawAuthority:    withdrawAuthority,
		StakePool:            pool,
		ReserveStakeLamports: reserve,
		MaxValidators:        list.Header.MaxValidators,
		Validators:           make([]ValidatorView, 0, len(list.Validators)),
	}
	for _, v := range list.Validators {
		stake, _, err := sdk.FindStakeAddress(c.Config.ProgramID, v.VoteAccountAddress, poolAddress, v.ValidatorSeedSuffix)
		if err != nil {
			return nil, err
		}
		transient, _, err := sdk.FindTransientStakeAddress(c.Config.ProgramID, v.VoteAccountAddress, poolAddress, v.TransientSeedSuffix)
		if err != nil {
			return nil, err
		}
		view.Validators = append(view.Validators, ValidatorView{
			VoteAccount:            v.VoteAccountAddress,
			StakeAccount:           stake,
			TransientStakeAccount:  transient,
			ActiveStakeLamports:    v.ActiveStakeLamports,
			TransientStakeLamports: v.TransientStakeLamports,
			LastUpdateEpoch:        v.LastUpdateEpoch,
			Status:                 v.Status,
		})
	}
	c.Metrics.observe(poolAddress.String(), pool, list)
	return view, nil
}

// List prints the pool and its validators.
func (c *Client) List(ctx context.Context, poolAddress solana.PublicKey) error {
	view, err := c.GetPoolView(ctx, poolAddress)
	if err != nil {
		return err
	}
	if c.Config.Output.IsJSON() {
		return writeJSON(c.out(), c.Config.Output, view)
	}
	c.printf("%s", renderPoolView(view))
	c.printf("%s", renderValidators(view, c.Config.Verbose || c.Config.Output == OutputDisplayVerbose))
	return nil
}

func optionalKey(pk *solana.PublicKey) string {
	if pk == nil {
		return "None"
	}
	return pk.String()
}

func futureFee(f sdk.FutureEpochFee) string {
	fee, ok := f.Get()
	if !ok {
		return "None"
	}
	return fee.String()
}

func renderPoolView(v *PoolView) string {
	p := v.StakePool
	return renderKeyValues([][2]string{
		{"Stake Pool", v.Address.String()},
		{"Validator List", p.ValidatorList.String()},
		{"Manager", p.Manager.String()},
		{"Staker", p.Staker.String()},
		{"Depositor", p.StakeDepositAuthority.String()},
		{"SOL Deposit Authority", optionalKey(p.SolDepositAuthority)},
		{"SOL Withdraw Authority", optionalKey(p.SolWithdrawAuthority)},
		{"Withdraw Authority", v.WithdrawAuthority.String()},
		{"Pool Token Mint", p.PoolMint.String()},
		{"Fee Account", p.ManagerFeeAccount.String()},
		{"Preferred Deposit Validator", optionalKey(p.PreferredDepositValidator)},
		{"Preferred Withdraw Validator", optionalKey(p.PreferredWithdrawValidator)},
		{"Epoch Fee", fmt.Sprintf("%s of epoch rewards", p.EpochFee)},
		{"Next Epoch Fee", futureFee(p.NextEpochFee)},
		{"Stake Withdrawal Fee", fmt.Sprintf("%s of withdrawal amount", p.StakeWithdrawalFee)},
		{"Next Stake Withdrawal Fee", futureFee(p.NextStakeWithdrawalFee)},
		{"SOL Withdrawal Fee", fmt.Sprintf("%s of withdrawal amount", p.SolWithdrawalFee)},
		{"Next SOL Withdrawal Fee", futureFee(p.NextSolWithdrawalFee)},
		{"Stake Deposit Fee", fmt.Sprintf("%s of deposit amount", p.StakeDepositFee)},
		{"SOL Deposit Fee", fmt.Sprintf("%s of deposit amount", p.SolDepositFee)},
		{"Stake Deposit Referral Fee", fmt.Sprintf("%d%% of Stake Deposit Fee", p.StakeReferralFee)},
		{"SOL Deposit Referral Fee", fmt.Sprintf("%d%% of SOL Deposit Fee", p.SolReferralFee)},
		{"Reserve Account", p.ReserveStake.String()},
		{"Available Balance", "◎" + sol.FormattedSolAmount(v.ReserveStakeLamports)},
		{"Total Pool Stake", "◎" + sol.FormattedSolAmount(p.TotalLamports)},
		{"Total Pool Tokens", sol.FormattedSolAmount(p.PoolTokenSupply)},
		{"Last Update Epoch", strconv.FormatUint(p.LastUpdateEpoch, 10)},
		{"Current Number of Validators", strconv.Itoa(len(v.Validators))},
		{"Max Number of Validators", strconv.FormatUint(uint64(v.MaxValidators), 10)},
	})
}

func renderValidators(v *PoolView, verbose bool) string {
	headers := []string{"Vote Account", "Active Stake", "Transient Stake", "Last Update Epoch", "Status"}
	numeric := []int{1, 2, 3}
	if verbose {
		headers = append(headers, "Stake Account", "Transient Stake Account")
	}
	rows := make([][]string, 0, len(v.Validators))
	for _, val := range v.Validators {
		row := []string{
			val.VoteAccount.String(),
			"◎" + sol.FormattedSolAmount(val.ActiveStakeLamports),
			"◎" + sol.FormattedSolAmount(val.TransientStakeLamports),
			strconv.FormatUint(val.LastUpdateEpoch, 10),
			val.Status.String(),
		}
		if verbose {
			row = append(row, val.StakeAccount.String(), val.TransientStakeAccount.String())
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, numeric...)
}

// GetAllPools finds every stake pool owned by the program and fetches their validator lists. Pools
// that fail to decode or load are skipped with a warning.
func (c *Client) GetAllPools(ctx context.Context) ([]PoolSummary, error) {
	accounts, err := c.Chain.ProgramAccounts(ctx, c.Config.ProgramID, rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58{byte(sdk.AccountTypeStakePool)}},
	})
	if err != nil {
		return nil, err
	}
	misc.Debugf(c.Logger, "found %d stake pool accounts for program:%s", len(accounts), c.Config.ProgramID)

	var (
		fanOut    = syncutil.NewFanOut(listAllConcurrency)
		mu        sync.Mutex
		summaries = make([]PoolSummary, 0, len(accounts))
	)
	for _, account := range accounts {
		pool, err := sdk.DecodeStakePool(account.Data)
		if err != nil {
			misc.Warnf(c.Logger, "Invalid stake pool data for %s: %v", account.Address, err)
			continue
		}
		fanOut.Run(func(val any) error {
			address := val.(solana.PublicKey)
			list, err := c.GetValidatorList(ctx, pool.ValidatorList)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				misc.Warnf(c.Logger, "unable to load validator list for pool %s: %v", address, err)
				return nil
			}
			c.Metrics.observe(address.String(), pool, list)
			mu.Lock()
			defer mu.Unlock()
			summaries = append(summaries, PoolSummary{
				Address:         address,
				ValidatorList:   pool.ValidatorList,
				Manager:         pool.Manager,
				PoolMint:        pool.PoolMint,
				Validators:      len(list.Validators),
				TotalLamports:   pool.TotalLamports,
				PoolTokenSupply: pool.PoolTokenSupply,
				LastUpdateEpoch: pool.LastUpdateEpoch,
			})
			return nil
		}, account.Address)
	}
	if errs := fanOut.Wait(); len(errs) > 0 {
		return nil, errs[0]
	}
	slices.SortFunc(summaries, func(a, b PoolSummary) int {
		switch {
		case a.TotalLamports > b.TotalLamports:
			return -1
		case a.TotalLamports < b.TotalLamports:
			return 1
		}
		return slices.Compare(a.Address[:], b.Address[:])
	})
	return summaries, nil
}

// ListAll prints a summary line for every stake pool of the program.
func (c *Client) ListAll(ctx context.Context) error {
	summaries, err := c.GetAllPools(ctx)
	if err != nil {
		return err
	}
	if c.Config.Output.IsJSON() {
		return writeJSON(c.out(), c.Config.Output, summaries)
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Address.String(),
			s.Manager.String(),
			strconv.Itoa(s.Validators),
			"◎" + sol.FormattedSolAmount(s.TotalLamports),
			strconv.FormatUint(s.LastUpdateEpoch, 10),
		})
	}
	c.printf("%s", renderTable([]string{"Stake Pool", "Manager", "Validators", "Total Stake", "Last Update Epoch"}, rows, 2, 3, 4))
	c.printf("Number of pools: %d", len(summaries))
	return nil
}
