package sdk

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/gagliardetto/solana-go"
)

type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypeStakePool
	AccountTypeValidatorList
)

// Fee is a rational fee, numerator over denominator. Stored denominator first.
type Fee struct {
	Denominator uint64 `json:"denominator"`
	Numerator   uint64 `json:"numerator"`
}

func (f Fee) IsZero() bool {
	return f.Numerator == 0 || f.Denominator == 0
}

func (f Fee) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// Percent returns the fee as a percentage, 0 when the fee is unset.
func (f Fee) Percent() float64 {
	if f.Denominator == 0 {
		return 0
	}
	return float64(f.Numerator) * 100 / float64(f.Denominator)
}

type FutureEpochTag uint8

const (
	FutureEpochNone FutureEpochTag = iota
	FutureEpochOne
	FutureEpochTwo
)

// FutureEpochFee is a fee change scheduled to take effect one or two epochs out.
type FutureEpochFee struct {
	Tag FutureEpochTag `json:"tag"`
	Fee Fee            `json:"fee"`
}

func (f FutureEpochFee) Get() (Fee, bool) {
	return f.Fee, f.Tag != FutureEpochNone
}

type Lockup struct {
	UnixTimestamp int64            `json:"unixTimestamp"`
	Epoch         uint64           `json:"epoch"`
	Custodian     solana.PublicKey `json:"custodian"`
}

// StakePool is the global pool state owned by the stake pool program.
type StakePool struct {
	AccountType                AccountType       `json:"accountType"`
	Manager                    solana.PublicKey  `json:"manager"`
	Staker                     solana.PublicKey  `json:"staker"`
	StakeDepositAuthority      solana.PublicKey  `json:"stakeDepositAuthority"`
	StakeWithdrawBumpSeed      uint8             `json:"stakeWithdrawBumpSeed"`
	ValidatorList              solana.PublicKey  `json:"validatorList"`
	ReserveStake               solana.PublicKey  `json:"reserveStake"`
	PoolMint                   solana.PublicKey  `json:"poolMint"`
	ManagerFeeAccount          solana.PublicKey  `json:"managerFeeAccount"`
	TokenProgramID             solana.PublicKey  `json:"tokenProgramId"`
	TotalLamports              uint64            `json:"totalLamports"`
	PoolTokenSupply            uint64            `json:"poolTokenSupply"`
	LastUpdateEpoch            uint64            `json:"lastUpdateEpoch"`
	Lockup                     Lockup            `json:"lockup"`
	EpochFee                   Fee               `json:"epochFee"`
	NextEpochFee               FutureEpochFee    `json:"nextEpochFee"`
	PreferredDepositValidator  *solana.PublicKey `json:"preferredDepositValidatorVoteAddress,omitempty"`
	PreferredWithdrawValidator *solana.PublicKey `json:"preferredWithdrawValidatorVoteAddress,omitempty"`
	StakeDepositFee            Fee               `json:"stakeDepositFee"`
	StakeWithdrawalFee         Fee               `json:"stakeWithdrawalFee"`
	NextStakeWithdrawalFee     FutureEpochFee    `json:"nextStakeWithdrawalFee"`
	StakeReferralFee           uint8             `json:"stakeReferralFee"`
	SolDepositAuthority        *solana.PublicKey `json:"solDepositAuthority,omitempty"`
	SolDepositFee              Fee               `json:"solDepositFee"`
	SolReferralFee             uint8             `json:"solReferralFee"`
	SolWithdrawAuthority       *solana.PublicKey `json:"solWithdrawAuthority,omitempty"`
	SolWithdrawalFee           Fee               `json:"solWithdrawalFee"`
	NextSolWithdrawalFee       FutureEpochFee    `json:"nextSolWithdrawalFee"`
	LastEpochPoolTokenSupply   uint64            `json:"lastEpochPoolTokenSupply"`
	LastEpochTotalLamports     uint64            `json:"lastEpochTotalLamports"`
}

// DecodeStakePool decodes a StakePool account. Bytes past the last field are ignored since the
// account is allocated at its max size.
func DecodeStakePool(data []byte) (*StakePool, error) {
	r := newReader(data)
	p := &StakePool{}
	p.AccountType = AccountType(r.u8())
	if r.err == nil && p.AccountType != AccountTypeStakePool {
		return nil, fmt.Errorf("%w: got %d, want stake pool", ErrInvalidAccountType, p.AccountType)
	}
	p.Manager = r.pubkey()
	p.Staker = r.pubkey()
	p.StakeDepositAuthority = r.pubkey()
	p.StakeWithdrawBumpSeed = r.u8()
	p.ValidatorList = r.pubkey()
	p.ReserveStake = r.pubkey()
	p.PoolMint = r.pubkey()
	p.ManagerFeeAccount = r.pubkey()
	p.TokenProgramID = r.pubkey()
	p.TotalLamports = r.u64()
	p.PoolTokenSupply = r.u64()
	p.LastUpdateEpoch = r.u64()
	p.Lockup = Lockup{UnixTimestamp: r.i64(), Epoch: r.u64(), Custodian: r.pubkey()}
	p.EpochFee = r.fee()
	p.NextEpochFee = r.futureFee()
	p.PreferredDepositValidator = r.optionPubkey()
	p.PreferredWithdrawValidator = r.optionPubkey()
	p.StakeDepositFee = r.fee()
	p.StakeWithdrawalFee = r.fee()
	p.NextStakeWithdrawalFee = r.futureFee()
	p.StakeReferralFee = r.u8()
	p.SolDepositAuthority = r.optionPubkey()
	p.SolDepositFee = r.fee()
	p.SolReferralFee = r.u8()
	p.SolWithdrawAuthority = r.optionPubkey()
	p.SolWithdrawalFee = r.fee()
	p.NextSolWithdrawalFee = r.futureFee()
	p.LastEpochPoolTokenSupply = r.u64()
	p.LastEpochTotalLamports = r.u64()
	if r.err != nil {
		return nil, fmt.Errorf("failed to deserialize stake pool: %w", r.err)
	}
	return p, nil
}

func (p *StakePool) Encode() ([]byte, error) {
	w := newWriter()
	w.u8(uint8(p.AccountType))
	w.pubkey(p.Manager)
	w.pubkey(p.Staker)
	w.pubkey(p.StakeDepositAuthority)
	w.u8(p.StakeWithdrawBumpSeed)
	w.pubkey(p.ValidatorList)
	w.pubkey(p.ReserveStake)
	w.pubkey(p.PoolMint)
	w.pubkey(p.ManagerFeeAccount)
	w.pubkey(p.TokenProgramID)
	w.u64(p.TotalLamports)
	w.u64(p.PoolTokenSupply)
	w.u64(p.LastUpdateEpoch)
	w.i64(p.Lockup.UnixTimestamp)
	w.u64(p.Lockup.Epoch)
	w.pubkey(p.Lockup.Custodian)
	w.fee(p.EpochFee)
	w.futureFee(p.NextEpochFee)
	w.optionPubkey(p.PreferredDepositValidator)
	w.optionPubkey(p.PreferredWithdrawValidator)
	w.fee(p.StakeDepositFee)
	w.fee(p.StakeWithdrawalFee)
	w.futureFee(p.NextStakeWithdrawalFee)
	w.u8(p.StakeReferralFee)
	w.optionPubkey(p.SolDepositAuthority)
	w.fee(p.SolDepositFee)
	w.u8(p.SolReferralFee)
	w.optionPubkey(p.SolWithdrawAuthority)
	w.fee(p.SolWithdrawalFee)
	w.futureFee(p.NextSolWithdrawalFee)
	w.u64(p.LastEpochPoolTokenSupply)
	w.u64(p.LastEpochTotalLamports)
	return w.bytes()
}

// CalcPoolTokensForDeposit converts deposited lamports into pool tokens at the current exchange rate.
func (p *StakePool) CalcPoolTokensForDeposit(lamports uint64) uint64 {
	if p.TotalLamports == 0 || p.PoolTokenSupply == 0 {
		return lamports
	}
	return mulDiv(lamports, p.PoolTokenSupply, p.TotalLamports)
}

// CalcLamportsWithdrawAmount converts pool tokens into lamports at the current exchange rate.
func (p *StakePool) CalcLamportsWithdrawAmount(poolTokens uint64) uint64 {
	if p.PoolTokenSupply == 0 {
		return 0
	}
	return mulDiv(poolTokens, p.TotalLamports, p.PoolTokenSupply)
}

// CalcPoolTokensForStakeWithdrawal is how many pool tokens withdraw lamports of stake once the stake
// withdrawal fee is taken.
func (p *StakePool) CalcPoolTokensForStakeWithdrawal(lamports uint64) uint64 {
	tokens := p.CalcPoolTokensForDeposit(lamports)
	fee := p.StakeWithdrawalFee
	if fee.Numerator == 0 || fee.Numerator >= fee.Denominator {
		return tokens
	}
	return mulDiv(tokens, fee.Denominator, fee.Denominator-fee.Numerator)
}

type StakeStatus uint8

const (
	StakeStatusActive StakeStatus = iota
	StakeStatusDeactivatingTransient
	StakeStatusReadyForRemoval
	StakeStatusDeactivatingValidator
	StakeStatusDeactivatingAll
)

func (s StakeStatus) String() string {
	switch s {
	case StakeStatusActive:
		return "Active"
	case StakeStatusDeactivatingTransient:
		return "DeactivatingTransient"
	case StakeStatusReadyForRemoval:
		return "ReadyForRemoval"
	case StakeStatusDeactivatingValidator:
		return "DeactivatingValidator"
	case StakeStatusDeactivatingAll:
		return "DeactivatingAll"
	}
	return fmt.Sprintf("Unknown(%d)", uint8(s))
}

func (s StakeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StakeStatus) UnmarshalText(text []byte) error {
	for status := StakeStatusActive; status <= StakeStatusDeactivatingAll; status++ {
		if status.String() == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown stake status %q", text)
}

const (
	validatorListHeaderLen = 5
	validatorStakeInfoLen  = 73
)

// ValidatorListSize is the account size needed to hold maxValidators entries.
func ValidatorListSize(maxValidators uint32) uint64 {
	return validatorListHeaderLen + 4 + validatorStakeInfoLen*uint64(maxValidators)
}

type ValidatorListHeader struct {
	AccountType   AccountType `json:"accountType"`
	MaxValidators uint32      `json:"maxValidators"`
}

type ValidatorStakeInfo struct {
	ActiveStakeLamports    uint64           `json:"activeStakeLamports"`
	TransientStakeLamports uint64           `json:"transientStakeLamports"`
	LastUpdateEpoch        uint64           `json:"lastUpdateEpoch"`
	TransientSeedSuffix    uint64           `json:"transientSeedSuffix"`
	Unused                 uint32           `json:"-"`
	ValidatorSeedSuffix    uint32           `json:"validatorSeedSuffix"`
	Status                 StakeStatus      `json:"status"`
	VoteAccountAddress     solana.PublicKey `json:"voteAccountAddress"`
}

func (v ValidatorStakeInfo) StakeLamports() uint64 {
	return v.ActiveStakeLamports + v.TransientStakeLamports
}

type ValidatorList struct {
	Header     ValidatorListHeader  `json:"header"`
	Validators []ValidatorStakeInfo `json:"validators"`
}

func DecodeValidatorList(data []byte) (*ValidatorList, error) {
	r := newReader(data)
	list := &ValidatorList{}
	list.Header.AccountType = AccountType(r.u8())
	if r.err == nil && list.Header.AccountType != AccountTypeValidatorList {
		return nil, fmt.Errorf("%w: got %d, want validator list", ErrInvalidAccountType, list.Header.AccountType)
	}
	list.Header.MaxValidators = r.u32()
	count := r.u32()
	if r.err == nil && uint64(count)*validatorStakeInfoLen > uint64(r.dec.Remaining()) {
		return nil, fmt.Errorf("failed to deserialize validator list: %d entries don't fit in %d bytes", count, r.dec.Remaining())
	}
	if r.err == nil {
		list.Validators = make([]ValidatorStakeInfo, 0, count)
	}
	for i := uint32(0); i < count && r.err == nil; i++ {
		list.Validators = append(list.Validators, ValidatorStakeInfo{
			ActiveStakeLamports:    r.u64(),
			TransientStakeLamports: r.u64(),
			LastUpdateEpoch:        r.u64(),
			TransientSeedSuffix:    r.u64(),
			Unused:                 r.u32(),
			ValidatorSeedSuffix:    r.u32(),
			Status:                 StakeStatus(r.u8()),
			VoteAccountAddress:     r.pubkey(),
		})
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to deserialize validator list: %w", r.err)
	}
	return list, nil
}

// Encode writes the list at its full allocated size, zero padding the unused entries.
func (l *ValidatorList) Encode() ([]byte, error) {
	w := newWriter()
	w.u8(uint8(l.Header.AccountType))
	w.u32(l.Header.MaxValidators)
	w.u32(uint32(len(l.Validators)))
	for _, v := range l.Validators {
		w.u64(v.ActiveStakeLamports)
		w.u64(v.TransientStakeLamports)
		w.u64(v.LastUpdateEpoch)
		w.u64(v.TransientSeedSuffix)
		w.u32(v.Unused)
		w.u32(v.ValidatorSeedSuffix)
		w.u8(uint8(v.Status))
		w.pubkey(v.VoteAccountAddress)
	}
	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	if size := ValidatorListSize(l.Header.MaxValidators); uint64(len(data)) < size {
		data = append(data, make([]byte, size-uint64(len(data)))...)
	}
	return data, nil
}

func (l *ValidatorList) Contains(vote solana.PublicKey) bool {
	_, found := l.Find(vote)
	return found
}

func (l *ValidatorList) Find(vote solana.PublicKey) (*ValidatorStakeInfo, bool) {
	for i := range l.Validators {
		if l.Validators[i].VoteAccountAddress.Equals(vote) {
			return &l.Validators[i], true
		}
	}
	return nil, false
}

// TotalStakeLamports sums active and transient stake over every validator.
func (l *ValidatorList) TotalStakeLamports() uint64 {
	var total uint64
	for _, v := range l.Validators {
		total += v.StakeLamports()
	}
	return total
}

// TokenAccount holds the parts of an spl-token account the client reads.
type TokenAccount struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < TokenAccountLen {
		return nil, fmt.Errorf("token account data too short: %d bytes", len(data))
	}
	r := newReader(data)
	acct := &TokenAccount{Mint: r.pubkey(), Owner: r.pubkey(), Amount: r.u64()}
	if r.err != nil {
		return nil, fmt.Errorf("failed to deserialize token account: %w", r.err)
	}
	return acct, nil
}

func mulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, c)
	return q
}
