package sdk

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// StakeStateKind is the StakeStateV2 variant tag. The stake program uses bincode, so it is a u32.
type StakeStateKind uint32

const (
	StakeStateUninitialized StakeStateKind = iota
	StakeStateInitialized
	StakeStateStake
	StakeStateRewardsPool
)

// StakeWithdrawerOffset is the offset of the withdraw authority in a stake account, for memcmp filters.
const StakeWithdrawerOffset = 44

// StakeAccount holds the parts of a stake program account the client reads. Delegation fields are
// only set for StakeStateStake.
type StakeAccount struct {
	State             StakeStateKind
	RentExemptReserve uint64
	Staker            solana.PublicKey
	Withdrawer        solana.PublicKey
	Lockup            Lockup
	Voter             solana.PublicKey
	Stake             uint64
	ActivationEpoch   uint64
	DeactivationEpoch uint64
}

func (s *StakeAccount) IsDelegated() bool {
	return s.State == StakeStateStake
}

func (s *StakeAccount) hasMeta() bool {
	return s.State == StakeStateInitialized || s.State == StakeStateStake
}

func DecodeStakeAccount(data []byte) (*StakeAccount, error) {
	if len(data) < StakeStateLen {
		return nil, fmt.Errorf("stake account data too short: %d bytes", len(data))
	}
	r := newReader(data)
	s := &StakeAccount{State: StakeStateKind(r.u32())}
	if s.State > StakeStateRewardsPool {
		return nil, fmt.Errorf("unknown stake account state %d", s.State)
	}
	if s.hasMeta() {
		s.RentExemptReserve = r.u64()
		s.Staker = r.pubkey()
		s.Withdrawer = r.pubkey()
		s.Lockup = Lockup{UnixTimestamp: r.i64(), Epoch: r.u64(), Custodian: r.pubkey()}
	}
	if s.IsDelegated() {
		s.Voter = r.pubkey()
		s.Stake = r.u64()
		s.ActivationEpoch = r.u64()
		s.DeactivationEpoch = r.u64()
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to deserialize stake account: %w", r.err)
	}
	return s, nil
}

// Encode packs the account into StakeStateLen bytes. The warmup rate and credits are left zeroed.
func (s *StakeAccount) Encode() ([]byte, error) {
	w := newWriter()
	w.u32(uint32(s.State))
	if s.hasMeta() {
		w.u64(s.RentExemptReserve)
		w.pubkey(s.Staker)
		w.pubkey(s.Withdrawer)
		w.i64(s.Lockup.UnixTimestamp)
		w.u64(s.Lockup.Epoch)
		w.pubkey(s.Lockup.Custodian)
	}
	if s.IsDelegated() {
		w.pubkey(s.Voter)
		w.u64(s.Stake)
		w.u64(s.ActivationEpoch)
		w.u64(s.DeactivationEpoch)
	}
	data, err := w.bytes()
	if err != nil {
		return nil, err
	}
	return append(data, make([]byte, StakeStateLen-len(data))...), nil
}
