package sdk

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// FindWithdrawAuthority returns the pool's withdraw authority, which owns every stake account and the pool mint.
func FindWithdrawAuthority(programID, stakePool solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findAddress(programID, stakePool[:], authorityWithdraw)
}

// FindDepositAuthority returns the default stake deposit authority used when the pool has none set.
func FindDepositAuthority(programID, stakePool solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findAddress(programID, stakePool[:], authorityDeposit)
}

// FindStakeAddress returns the validator stake account for vote in stakePool. A zero seed is omitted
// from the seeds entirely.
func FindStakeAddress(programID, vote, stakePool solana.PublicKey, seed uint32) (solana.PublicKey, uint8, error) {
	if seed == 0 {
		return findAddress(programID, vote[:], stakePool[:])
	}
	seedBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(seedBytes, seed)
	return findAddress(programID, vote[:], stakePool[:], seedBytes)
}

// FindTransientStakeAddress returns the transient stake account used while stake for vote is
// being activated or deactivated.
func FindTransientStakeAddress(programID, vote, stakePool solana.PublicKey, seed uint64) (solana.PublicKey, uint8, error) {
	return findAddress(programID, transientPrefix, vote[:], stakePool[:], u64Seed(seed))
}

func FindEphemeralStakeAddress(programID, stakePool solana.PublicKey, seed uint64) (solana.PublicKey, uint8, error) {
	return findAddress(programID, ephemeralPrefix, stakePool[:], u64Seed(seed))
}

func u64Seed(seed uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, seed)
	return b
}

func findAddress(programID solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("unable to derive program address for program:%s, error:%w", programID, err)
	}
	return addr, bump, nil
}
