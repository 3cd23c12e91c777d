package sdk

import (
	"github.com/gagliardetto/solana-go"
)

// StakeInitialize initializes a freshly allocated stake account with the given authorities and an empty lockup.
// The stake program uses bincode, so the tag is a little endian u32.
func StakeInitialize(stake, staker, withdrawer solana.PublicKey, lockup Lockup) solana.Instruction {
	w := newWriter()
	w.u32(0)
	w.pubkey(staker)
	w.pubkey(withdrawer)
	w.i64(lockup.UnixTimestamp)
	w.u64(lockup.Epoch)
	w.pubkey(lockup.Custodian)
	data, _ := w.bytes()
	return solana.NewInstruction(solana.StakeProgramID, solana.AccountMetaSlice{
		solana.Meta(stake).WRITE(),
		solana.Meta(solana.SysVarRentPubkey),
	}, data)
}

type StakeAuthorizeKind uint32

const (
	StakeAuthorizeStaker StakeAuthorizeKind = iota
	StakeAuthorizeWithdrawer
)

// StakeAuthorize hands the kind authority of stake over to newAuthority. authority must sign; the
// withdrawer may also change the staker.
func StakeAuthorize(stake, authority, newAuthority solana.PublicKey, kind StakeAuthorizeKind) solana.Instruction {
	w := newWriter()
	w.u32(1)
	w.pubkey(newAuthority)
	w.u32(uint32(kind))
	data, _ := w.bytes()
	return solana.NewInstruction(solana.StakeProgramID, solana.AccountMetaSlice{
		solana.Meta(stake).WRITE(),
		solana.Meta(solana.SysVarClockPubkey),
		solana.Meta(authority).SIGNER(),
	}, data)
}

// TokenInitializeMint initializes mint with no freeze authority.
func TokenInitializeMint(tokenProgramID, mint, mintAuthority solana.PublicKey, decimals uint8) solana.Instruction {
	w := newWriter()
	w.u8(0)
	w.u8(decimals)
	w.pubkey(mintAuthority)
	w.u8(0)
	data, _ := w.bytes()
	return solana.NewInstruction(tokenProgramID, solana.AccountMetaSlice{
		solana.Meta(mint).WRITE(),
		solana.Meta(solana.SysVarRentPubkey),
	}, data)
}
