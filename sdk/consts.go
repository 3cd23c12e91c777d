package sdk

import (
	"github.com/gagliardetto/solana-go"
)

// StakePoolProgramID is the default deployment of the stake pool program.
var StakePoolProgramID = solana.MustPublicKeyFromBase58("SPoo1Ku8WFXoNDMHPsrGSTSG1Y47rzgn41SLUNakuHy")

// StakeConfigID is the legacy stake config account still required by the delegate instructions.
var StakeConfigID = solana.MustPublicKeyFromBase58("StakeConfig11111111111111111111111111111111")

const (
	// StakeStateLen is the size of a stake account (StakeStateV2).
	StakeStateLen = 200

	// MintLen and TokenAccountLen are the spl-token account sizes.
	MintLen         = 82
	TokenAccountLen = 165

	// NativeDecimals is used for the pool mint, same as wrapped SOL.
	NativeDecimals = 9

	// MinimumActiveStake is the smallest delegation the program keeps in a validator stake account.
	MinimumActiveStake = 1_000_000

	// StakePoolLen is the max packed size of a StakePool account.
	StakePoolLen = 611

	// MaxValidatorsToUpdate is how many validators fit in a single UpdateValidatorListBalance.
	MaxValidatorsToUpdate = 5

	LamportsPerSol = 1_000_000_000
)

// PDA seed prefixes
var (
	authorityWithdraw = []byte("withdraw")
	authorityDeposit  = []byte("deposit")
	transientPrefix   = []byte("transient")
	ephemeralPrefix   = []byte("ephemeral")
)
