package stakepool

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
)

const feesReference = "Consider setting a minimal fee. See https://spl.solana.com/stake-pool/fees for more information about fees and best practices. If you are aware of the possible risks of a stake pool with no fees, you may force pool creation with the --unsafe-fees flag."

var (
	ErrValidatorNotFound   = errors.New("Vote account not found in validator list")
	ErrZeroEpochFee        = errors.New("Epoch fee should not be 0. " + feesReference)
	ErrZeroDepositWithdraw = errors.New("Withdrawal and deposit fee should not both be 0. " + feesReference)
	ErrInvalidReferralFee  = errors.New("invalid referral fee")
	ErrInvalidAuthority    = errors.New("invalid funding authority")
	ErrInsufficientTokens  = errors.New("not enough pool tokens")
	ErrInsufficientSol     = errors.New("not enough SOL")
	ErrMissingSigner       = errors.New("required signer not configured")
	ErrStakeNotDelegated   = errors.New("Wrong stake account state, must be delegated to validator")
	ErrInsufficientStake   = errors.New("not enough stake to withdraw")
	ErrNoStakeAccounts     = errors.New("No stake accounts found")
)

// InsufficientBalanceError is returned when the fee payer can't cover fees and rent for a command.
type InsufficientBalanceError struct {
	FeePayer  solana.PublicKey
	Required  uint64
	Available uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Fee payer, %s, has insufficient balance: ◎%s required, ◎%s available",
		e.FeePayer, sol.FormattedSolAmount(e.Required), sol.FormattedSolAmount(e.Available))
}
