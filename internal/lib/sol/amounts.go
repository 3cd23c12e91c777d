package sol

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	LamportsPerSol = 1_000_000_000
	solDecimals    = 9
)

// FormattedSolAmount renders lamports as SOL with up to 9 decimals, trailing zeros trimmed.
func FormattedSolAmount(lamports uint64) string {
	whole := strconv.FormatUint(lamports/LamportsPerSol, 10)
	frac := lamports % LamportsPerSol
	if frac == 0 {
		return whole
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return whole + "." + fracStr
}

// ParseSolAmount converts a decimal SOL string like "1.5" into lamports without going through
// floating point. More than 9 decimals is an error.
func ParseSolAmount(amount string) (uint64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	whole, frac, hasFrac := strings.Cut(amount, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if len(frac) > solDecimals {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, amount, solDecimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", solDecimals-len(frac))
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
		}
	}
	lamports, ok := new(big.Int).SetString(digits, 10)
	if !ok || !lamports.IsUint64() {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, amount)
	}
	return lamports.Uint64(), nil
}
