package sdk

import (
	"errors"
)

var (
	ErrInvalidAccountType = errors.New("account data is not of the expected stake pool account type")
	ErrInvalidFeeType     = errors.New("unknown fee type")
	ErrInvalidOptionTag   = errors.New("invalid option tag in account data")
)
