package sol

import "errors"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrMissingSigner   = errors.New("missing signer")
	ErrInvalidAmount   = errors.New("invalid SOL amount")
	ErrInvalidKeypair  = errors.New("invalid keypair")
)
