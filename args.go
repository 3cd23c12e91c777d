package main

import (
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v3"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

func requiredArg(cmd *cli.Command, idx int, name string) (string, error) {
	val := cmd.Args().Get(idx)
	if val == "" {
		return "", cli.Exit(fmt.Sprintf("missing required argument <%s>", name), 1)
	}
	return val, nil
}

func pubkeyArg(cmd *cli.Command, idx int, name string) (solana.PublicKey, error) {
	val, err := requiredArg(cmd, idx, name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return parsePubkey(name, val)
}

func parsePubkey(name, val string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(val)
	if err != nil {
		return solana.PublicKey{}, cli.Exit(fmt.Sprintf("invalid %s:%s, error:%v", name, val, err), 1)
	}
	return pk, nil
}

// optionalPubkeyFlag returns nil when the flag wasn't given.
func optionalPubkeyFlag(cmd *cli.Command, name string) (*solana.PublicKey, error) {
	val := cmd.String(name)
	if val == "" {
		return nil, nil
	}
	pk, err := parsePubkey(name, val)
	if err != nil {
		return nil, err
	}
	return &pk, nil
}

// optionalSignerFlag loads the keypair named by the flag, or returns nil when it wasn't given.
func optionalSignerFlag(cmd *cli.Command, name string) (sol.Signer, error) {
	val := cmd.String(name)
	if val == "" {
		return nil, nil
	}
	key, err := sol.LoadSigner(val)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return key, nil
}

// solAmountArg parses a SOL (or 9 decimal pool token) amount into its base units.
func solAmountArg(cmd *cli.Command, idx int, name string) (uint64, error) {
	val, err := requiredArg(cmd, idx, name)
	if err != nil {
		return 0, err
	}
	amount, err := sol.ParseSolAmount(val)
	if err != nil {
		return 0, cli.Exit(fmt.Sprintf("invalid %s: %v", name, err), 1)
	}
	return amount, nil
}

// optionalSolAmountArg is solAmountArg for an amount that may be left out, in which case it is 0.
func optionalSolAmountArg(cmd *cli.Command, idx int, name string) (uint64, error) {
	if cmd.Args().Get(idx) == "" {
		return 0, nil
	}
	return solAmountArg(cmd, idx, name)
}

func uintArg(cmd *cli.Command, idx int, name string) (uint64, error) {
	val, err := requiredArg(cmd, idx, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, cli.Exit(fmt.Sprintf("invalid %s:%s, expected an unsigned integer", name, val), 1)
	}
	return n, nil
}

func parseFeeKind(val string) (sdk.FeeKind, error) {
	switch val {
	case "epoch":
		return sdk.FeeKindEpoch, nil
	case "stake-deposit":
		return sdk.FeeKindStakeDeposit, nil
	case "sol-deposit":
		return sdk.FeeKindSolDeposit, nil
	case "stake-withdrawal":
		return sdk.FeeKindStakeWithdrawal, nil
	case "sol-withdrawal":
		return sdk.FeeKindSolWithdrawal, nil
	}
	return 0, cli.Exit(fmt.Sprintf("unknown fee type:%s, expected epoch, stake-deposit, sol-deposit, stake-withdrawal or sol-withdrawal", val), 1)
}

func parseReferralKind(val string) (sdk.FeeKind, error) {
	switch val {
	case "stake":
		return sdk.FeeKindStakeReferral, nil
	case "sol":
		return sdk.FeeKindSolReferral, nil
	}
	return 0, cli.Exit(fmt.Sprintf("unknown referral fee type:%s, expected stake or sol", val), 1)
}

func parseFundingType(val string) (sdk.FundingType, error) {
	switch val {
	case "stake-deposit":
		return sdk.FundingTypeStakeDeposit, nil
	case "sol-deposit":
		return sdk.FundingTypeSolDeposit, nil
	case "sol-withdraw":
		return sdk.FundingTypeSolWithdraw, nil
	}
	return 0, cli.Exit(fmt.Sprintf("unknown funding type:%s, expected stake-deposit, sol-deposit or sol-withdraw", val), 1)
}

func parsePreferredType(val string) (sdk.PreferredValidatorType, error) {
	switch val {
	case "deposit":
		return sdk.PreferredValidatorDeposit, nil
	case "withdraw":
		return sdk.PreferredValidatorWithdraw, nil
	}
	return 0, cli.Exit(fmt.Sprintf("unknown preferred validator type:%s, expected deposit or withdraw", val), 1)
}
