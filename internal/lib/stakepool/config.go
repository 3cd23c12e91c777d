package stakepool

import (
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
)

type OutputFormat string

const (
	OutputDisplay        OutputFormat = "display"
	OutputDisplayVerbose OutputFormat = "display-verbose"
	OutputJSON           OutputFormat = "json"
	OutputJSONCompact    OutputFormat = "json-compact"
)

func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputDisplay:
		return OutputDisplay, nil
	case OutputDisplayVerbose, OutputJSON, OutputJSONCompact:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format:%s, expected json or json-compact", s)
}

func (o OutputFormat) IsJSON() bool {
	return o == OutputJSON || o == OutputJSONCompact
}

// Config carries the per-invocation settings and signers. Signers a command doesn't need may be nil;
// FundingAuthority is only set when the pool restricts deposits or withdrawals.
type Config struct {
	ProgramID solana.PublicKey
	DryRun    bool
	NoUpdate  bool
	Verbose   bool
	Output    OutputFormat

	Manager          sol.Signer
	Staker           sol.Signer
	FundingAuthority sol.Signer
	TokenOwner       sol.Signer
	FeePayer         sol.Signer

	// Out receives command output. Logs go elsewhere.
	Out io.Writer
}

func requireSigner(name string, s sol.Signer) error {
	if s == nil {
		return fmt.Errorf("%w: %s", ErrMissingSigner, name)
	}
	return nil
}
