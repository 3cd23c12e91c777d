package sol

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
)

const DefaultURL = "https://api.mainnet-beta.solana.com"

type NetworkConfig struct {
	URL        string
	Headers    map[string]string
	Commitment rpc.CommitmentType
}

func (n NetworkConfig) String() string {
	return fmt.Sprintf("URL: %s, Commitment: %s, Headers: (count:%d)", n.URL, n.Commitment, len(n.Headers))
}

// ParseCommitment maps a solana cli commitment setting to its rpc level. The deprecated names the
// solana cli still accepts map to their replacements.
func ParseCommitment(commitment string) (rpc.CommitmentType, error) {
	switch strings.ToLower(strings.TrimSpace(commitment)) {
	case "", "confirmed", "single", "singlegossip":
		return rpc.CommitmentConfirmed, nil
	case "processed", "recent":
		return rpc.CommitmentProcessed, nil
	case "finalized", "max", "root":
		return rpc.CommitmentFinalized, nil
	}
	return "", fmt.Errorf("unknown commitment:%s, expected one of processed, confirmed, finalized", commitment)
}

// GetNetworkConfig resolves urlOrMoniker and attaches any extra RPC headers from SOLANA_RPC_HEADERS.
// An empty urlOrMoniker falls back to SOLANA_RPC_URL and then to mainnet-beta.
func GetNetworkConfig(urlOrMoniker string) NetworkConfig {
	if urlOrMoniker == "" {
		urlOrMoniker = misc.GetSecret("SOLANA_RPC_URL")
	}
	cfg := NetworkConfig{URL: ResolveURL(urlOrMoniker)}

	// key:value,[key:value...] pairs, split on the first : since values can contain them
	cfg.Headers = map[string]string{}
	for _, header := range strings.Split(misc.GetSecret("SOLANA_RPC_HEADERS"), ",") {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			cfg.Headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return cfg
}

// ResolveURL maps the cluster monikers accepted by the solana cli to their public endpoints.
func ResolveURL(urlOrMoniker string) string {
	switch urlOrMoniker {
	case "":
		return DefaultURL
	case "m", "mainnet-beta":
		return "https://api.mainnet-beta.solana.com"
	case "d", "devnet":
		return "https://api.devnet.solana.com"
	case "t", "testnet":
		return "https://api.testnet.solana.com"
	case "l", "localhost":
		return "http://127.0.0.1:8899"
	}
	return urlOrMoniker
}
