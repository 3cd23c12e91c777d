package sol

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/manifoldco/promptui"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ed25519"
)

const (
	// AskKeyword selects an interactive seed phrase prompt instead of a keypair file.
	AskKeyword   = "ASK"
	PromptScheme = "prompt://"
)

// DefaultKeypairPath is where solana-keygen writes the default keypair.
func DefaultKeypairPath() string {
	return ExpandHome("~/.config/solana/id.json")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// LoadSigner resolves a keypair reference: a solana-keygen JSON file, or ASK / prompt:// to read
// a seed phrase from the terminal.
func LoadSigner(keypairPath string) (solana.PrivateKey, error) {
	switch {
	case keypairPath == "":
		return nil, fmt.Errorf("%w: no keypair path given", ErrInvalidKeypair)
	case keypairPath == AskKeyword, strings.HasPrefix(keypairPath, PromptScheme):
		return promptSeedPhrase(keypairPath)
	case strings.HasPrefix(keypairPath, "usb://"):
		return nil, fmt.Errorf("%w: hardware wallets are not supported: %s", ErrInvalidKeypair, keypairPath)
	}
	return LoadKeypairFile(ExpandHome(keypairPath))
}

func LoadKeypairFile(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: %s holds %d bytes", ErrInvalidKeypair, path, len(key))
	}
	return key, nil
}

func promptSeedPhrase(keypairPath string) (solana.PrivateKey, error) {
	phrase, err := (&promptui.Prompt{
		Label: fmt.Sprintf("[%s] seed phrase", keypairPath),
		Mask:  '*',
		Validate: func(s string) error {
			if !bip39.IsMnemonicValid(normalizePhrase(s)) {
				return errors.New("invalid seed phrase")
			}
			return nil
		},
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("seed phrase prompt: %w", err)
	}
	passphrase, err := (&promptui.Prompt{
		Label: fmt.Sprintf("[%s] passphrase (empty for none)", keypairPath),
		Mask:  '*',
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("passphrase prompt: %w", err)
	}
	return KeypairFromSeedPhrase(phrase, passphrase)
}

// KeypairFromSeedPhrase derives the keypair the solana cli produces for a seed phrase without a
// derivation path: the first 32 bytes of the bip39 seed are the ed25519 seed.
func KeypairFromSeedPhrase(phrase, passphrase string) (solana.PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(normalizePhrase(phrase), passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeypair, err)
	}
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])), nil
}

func normalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(phrase), " ")
}
