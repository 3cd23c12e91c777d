package sol

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer signs transaction messages. solana.PrivateKey satisfies it.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(payload []byte) (solana.Signature, error)
}

// UniqueSigners drops nil entries and repeats of the same public key, keeping the first.
func UniqueSigners(signers ...Signer) []Signer {
	seen := make(map[solana.PublicKey]bool, len(signers))
	out := make([]Signer, 0, len(signers))
	for _, s := range signers {
		if s == nil || seen[s.PublicKey()] {
			continue
		}
		seen[s.PublicKey()] = true
		out = append(out, s)
	}
	return out
}

// SignTransaction fills every required signature slot of tx, in account key order. Signers that
// the message doesn't require are ignored.
func SignTransaction(tx *solana.Transaction, signers ...Signer) error {
	payload, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	byKey := make(map[solana.PublicKey]Signer, len(signers))
	for _, s := range UniqueSigners(signers...) {
		byKey[s.PublicKey()] = s
	}

	numRequired := int(tx.Message.Header.NumRequiredSignatures)
	if numRequired > len(tx.Message.AccountKeys) {
		return fmt.Errorf("message requires %d signatures but has %d account keys", numRequired, len(tx.Message.AccountKeys))
	}
	signatures := make([]solana.Signature, numRequired)
	for i, key := range tx.Message.AccountKeys[:numRequired] {
		signer, found := byKey[key]
		if !found {
			return fmt.Errorf("%w: %s", ErrMissingSigner, key)
		}
		if signatures[i], err = signer.Sign(payload); err != nil {
			return fmt.Errorf("error signing with %s: %w", key, err)
		}
	}
	tx.Signatures = signatures
	return nil
}
