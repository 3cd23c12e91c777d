package main

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
)

func TestSignerLoader(t *testing.T) {
	keys := map[string]solana.PrivateKey{
		"/id.json":      solana.NewWallet().PrivateKey,
		"/manager.json": solana.NewWallet().PrivateKey,
	}
	loads := map[string]int{}
	loader := newSignerLoader("/id.json")
	loader.load = func(path string) (sol.Signer, error) {
		loads[path]++
		if path == sol.AskKeyword {
			return solana.NewWallet().PrivateKey, nil
		}
		key, found := keys[path]
		if !found {
			return nil, errors.New("no such file")
		}
		return key, nil
	}

	feePayer, err := loader.signer("fee payer", "", true)
	require.NoError(t, err)
	assert.Equal(t, keys["/id.json"].PublicKey(), feePayer.PublicKey())

	staker, err := loader.signer("staker", "/id.json", true)
	require.NoError(t, err)
	assert.Equal(t, feePayer.PublicKey(), staker.PublicKey())
	assert.Equal(t, 1, loads["/id.json"], "loaded once")

	manager, err := loader.signer("manager", "/manager.json", true)
	require.NoError(t, err)
	assert.Equal(t, keys["/manager.json"].PublicKey(), manager.PublicKey())

	authority, err := loader.signer("funding authority", "", false)
	require.NoError(t, err)
	assert.Nil(t, authority)

	_, err = loader.signer("token owner", "/missing.json", true)
	assert.ErrorContains(t, err, "unable to load token owner keypair")

	first, err := loader.signer("manager", sol.AskKeyword, true)
	require.NoError(t, err)
	second, err := loader.signer("staker", sol.AskKeyword, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.PublicKey(), second.PublicKey())
	assert.Equal(t, 2, loads[sol.AskKeyword], "prompts are never cached")
}
