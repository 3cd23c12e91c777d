package sol

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestKeypairFromSeedPhrase(t *testing.T) {
	tests := []struct {
		name       string
		phrase     string
		passphrase string
		want       string
	}{
		{"no passphrase", testPhrase, "", "EHqmfkN89RJ7Y33CXM6uCzhVeuywHoJXZZLszBHHZy7o"},
		{"passphrase", testPhrase, "hunter2", "7ook6PnxzbZ6kUeZE8cuv8j2Zz6QkQ8ihiEP8aASakbv"},
		{"extra whitespace", "  abandon abandon abandon abandon abandon abandon\tabandon abandon abandon abandon abandon about ", "", "EHqmfkN89RJ7Y33CXM6uCzhVeuywHoJXZZLszBHHZy7o"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := KeypairFromSeedPhrase(tt.phrase, tt.passphrase)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key.PublicKey().String())
		})
	}

	_, err := KeypairFromSeedPhrase("abandon abandon abandon", "")
	assert.ErrorIs(t, err, ErrInvalidKeypair)
}

func writeKeypair(t *testing.T, dir string, key solana.PrivateKey) string {
	t.Helper()
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)
	path := filepath.Join(dir, "id.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadSigner(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	path := writeKeypair(t, t.TempDir(), key)

	loaded, err := LoadSigner(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), loaded.PublicKey())

	_, err = LoadSigner(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadSigner("")
	assert.ErrorIs(t, err, ErrInvalidKeypair)

	_, err = LoadSigner("usb://ledger")
	assert.ErrorIs(t, err, ErrInvalidKeypair)
}

func TestLoadSignerHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	key := solana.NewWallet().PrivateKey
	writeKeypair(t, home, key)

	loaded, err := LoadSigner("~/id.json")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), loaded.PublicKey())
	assert.Equal(t, filepath.Join(home, ".config/solana/id.json"), DefaultKeypairPath())
	assert.Equal(t, "relative/id.json", ExpandHome("relative/id.json"))
}
