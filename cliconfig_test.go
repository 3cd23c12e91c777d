package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCLIConfig(t *testing.T) {
	dir := t.TempDir()
	cfgName := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(cfgName, []byte(`---
json_rpc_url: "https://api.devnet.solana.com"
websocket_url: ""
keypair_path: /keys/id.json
address_labels:
  "11111111111111111111111111111111": System Program
commitment: finalized
`), 0600))

	cfg, err := LoadCLIConfig(cfgName)
	require.NoError(t, err)
	assert.Equal(t, "https://api.devnet.solana.com", cfg.JSONRPCURL)
	assert.Equal(t, "/keys/id.json", cfg.KeypairPath)
	assert.Equal(t, "finalized", cfg.Commitment)
}

func TestLoadCLIConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadCLIConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.JSONRPCURL)
	assert.Equal(t, filepath.Join(home, ".config/solana/id.json"), cfg.KeypairPath)
	assert.Equal(t, "confirmed", cfg.Commitment)

	_, err = LoadCLIConfig(filepath.Join(home, "missing.yml"))
	assert.Error(t, err, "an explicitly named config must exist")
}

func TestLoadCLIConfigInvalid(t *testing.T) {
	cfgName := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgName, []byte("json_rpc_url: [unterminated"), 0600))
	_, err := LoadCLIConfig(cfgName)
	assert.ErrorContains(t, err, "error parsing config file")
}
