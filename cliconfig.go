package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
)

// CLIConfig is the subset of the solana cli config file this tool honors.
type CLIConfig struct {
	JSONRPCURL  string `yaml:"json_rpc_url"`
	KeypairPath string `yaml:"keypair_path"`
	Commitment  string `yaml:"commitment"`
}

func DefaultConfigFilename() string {
	return sol.ExpandHome("~/.config/solana/cli/config.yml")
}

// LoadCLIConfig reads the solana cli config at cfgName, or the default location when cfgName is
// empty. Only an explicitly named file has to exist.
func LoadCLIConfig(cfgName string) (*CLIConfig, error) {
	explicit := cfgName != ""
	if !explicit {
		cfgName = DefaultConfigFilename()
	}
	cfg := &CLIConfig{}
	data, err := os.ReadFile(sol.ExpandHome(cfgName))
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		cfg.applyDefaults()
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("error reading config file:%s, error:%w", cfgName, err)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file:%s, error:%w", cfgName, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills the keypair path. The rpc url stays empty so SOLANA_RPC_URL can still apply.
func (c *CLIConfig) applyDefaults() {
	if c.KeypairPath == "" {
		c.KeypairPath = sol.DefaultKeypairPath()
	}
	if c.Commitment == "" {
		c.Commitment = "confirmed"
	}
}
