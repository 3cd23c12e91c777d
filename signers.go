package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
)

// signerLoader resolves keypair flags, falling back to the client keypair and loading each file once.
type signerLoader struct {
	defaultPath string
	load        func(path string) (sol.Signer, error)
	cache       map[string]sol.Signer
}

func newSignerLoader(defaultPath string) *signerLoader {
	return &signerLoader{
		defaultPath: defaultPath,
		load: func(path string) (sol.Signer, error) {
			key, err := sol.LoadSigner(path)
			if err != nil {
				return nil, err
			}
			return key, nil
		},
		cache: map[string]sol.Signer{},
	}
}

// signer returns the keypair at path, or the default keypair when path is empty and useDefault is set.
func (l *signerLoader) signer(name, path string, useDefault bool) (sol.Signer, error) {
	if path == "" {
		if !useDefault {
			return nil, nil
		}
		path = l.defaultPath
	}
	// every prompt is its own seed phrase
	prompted := path == sol.AskKeyword || strings.HasPrefix(path, sol.PromptScheme)
	if s, found := l.cache[path]; found && !prompted {
		return s, nil
	}
	s, err := l.load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s keypair: %w", name, err)
	}
	if !prompted {
		l.cache[path] = s
	}
	return s, nil
}

// loadSigners is the Before hook of commands that sign. It fills the signers of the stake pool
// client from the global keypair flags.
func (ac *StakePoolApp) loadSigners(ctx context.Context, cmd *cli.Command) error {
	loader := newSignerLoader(ac.cliConfig.KeypairPath)
	cfg := &ac.client.Config
	var err error
	if cfg.FeePayer, err = loader.signer("fee payer", cmd.String("fee-payer"), true); err != nil {
		return err
	}
	if cfg.Manager, err = loader.signer("manager", cmd.String("manager"), true); err != nil {
		return err
	}
	if cfg.Staker, err = loader.signer("staker", cmd.String("staker"), true); err != nil {
		return err
	}
	if cfg.TokenOwner, err = loader.signer("token owner", cmd.String("token-owner"), true); err != nil {
		return err
	}
	if cfg.FundingAuthority, err = loader.signer("funding authority", cmd.String("funding-authority"), false); err != nil {
		return err
	}
	misc.Debugf(ac.logger, "fee payer:%s, manager:%s, staker:%s, token owner:%s", cfg.FeePayer.PublicKey(),
		cfg.Manager.PublicKey(), cfg.Staker.PublicKey(), cfg.TokenOwner.PublicKey())
	return nil
}

func requireSigners(ctx context.Context, cmd *cli.Command) error {
	return App.loadSigners(ctx, cmd)
}
