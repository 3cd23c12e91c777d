package stakepool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

// Client runs stake pool commands against a chain.
type Client struct {
	Chain   sol.Chain
	Config  Config
	Logger  *slog.Logger
	Metrics *Metrics
}

func New(chain sol.Chain, config Config, logger *slog.Logger, metrics *Metrics) *Client {
	if config.ProgramID.IsZero() {
		config.ProgramID = sdk.StakePoolProgramID
	}
	if config.Output == "" {
		config.Output = OutputDisplay
	}
	misc.Debugf(logger, "stake pool client initialized, program id:%s, dry run:%v", config.ProgramID, config.DryRun)
	return &Client{
		Chain:   chain,
		Config:  config,
		Logger:  logger,
		Metrics: metrics,
	}
}

func (c *Client) out() io.Writer {
	if c.Config.Out == nil {
		return os.Stdout
	}
	return c.Config.Out
}

func (c *Client) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format+"\n", args...)
}

func (c *Client) GetStakePool(ctx context.Context, address solana.PublicKey) (*sdk.StakePool, error) {
	data, err := c.Chain.AccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	pool, err := sdk.DecodeStakePool(data)
	if err != nil {
		return nil, fmt.Errorf("invalid stake pool %s: %w", address, err)
	}
	return pool, nil
}

func (c *Client) GetValidatorList(ctx context.Context, address solana.PublicKey) (*sdk.ValidatorList, error) {
	data, err := c.Chain.AccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	list, err := sdk.DecodeValidatorList(data)
	if err != nil {
		return nil, fmt.Errorf("invalid validator list %s: %w", address, err)
	}
	return list, nil
}

// GetTokenAccount fetches a token account and verifies it holds expectedMint.
func (c *Client) GetTokenAccount(ctx context.Context, address, expectedMint solana.PublicKey) (*sdk.TokenAccount, error) {
	data, err := c.Chain.AccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	acct, err := sdk.DecodeTokenAccount(data)
	if err != nil {
		return nil, fmt.Errorf("invalid token account %s: %w", address, err)
	}
	if !acct.Mint.Equals(expectedMint) {
		return nil, fmt.Errorf("invalid token mint for %s, expected mint is %s", address, expectedMint)
	}
	return acct, nil
}

func (c *Client) GetStakeAccount(ctx context.Context, address solana.PublicKey) (*sdk.StakeAccount, error) {
	data, err := c.Chain.AccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	stake, err := sdk.DecodeStakeAccount(data)
	if err != nil {
		return nil, fmt.Errorf("invalid stake account %s: %w", address, err)
	}
	return stake, nil
}

// getPoolAndList fetches the stake pool and the validator list it points at.
func (c *Client) getPoolAndList(ctx context.Context, poolAddress solana.PublicKey) (*sdk.StakePool, *sdk.ValidatorList, error) {
	pool, err := c.GetStakePool(ctx, poolAddress)
	if err != nil {
		return nil, nil, err
	}
	list, err := c.GetValidatorList(ctx, pool.ValidatorList)
	if err != nil {
		return nil, nil, err
	}
	return pool, list, nil
}

// findValidator returns the list entry for vote or ErrValidatorNotFound.
func findValidator(list *sdk.ValidatorList, vote solana.PublicKey) (*sdk.ValidatorStakeInfo, error) {
	info, found := list.Find(vote)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrValidatorNotFound, vote)
	}
	return info, nil
}

// accountExists reports whether address is a live account.
func (c *Client) accountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := c.Chain.AccountData(ctx, address)
	if errors.Is(err, sol.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// updateIfNeeded brings the pool balances up to date before a state changing command, unless the
// user asked to skip it.
func (c *Client) updateIfNeeded(ctx context.Context, poolAddress solana.PublicKey) error {
	if c.Config.NoUpdate {
		return nil
	}
	return c.Update(ctx, poolAddress, false, false)
}
