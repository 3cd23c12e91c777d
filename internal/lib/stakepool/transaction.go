package stakepool

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/sol"
	"github.com/aoikurokawa/jito-stake-pool-cli/sdk"
)

func (c *Client) newTransaction(blockhash solana.Hash, instructions []solana.Instruction) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(c.Config.FeePayer.PublicKey()))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, nil
}

// checkedTransaction builds a transaction paid for by the fee payer, checks the fee payer can cover
// the message fee, and signs it.
func (c *Client) checkedTransaction(ctx context.Context, instructions []solana.Instruction, signers ...sol.Signer) (*solana.Transaction, error) {
	return c.checkedTransactionWithRent(ctx, instructions, 0, signers...)
}

// checkedTransactionWithRent is checkedTransaction where the fee payer also funds rent lamports of new accounts.
func (c *Client) checkedTransactionWithRent(ctx context.Context, instructions []solana.Instruction, rent uint64, signers ...sol.Signer) (*solana.Transaction, error) {
	if err := requireSigner("fee payer", c.Config.FeePayer); err != nil {
		return nil, err
	}
	blockhash, err := c.Chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := c.newTransaction(blockhash, instructions)
	if err != nil {
		return nil, err
	}
	fee, err := c.Chain.FeeForMessage(ctx, &tx.Message)
	if err != nil {
		return nil, err
	}
	if err = c.checkFeePayerBalance(ctx, rent+fee); err != nil {
		return nil, err
	}
	if err = sol.SignTransaction(tx, append([]sol.Signer{c.Config.FeePayer}, signers...)...); err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *Client) checkFeePayerBalance(ctx context.Context, required uint64) error {
	feePayer := c.Config.FeePayer.PublicKey()
	balance, err := c.Chain.Balance(ctx, feePayer)
	if err != nil {
		return err
	}
	if balance < required {
		return &InsufficientBalanceError{FeePayer: feePayer, Required: required, Available: balance}
	}
	return nil
}

// send simulates the transaction in dry-run mode, otherwise submits it and waits for confirmation.
func (c *Client) send(ctx context.Context, tx *solana.Transaction) error {
	return c.submit(ctx, tx, true)
}

// sendNoWait is send without waiting for confirmation.
func (c *Client) sendNoWait(ctx context.Context, tx *solana.Transaction) error {
	return c.submit(ctx, tx, false)
}

func (c *Client) submit(ctx context.Context, tx *solana.Transaction, confirm bool) error {
	if c.Config.DryRun {
		result, err := c.Chain.Simulate(ctx, tx)
		if err != nil {
			return err
		}
		c.printf("Simulate result: %s", result)
		return nil
	}
	var (
		sig solana.Signature
		err error
	)
	if confirm {
		sig, err = c.Chain.SendAndConfirm(ctx, tx)
	} else {
		sig, err = c.Chain.Send(ctx, tx)
	}
	if err != nil {
		return err
	}
	c.printf("Signature: %s", sig)
	return nil
}

// newStakeAccount appends the creation of a fresh, uninitialized stake account funded by the fee
// payer and returns its keypair, which must sign.
func (c *Client) newStakeAccount(instructions *[]solana.Instruction, lamports uint64) solana.PrivateKey {
	receiver := solana.NewWallet().PrivateKey
	c.printf("Creating account to receive stake %s", receiver.PublicKey())
	*instructions = append(*instructions, system.NewCreateAccountInstruction(
		lamports,
		sdk.StakeStateLen,
		solana.StakeProgramID,
		c.Config.FeePayer.PublicKey(),
		receiver.PublicKey(),
	).Build())
	return receiver
}

// addAssociatedTokenAccount returns the associated token account of owner for mint, appending its
// creation when it doesn't exist yet. Rent for a new account is added to rent.
func (c *Client) addAssociatedTokenAccount(
	ctx context.Context,
	mint,
	owner solana.PublicKey,
	instructions *[]solana.Instruction,
	rent *uint64,
) (solana.PublicKey, error) {
	address, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("unable to derive associated token account for %s: %w", owner, err)
	}
	exists, err := c.accountExists(ctx, address)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if exists {
		return address, nil
	}
	minBalance, err := c.Chain.MinimumBalanceForRentExemption(ctx, sdk.TokenAccountLen)
	if err != nil {
		return solana.PublicKey{}, err
	}
	misc.Debugf(c.Logger, "creating associated token account:%s for owner:%s", address, owner)
	c.printf("Creating associated token account %s to receive stake pool tokens of mint %s, owned by %s", address, mint, owner)
	*instructions = append(*instructions,
		associatedtokenaccount.NewCreateInstruction(c.Config.FeePayer.PublicKey(), owner, mint).Build())
	*rent += minBalance
	return address, nil
}
