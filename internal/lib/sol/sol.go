package sol

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/ssgreg/repeat"

	"github.com/aoikurokawa/jito-stake-pool-cli/internal/lib/misc"
)

// DefaultConfirmTimeout bounds how long SendAndConfirm waits for a transaction to reach the client commitment.
const DefaultConfirmTimeout = 90 * time.Second

// Chain is the subset of the Solana RPC api the stake pool commands need.
type Chain interface {
	AccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)
	Balance(ctx context.Context, address solana.PublicKey) (uint64, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	FeeForMessage(ctx context.Context, message *solana.Message) (uint64, error)
	MinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	ProgramAccounts(ctx context.Context, programID solana.PublicKey, filters ...rpc.RPCFilter) ([]ProgramAccount, error)
	EpochInfo(ctx context.Context) (EpochInfo, error)
	Simulate(ctx context.Context, tx *solana.Transaction) (*SimulateResult, error)
	Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

type ProgramAccount struct {
	Address solana.PublicKey
	Data    []byte
}

type EpochInfo struct {
	Epoch        uint64
	SlotIndex    uint64
	SlotsInEpoch uint64
	AbsoluteSlot uint64
}

// SlotsRemaining is how many slots are left before the next epoch starts.
func (e EpochInfo) SlotsRemaining() uint64 {
	if e.SlotIndex >= e.SlotsInEpoch {
		return 0
	}
	return e.SlotsInEpoch - e.SlotIndex
}

type SimulateResult struct {
	Err           any      `json:"err"`
	Logs          []string `json:"logs"`
	UnitsConsumed *uint64  `json:"unitsConsumed,omitempty"`
}

func (s SimulateResult) String() string {
	var units string
	if s.UnitsConsumed != nil {
		units = fmt.Sprintf(", units consumed: %d", *s.UnitsConsumed)
	}
	return fmt.Sprintf("err: %v%s, logs: [%s]", s.Err, units, strings.Join(s.Logs, ", "))
}

// Client implements Chain over a solana-go rpc client, reading and confirming at the commitment of
// its NetworkConfig.
type Client struct {
	rpc            *rpc.Client
	logger         *slog.Logger
	metrics        *Metrics
	commitment     rpc.CommitmentType
	ConfirmTimeout time.Duration
}

func NewClient(logger *slog.Logger, cfg NetworkConfig, metrics *Metrics) *Client {
	var client *rpc.Client
	if len(cfg.Headers) > 0 {
		client = rpc.NewWithHeaders(cfg.URL, cfg.Headers)
	} else {
		client = rpc.New(cfg.URL)
	}
	commitment := cfg.Commitment
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	misc.Debugf(logger, "using rpc endpoint:%s, commitment:%s", cfg.URL, commitment)
	return &Client{
		rpc:            client,
		logger:         logger,
		metrics:        metrics,
		commitment:     commitment,
		ConfirmTimeout: DefaultConfirmTimeout,
	}
}

func (c *Client) AccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	c.metrics.rpcCall("getAccountInfo")
	resp, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (resp == nil || resp.Value == nil)) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", address, err)
	}
	return resp.Value.Data.GetBinary(), nil
}

func (c *Client) Balance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	c.metrics.rpcCall("getBalance")
	resp, err := c.rpc.GetBalance(ctx, address, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch balance of %s: %w", address, err)
	}
	return resp.Value, nil
}

// LatestBlockhash retries a few times with backoff since every command needs one to proceed.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var blockhash solana.Hash
	err := repeat.Repeat(
		repeat.Fn(func() error {
			c.metrics.rpcCall("getLatestBlockhash")
			resp, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
			if err != nil {
				return repeat.HintTemporary(err)
			}
			blockhash = resp.Value.Blockhash
			return nil
		}),
		repeat.StopOnSuccess(),
		repeat.LimitMaxTries(4),
		repeat.FnOnError(func(err error) error {
			misc.Debugf(c.logger, "retrying getLatestBlockhash call, error:%s", err.Error())
			return err
		}),
		repeat.WithDelay(
			repeat.SetContext(ctx),
			repeat.ExponentialBackoff(500*time.Millisecond).Set(),
		),
	)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return blockhash, nil
}

func (c *Client) FeeForMessage(ctx context.Context, message *solana.Message) (uint64, error) {
	msgBytes, err := message.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("failed to serialize message: %w", err)
	}
	c.metrics.rpcCall("getFeeForMessage")
	resp, err := c.rpc.GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(msgBytes), c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get fee for message: %w", err)
	}
	if resp.Value == nil {
		return 0, errors.New("fee for message unavailable, blockhash may have expired")
	}
	return *resp.Value, nil
}

func (c *Client) MinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error) {
	c.metrics.rpcCall("getMinimumBalanceForRentExemption")
	lamports, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, dataLen, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get rent exemption for %d bytes: %w", dataLen, err)
	}
	return lamports, nil
}

func (c *Client) ProgramAccounts(ctx context.Context, programID solana.PublicKey, filters ...rpc.RPCFilter) ([]ProgramAccount, error) {
	c.metrics.rpcCall("getProgramAccounts")
	resp, err := c.rpc.GetProgramAccountsWithOpts(ctx, programID, &rpc.GetProgramAccountsOpts{
		Commitment: c.commitment,
		Encoding:   solana.EncodingBase64,
		Filters:    filters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}
	accounts := make([]ProgramAccount, 0, len(resp))
	for _, item := range resp {
		if item == nil || item.Account == nil {
			continue
		}
		accounts = append(accounts, ProgramAccount{Address: item.Pubkey, Data: item.Account.Data.GetBinary()})
	}
	return accounts, nil
}

func (c *Client) EpochInfo(ctx context.Context) (EpochInfo, error) {
	c.metrics.rpcCall("getEpochInfo")
	resp, err := c.rpc.GetEpochInfo(ctx, c.commitment)
	if err != nil {
		return EpochInfo{}, fmt.Errorf("failed to get epoch info: %w", err)
	}
	return EpochInfo{
		Epoch:        resp.Epoch,
		SlotIndex:    resp.SlotIndex,
		SlotsInEpoch: resp.SlotsInEpoch,
		AbsoluteSlot: resp.AbsoluteSlot,
	}, nil
}

func (c *Client) Simulate(ctx context.Context, tx *solana.Transaction) (*SimulateResult, error) {
	c.metrics.rpcCall("simulateTransaction")
	resp, err := c.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to simulate transaction: %w", err)
	}
	c.metrics.transaction(ResultSimulated)
	if resp.Value == nil {
		return &SimulateResult{}, nil
	}
	return &SimulateResult{
		Err:           resp.Value.Err,
		Logs:          resp.Value.Logs,
		UnitsConsumed: resp.Value.UnitsConsumed,
	}, nil
}

func (c *Client) Send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	c.metrics.rpcCall("sendTransaction")
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		c.metrics.transaction(ResultFailed)
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	c.metrics.transaction(ResultSent)
	misc.Debugf(c.logger, "sent transaction:%s", sig)
	return sig, nil
}

func (c *Client) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.Send(ctx, tx)
	if err != nil {
		return sig, err
	}
	if err = c.waitForConfirmation(ctx, sig); err != nil {
		c.metrics.transaction(ResultFailed)
		return sig, err
	}
	c.metrics.transaction(ResultConfirmed)
	return sig, nil
}

var errNotConfirmed = errors.New("transaction not yet confirmed")

func (c *Client) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, c.ConfirmTimeout)
	defer cancel()

	err := repeat.Repeat(
		repeat.Fn(func() error {
			c.metrics.rpcCall("getSignatureStatuses")
			resp, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				return repeat.HintTemporary(err)
			}
			if resp == nil || len(resp.Value) == 0 || resp.Value[0] == nil {
				return repeat.HintTemporary(errNotConfirmed)
			}
			status := resp.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			if !reachedCommitment(status.ConfirmationStatus, c.commitment) {
				return repeat.HintTemporary(errNotConfirmed)
			}
			return nil
		}),
		repeat.StopOnSuccess(),
		// expiry of ctx ends the loop with the context error
		repeat.WithDelay(
			repeat.SetContext(ctx),
			(&repeat.FullJitterBackoffBuilder{
				BaseDelay: 500 * time.Millisecond,
				MaxDelay:  4 * time.Second,
			}).Set(),
		),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("timed out waiting for confirmation of %s: %w", sig, ctx.Err())
		}
		return err
	}
	misc.Debugf(c.logger, "transaction:%s confirmed", sig)
	return nil
}

// reachedCommitment reports whether a signature status satisfies the commitment level.
func reachedCommitment(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return commitment == rpc.CommitmentProcessed
	}
	return false
}
