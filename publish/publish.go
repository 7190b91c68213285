package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	DefaultPollInterval   = 2 * time.Second
	DefaultConfirmTimeout = 10 * time.Minute
)

type (
	DeployResult struct {
		TxHash          common.Hash
		ContractAddress common.Address
		BlockNumber     *big.Int
		GasUsed         uint64
	}

	// DeployerOptions tune a single deployment. Zero values fall back to the
	// network's own pricing and estimates.
	DeployerOptions struct {
		GasPrice  *big.Int
		GasFeeCap *big.Int
		GasTipCap *big.Int
		GasLimit  uint64
		// ChainID, when non-zero, must match the node before anything is sent.
		ChainID int64

		PollInterval time.Duration
		// ConfirmTimeout bounds WaitDeployed. Zero waits until ctx ends.
		ConfirmTimeout time.Duration
	}

	Deployer struct {
		backend Backend
		opts    DeployerOptions
		logger  *slog.Logger
	}
)

func NewDeployer(backend Backend, opts DeployerOptions, logger *slog.Logger) *Deployer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{
		backend: backend,
		opts:    opts,
		logger:  logger,
	}
}

// OptionsFor carries the network's pricing into deployer options.
func OptionsFor(nc NetworkContext) DeployerOptions {
	return DeployerOptions{
		GasPrice:       nc.GasPrice,
		GasFeeCap:      nc.GasFeeCap,
		GasTipCap:      nc.GasTipCap,
		ChainID:        nc.ChainID,
		PollInterval:   DefaultPollInterval,
		ConfirmTimeout: DefaultConfirmTimeout,
	}
}

// Deploy submits the factory's creation transaction and blocks until the
// contract code is live.
func (d *Deployer) Deploy(ctx context.Context, f *Factory) (DeployResult, error) {
	result, err := d.Submit(ctx, f)
	if err != nil {
		return DeployResult{}, err
	}
	return d.WaitDeployed(ctx, result)
}

// Submit signs and sends the creation transaction. Every failure is an
// ErrSubmissionRejected; nothing has reached the network when it returns
// an error.
func (d *Deployer) Submit(ctx context.Context, f *Factory) (DeployResult, error) {
	if err := ctx.Err(); err != nil {
		return DeployResult{}, rejected("not sent", err)
	}
	from := f.Signer().Address()

	chainID, err := d.backend.ChainID(ctx)
	if err != nil {
		return DeployResult{}, rejected("chain id", err)
	}
	if d.opts.ChainID != 0 && chainID.Cmp(big.NewInt(d.opts.ChainID)) != 0 {
		return DeployResult{}, rejected("chain id", fmt.Errorf("node reports %s, want %d", chainID, d.opts.ChainID))
	}

	if balance, err := d.backend.BalanceAt(ctx, from, nil); err != nil {
		d.logger.Warn("balance lookup failed", slog.String("account", from.Hex()), slog.String("error", err.Error()))
	} else {
		d.logger.Info("deployer account", slog.String("account", from.Hex()), slog.String("balance_wei", balance.String()))
	}

	nonce, err := d.backend.NonceAt(ctx, from, nil)
	if err != nil {
		return DeployResult{}, rejected("get nonce", err)
	}

	params := TxParams{Nonce: nonce, ChainID: chainID}
	switch {
	case d.opts.GasFeeCap != nil:
		params.GasFeeCap = d.opts.GasFeeCap
		params.GasTipCap = d.opts.GasTipCap
		if params.GasTipCap == nil {
			params.GasTipCap = new(big.Int)
		}
	case d.opts.GasPrice != nil:
		params.GasPrice = d.opts.GasPrice
	default:
		params.GasPrice, err = d.backend.SuggestGasPrice(ctx)
		if err != nil {
			return DeployResult{}, rejected("gas price", err)
		}
	}

	params.Gas = d.opts.GasLimit
	if params.Gas == 0 {
		params.Gas, err = d.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:      from,
			GasPrice:  params.GasPrice,
			GasFeeCap: params.GasFeeCap,
			GasTipCap: params.GasTipCap,
			Data:      f.Bytecode(),
		})
		if err != nil {
			return DeployResult{}, rejected("estimate gas", err)
		}
	}

	signedTx, err := f.NewDeployTx(ctx, params)
	if err != nil {
		return DeployResult{}, rejected("sign", err)
	}
	if err := d.backend.SendTransaction(ctx, signedTx); err != nil {
		return DeployResult{}, rejected("send", err)
	}

	contractAddr := crypto.CreateAddress(from, nonce)
	d.logger.Info("deployment submitted",
		slog.String("tx_hash", signedTx.Hash().Hex()),
		slog.String("address", contractAddr.Hex()),
		slog.Uint64("nonce", nonce),
		slog.Uint64("gas", params.Gas),
	)

	return DeployResult{
		TxHash:          signedTx.Hash(),
		ContractAddress: contractAddr,
	}, nil
}

// WaitDeployed blocks until the transaction is mined successfully and code is
// observable at the contract address. Any other outcome is an
// ErrConfirmationFailed.
func (d *Deployer) WaitDeployed(ctx context.Context, result DeployResult) (DeployResult, error) {
	if d.opts.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.ConfirmTimeout)
		defer cancel()
	}

	receipt, err := d.WaitForReceipt(ctx, result.TxHash)
	if err != nil {
		return DeployResult{}, fmt.Errorf("%w: tx %s: %w", ErrConfirmationFailed, result.TxHash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return DeployResult{}, unconfirmed("tx %s reverted in block %s", result.TxHash.Hex(), receipt.BlockNumber)
	}
	if receipt.ContractAddress != (common.Address{}) {
		result.ContractAddress = receipt.ContractAddress
	}

	code, err := d.backend.CodeAt(ctx, result.ContractAddress, nil)
	if err != nil {
		return DeployResult{}, fmt.Errorf("%w: code at %s: %w", ErrConfirmationFailed, result.ContractAddress.Hex(), err)
	}
	if len(code) == 0 {
		return DeployResult{}, unconfirmed("no code at %s after tx %s", result.ContractAddress.Hex(), result.TxHash.Hex())
	}

	result.BlockNumber = receipt.BlockNumber
	result.GasUsed = receipt.GasUsed
	return result, nil
}

// WaitForReceipt polls until the receipt is available or ctx ends. Lookup
// errors count as "not yet mined".
func (d *Deployer) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(d.opts.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := d.backend.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			d.logger.Debug("receipt lookup failed", slog.String("tx_hash", txHash.Hex()), slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
