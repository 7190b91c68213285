package publish

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lmittmann/w3"
	"github.com/lmittmann/w3/module/eth"
	"github.com/lmittmann/w3/w3types"
)

// Backend is the subset of an Ethereum node the deployer talks to. The method
// set matches go-ethereum's ethclient so simulated backends plug in directly.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Dialer opens a Backend for an RPC URL.
type Dialer func(ctx context.Context, rpcURL string) (Backend, error)

// Client is a Backend over a w3 JSON-RPC client.
type Client struct {
	client *w3.Client
}

func Dial(_ context.Context, rpcURL string) (Backend, error) {
	client, err := w3.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var chainID uint64
	if err := c.client.CallCtx(ctx, eth.ChainID().Returns(&chainID)); err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	return new(big.Int).SetUint64(chainID), nil
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	var balance *big.Int
	if err := c.client.CallCtx(ctx, eth.Balance(account, blockNumber).Returns(&balance)); err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func (c *Client) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	var nonce uint64
	if err := c.client.CallCtx(ctx, eth.Nonce(account, blockNumber).Returns(&nonce)); err != nil {
		return 0, fmt.Errorf("get nonce: %w", err)
	}
	return nonce, nil
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var gasPrice *big.Int
	if err := c.client.CallCtx(ctx, eth.GasPrice().Returns(&gasPrice)); err != nil {
		return nil, fmt.Errorf("get gas price: %w", err)
	}
	return gasPrice, nil
}

func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	call := eth.EstimateGas(&w3types.Message{
		From:      msg.From,
		To:        msg.To,
		Gas:       msg.Gas,
		GasPrice:  msg.GasPrice,
		GasFeeCap: msg.GasFeeCap,
		GasTipCap: msg.GasTipCap,
		Value:     msg.Value,
		Input:     msg.Data,
	}, nil)
	if err := c.client.CallCtx(ctx, call.Returns(&gas)); err != nil {
		return 0, fmt.Errorf("estimate gas: %w", err)
	}
	return gas, nil
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	var txHash common.Hash
	if err := c.client.CallCtx(ctx, eth.SendTx(tx).Returns(&txHash)); err != nil {
		return fmt.Errorf("send tx: %w", err)
	}
	return nil
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	if err := c.client.CallCtx(ctx, eth.TxReceipt(txHash).Returns(&receipt)); err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (c *Client) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	var code []byte
	if err := c.client.CallCtx(ctx, eth.Code(account, blockNumber).Returns(&code)); err != nil {
		return nil, fmt.Errorf("get code: %w", err)
	}
	return code, nil
}

var _ Backend = (*Client)(nil)
