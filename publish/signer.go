package publish

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// NetworkContext identifies the chain, RPC endpoint and signing keys active
// for one run. It is built by the configuration layer and never mutated.
type NetworkContext struct {
	Name   string
	RPCURL string
	// ChainID is the expected chain. Zero takes whatever the node reports.
	ChainID int64

	// GasPrice selects legacy transactions. GasFeeCap and GasTipCap select
	// EIP-1559 transactions. With neither set the node's suggestion is used.
	GasPrice  *big.Int
	GasFeeCap *big.Int
	GasTipCap *big.Int

	// Accounts holds hex-encoded private keys, first one wins.
	Accounts []string
}

// Signer authorizes transactions for a single address.
type Signer interface {
	Address() common.Address
	ChainID() *big.Int
	// SignTransaction signs for chainID, or for the signer's own chain when
	// chainID is nil or zero.
	SignTransaction(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// LocalSigner signs with an in-memory private key.
type LocalSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
}

// NewLocalSigner creates a LocalSigner from a hex-encoded private key, with or
// without the "0x" prefix.
func NewLocalSigner(hexKey string, chainID int64) (*LocalSigner, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &LocalSigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    big.NewInt(chainID),
	}, nil
}

func (s *LocalSigner) Address() common.Address {
	return s.address
}

func (s *LocalSigner) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

func (s *LocalSigner) SignTransaction(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if chainID == nil || chainID.Sign() == 0 {
		chainID = s.chainID
	}
	if chainID.Sign() <= 0 {
		return nil, errors.New("sign tx: chain id unknown")
	}
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	return signedTx, nil
}

var _ Signer = (*LocalSigner)(nil)

// ResolveSigner returns the first usable account of the network. Blank
// entries are skipped, matching an unset PRIVATE_KEY.
func ResolveSigner(nc NetworkContext) (Signer, error) {
	for _, account := range nc.Accounts {
		if strings.TrimSpace(account) == "" {
			continue
		}
		signer, err := NewLocalSigner(account, nc.ChainID)
		if err != nil {
			return nil, fmt.Errorf("%w: network %s: %w", ErrNoSignerAvailable, nc.Name, err)
		}
		return signer, nil
	}
	return nil, fmt.Errorf("%w: network %s has no configured accounts", ErrNoSignerAvailable, nc.Name)
}
