package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Artifact is a compiled contract as written by the Hardhat compiler task.
type Artifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// FactoryResolver binds a named contract to a signer.
type FactoryResolver interface {
	Resolve(name string, signer Signer) (*Factory, error)
}

// ArtifactStore resolves contracts from a Hardhat artifacts directory.
type ArtifactStore struct {
	root string
}

func NewArtifactStore(root string) *ArtifactStore {
	return &ArtifactStore{root: root}
}

func (s *ArtifactStore) Root() string {
	return s.root
}

// Resolve reads the artifact for name and returns a factory bound to signer.
// It never touches the network.
func (s *ArtifactStore) Resolve(name string, signer Signer) (*Factory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty contract name", ErrUnknownContract)
	}

	artifact, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	return NewFactory(artifact, signer)
}

// Load finds <name>.json anywhere below the artifacts root. Debug files and
// build-info are skipped.
func (s *ArtifactStore) Load(name string) (*Artifact, error) {
	var path string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name+".json" {
			path = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("scan artifacts %s: %w", s.root, err)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no artifact for %q in %s", ErrUnknownContract, name, s.root)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var artifact Artifact
	if err := json.Unmarshal(blob, &artifact); err != nil {
		return nil, fmt.Errorf("%w: decode artifact %s: %w", ErrUnknownContract, path, err)
	}
	if artifact.ContractName != "" && artifact.ContractName != name {
		return nil, fmt.Errorf("%w: artifact %s is for %q, not %q", ErrUnknownContract, path, artifact.ContractName, name)
	}
	if artifact.ContractName == "" {
		artifact.ContractName = name
	}
	return &artifact, nil
}

// Factory creates new instances of one contract on behalf of one signer.
type Factory struct {
	name     string
	abi      abi.ABI
	bytecode []byte
	signer   Signer
}

// NewFactory validates that the artifact is deployable without constructor
// arguments or library linking.
func NewFactory(artifact *Artifact, signer Signer) (*Factory, error) {
	name := artifact.ContractName
	code := strings.TrimSpace(artifact.Bytecode)
	if strings.Contains(code, "__$") {
		return nil, fmt.Errorf("%w: %s needs library linking", ErrUnknownContract, name)
	}
	bytecode, err := hexutil.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s bytecode: %w", ErrUnknownContract, name, err)
	}
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s has no bytecode (abstract or interface)", ErrUnknownContract, name)
	}

	parsed := abi.ABI{}
	if len(artifact.ABI) > 0 {
		parsed, err = abi.JSON(bytes.NewReader(artifact.ABI))
		if err != nil {
			return nil, fmt.Errorf("%w: %s abi: %w", ErrUnknownContract, name, err)
		}
	}
	if n := len(parsed.Constructor.Inputs); n > 0 {
		return nil, fmt.Errorf("%w: %s constructor takes %d arguments", ErrUnknownContract, name, n)
	}

	return &Factory{
		name:     name,
		abi:      parsed,
		bytecode: bytecode,
		signer:   signer,
	}, nil
}

func (f *Factory) Name() string {
	return f.name
}

func (f *Factory) ABI() abi.ABI {
	return f.abi
}

func (f *Factory) Bytecode() []byte {
	return bytes.Clone(f.bytecode)
}

func (f *Factory) Signer() Signer {
	return f.signer
}

// TxParams are the per-transaction values chosen by the network at
// submission time.
type TxParams struct {
	Nonce     uint64
	Gas       uint64
	ChainID   *big.Int
	GasPrice  *big.Int
	GasFeeCap *big.Int
	GasTipCap *big.Int
}

// NewDeployTx builds and signs the contract-creation transaction. A non-nil
// GasFeeCap selects an EIP-1559 transaction. A nil ChainID falls back to the
// signer's chain.
func (f *Factory) NewDeployTx(ctx context.Context, p TxParams) (*types.Transaction, error) {
	chainID := p.ChainID
	if chainID == nil {
		chainID = f.signer.ChainID()
	}
	var tx *types.Transaction
	if p.GasFeeCap != nil {
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     p.Nonce,
			GasFeeCap: p.GasFeeCap,
			GasTipCap: p.GasTipCap,
			Gas:       p.Gas,
			Data:      f.Bytecode(),
		})
	} else {
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    p.Nonce,
			GasPrice: p.GasPrice,
			Gas:      p.Gas,
			Data:     f.Bytecode(),
		})
	}
	return f.signer.SignTransaction(ctx, tx, chainID)
}
