package publish

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	// Creation code returning a single STOP byte as runtime code.
	stopBytecode = "0x6001600c60003960016000f300"
	// Creation code that reverts immediately.
	revertBytecode = "0x60006000fd"

	simulatedChainID = 1337
)

var oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// MockResolver is a mock implementation of FactoryResolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(name string, signer Signer) (*Factory, error) {
	args := m.Called(name, signer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Factory), args.Error(1)
}

// minedBackend seals a block after every accepted transaction.
type minedBackend struct {
	simulated.Client
	sim  *simulated.Backend
	sent atomic.Int32
}

func (m *minedBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := m.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	m.sent.Add(1)
	m.sim.Commit()
	return nil
}

func newKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, hex.EncodeToString(crypto.FromECDSA(key))
}

// newSimulated starts a simulated chain where funded holds 10 ether.
func newSimulated(t *testing.T, funded ...*ecdsa.PrivateKey) *simulated.Backend {
	t.Helper()
	alloc := types.GenesisAlloc{}
	for _, key := range funded {
		alloc[crypto.PubkeyToAddress(key.PublicKey)] = types.Account{
			Balance: new(big.Int).Mul(big.NewInt(10), oneEther),
		}
	}
	sim := simulated.NewBackend(alloc)
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

func newMined(sim *simulated.Backend) *minedBackend {
	return &minedBackend{Client: sim.Client(), sim: sim}
}

func writeArtifact(t *testing.T, dir, source, name, bytecode, abiJSON string) string {
	t.Helper()
	if abiJSON == "" {
		abiJSON = "[]"
	}
	blob, err := json.Marshal(map[string]any{
		"_format":      "hh-sol-artifact-1",
		"contractName": name,
		"sourceName":   source,
		"abi":          json.RawMessage(abiJSON),
		"bytecode":     bytecode,
	})
	require.NoError(t, err)

	path := filepath.Join(dir, source, name+".json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, blob, 0o644))
	return path
}

func testNetwork(hexKey string) NetworkContext {
	return NetworkContext{
		Name:     "simulated",
		RPCURL:   "simulated://",
		ChainID:  simulatedChainID,
		GasPrice: big.NewInt(20_000_000_000),
		Accounts: []string{hexKey},
	}
}

func testFactory(t *testing.T, hexKey, bytecode string) *Factory {
	t.Helper()
	signer, err := NewLocalSigner(hexKey, simulatedChainID)
	require.NoError(t, err)
	f, err := NewFactory(&Artifact{ContractName: "VaultETH", Bytecode: bytecode}, signer)
	require.NoError(t, err)
	return f
}
