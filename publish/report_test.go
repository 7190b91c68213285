package publish

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Report(t *testing.T) {
	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	hash := common.HexToHash("0x01")

	t.Run("success line", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := Reporter{Out: &out, Err: &errOut}.Report(DeploymentResult{ContractName: "DontBuyThisToken", Address: addr})

		assert.Equal(t, ExitOK, code)
		assert.Equal(t, "DontBuyThisToken deployed to: 0x5FbDB2315678afecb367f032d93F642f64180aa3\n", out.String())
		assert.Empty(t, errOut.String())
	})

	t.Run("json report", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := Reporter{Out: &out, Err: &errOut, JSON: true}.Report(DeploymentResult{
			ContractName: "VaultETH",
			Network:      "bscTestnet",
			Address:      addr,
			TxHash:       hash,
		})
		require.Equal(t, ExitOK, code)

		var got map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, map[string]string{
			"contract": "VaultETH",
			"network":  "bscTestnet",
			"address":  addr.Hex(),
			"tx_hash":  hash.Hex(),
		}, got)
	})

	t.Run("failure", func(t *testing.T) {
		var out, errOut bytes.Buffer
		res := DeploymentResult{
			ContractName: "VaultETH",
			Err:          WrapDeployError("VaultETH", "goerli", errors.Join(ErrConfirmationFailed, errors.New("tx reverted"))),
		}
		code := Reporter{Out: &out, Err: &errOut, JSON: true}.Report(res)

		assert.Equal(t, ExitFailure, code)
		assert.Empty(t, out.String())
		assert.Contains(t, errOut.String(), "error: deploy VaultETH on goerli: confirmation failed")
	})
}
