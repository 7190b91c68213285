package publish

import (
	"encoding/json"
	"fmt"
	"io"
)

const (
	ExitOK      = 0
	ExitFailure = 1
)

type report struct {
	Contract string `json:"contract"`
	Network  string `json:"network,omitempty"`
	Address  string `json:"address"`
	TxHash   string `json:"tx_hash"`
}

// Reporter turns a DeploymentResult into operator output and an exit code.
type Reporter struct {
	Out  io.Writer
	Err  io.Writer
	JSON bool
}

func (r Reporter) Report(res DeploymentResult) int {
	if res.Err != nil {
		fmt.Fprintf(r.Err, "error: %v\n", res.Err)
		return ExitFailure
	}

	if !r.JSON {
		fmt.Fprintf(r.Out, "%s deployed to: %s\n", res.ContractName, res.Address.Hex())
		return ExitOK
	}

	blob, err := json.MarshalIndent(report{
		Contract: res.ContractName,
		Network:  res.Network,
		Address:  res.Address.Hex(),
		TxHash:   res.TxHash.Hex(),
	}, "", "  ")
	if err != nil {
		fmt.Fprintf(r.Err, "error: %v\n", err)
		return ExitFailure
	}
	fmt.Fprintln(r.Out, string(blob))
	return ExitOK
}
