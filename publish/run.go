package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentResult is the single outcome of Run. Either Address is set and
// Err is nil, or Err is set and Address is zero.
type DeploymentResult struct {
	ContractName string
	Network      string
	Address      common.Address
	TxHash       common.Hash
	Err          error
}

func (r DeploymentResult) OK() bool {
	return r.Err == nil
}

// Environment is everything a deployment run depends on.
type Environment struct {
	Network   NetworkContext
	Artifacts FactoryResolver
	Dial      Dialer
	Options   DeployerOptions
	Logger    *slog.Logger
}

// Run resolves the signer and factory, then deploys. The RPC endpoint is only
// dialed once both resolutions have succeeded.
func Run(ctx context.Context, env Environment, contract string) DeploymentResult {
	logger := env.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("contract", contract), slog.String("network", env.Network.Name))

	fail := func(err error) DeploymentResult {
		return DeploymentResult{
			ContractName: contract,
			Network:      env.Network.Name,
			Err:          WrapDeployError(contract, env.Network.Name, err),
		}
	}

	signer, err := ResolveSigner(env.Network)
	if err != nil {
		return fail(err)
	}
	logger.Info("deploying contracts with the account", slog.String("account", signer.Address().Hex()))

	if env.Artifacts == nil {
		return fail(fmt.Errorf("%w: no artifact source configured", ErrUnknownContract))
	}
	factory, err := env.Artifacts.Resolve(contract, signer)
	if err != nil {
		return fail(err)
	}

	if err := ctx.Err(); err != nil {
		return fail(rejected("not sent", err))
	}
	dial := env.Dial
	if dial == nil {
		dial = Dial
	}
	backend, err := dial(ctx, env.Network.RPCURL)
	if err != nil {
		return fail(rejected("connect", err))
	}
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}

	deployer := NewDeployer(backend, env.Options, logger)
	deployed, err := deployer.Deploy(ctx, factory)
	if err != nil {
		return fail(err)
	}

	logger.Info("deployment confirmed",
		slog.String("address", deployed.ContractAddress.Hex()),
		slog.String("tx_hash", deployed.TxHash.Hex()),
		slog.Uint64("gas_used", deployed.GasUsed),
	)
	return DeploymentResult{
		ContractName: factory.Name(),
		Network:      env.Network.Name,
		Address:      deployed.ContractAddress,
		TxHash:       deployed.TxHash,
	}
}
