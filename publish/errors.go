package publish

import (
	"errors"
	"fmt"
)

// Sentinel errors - Configuration
var (
	ErrNoSignerAvailable = errors.New("no signer available")
	ErrUnknownContract   = errors.New("unknown contract")
)

// Sentinel errors - Network
var (
	ErrSubmissionRejected = errors.New("submission rejected")
	ErrConfirmationFailed = errors.New("confirmation failed")
)

// DeployError wraps a deployment failure with the contract and network it
// was attempted on.
type DeployError struct {
	Contract string
	Network  string
	Err      error
}

// Error implements the error interface.
func (e *DeployError) Error() string {
	if e.Network == "" {
		return fmt.Sprintf("deploy %s: %v", e.Contract, e.Err)
	}
	return fmt.Sprintf("deploy %s on %s: %v", e.Contract, e.Network, e.Err)
}

// Unwrap implements the errors.Unwrap interface for error chaining.
func (e *DeployError) Unwrap() error {
	return e.Err
}

// WrapDeployError returns nil if err is nil.
func WrapDeployError(contract, network string, err error) error {
	if err == nil {
		return nil
	}
	return &DeployError{
		Contract: contract,
		Network:  network,
		Err:      err,
	}
}

func rejected(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSubmissionRejected, op, err)
}

func unconfirmed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfirmationFailed, fmt.Sprintf(format, args...))
}
