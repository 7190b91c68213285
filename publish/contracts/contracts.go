// Package contracts lists the deployable contracts of this project and the
// compiler settings they are built with.
package contracts

import (
	"strings"

	"github.com/Frank-Fourier/DBTT-contracts/publish/contracts/crowdfunding"
	"github.com/Frank-Fourier/DBTT-contracts/publish/contracts/dbtt"
	"github.com/Frank-Fourier/DBTT-contracts/publish/contracts/vaulteth"
)

type Contract struct {
	Name            string
	Aliases         []string
	SolidityVersion string
	EVMFork         string
	OptimizerRuns   int
}

var catalog = []Contract{
	{dbtt.Name(), dbtt.Aliases(), dbtt.SolidityVersion(), dbtt.EVMFork(), dbtt.OptimizerRuns()},
	{vaulteth.Name(), vaulteth.Aliases(), vaulteth.SolidityVersion(), vaulteth.EVMFork(), vaulteth.OptimizerRuns()},
	{crowdfunding.Name(), crowdfunding.Aliases(), crowdfunding.SolidityVersion(), crowdfunding.EVMFork(), crowdfunding.OptimizerRuns()},
}

func All() []Contract {
	out := make([]Contract, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup matches a contract by name or alias, ignoring case.
func Lookup(name string) (Contract, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range catalog {
		if strings.ToLower(c.Name) == key {
			return c, true
		}
		for _, alias := range c.Aliases {
			if alias == key {
				return c, true
			}
		}
	}
	return Contract{}, false
}

// Canonical returns the artifact name for name. Names outside the catalog
// are returned trimmed but otherwise unchanged.
func Canonical(name string) string {
	if c, ok := Lookup(name); ok {
		return c.Name
	}
	return strings.TrimSpace(name)
}
