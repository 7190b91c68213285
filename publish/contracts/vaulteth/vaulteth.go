package vaulteth

const (
	name            = "VaultETH"
	solidityVersion = "0.8.18"
	evmFork         = "paris"
	optimizerRuns   = 200
)

var aliases = []string{"vault"}

func Name() string            { return name }
func SolidityVersion() string { return solidityVersion }
func EVMFork() string         { return evmFork }
func OptimizerRuns() int      { return optimizerRuns }
func Aliases() []string       { return append([]string(nil), aliases...) }
