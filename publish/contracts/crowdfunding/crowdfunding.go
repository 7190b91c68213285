package crowdfunding

const (
	name            = "CrowdfundingWithReferral"
	solidityVersion = "0.8.18"
	evmFork         = "paris"
	optimizerRuns   = 200
)

var aliases = []string{"crowdsale", "crowdsaledbtt", "crowdfunding"}

func Name() string            { return name }
func SolidityVersion() string { return solidityVersion }
func EVMFork() string         { return evmFork }
func OptimizerRuns() int      { return optimizerRuns }
func Aliases() []string       { return append([]string(nil), aliases...) }
