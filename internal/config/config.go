// Package config loads network and deployment settings for the deployer.
package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Frank-Fourier/DBTT-contracts/publish"
)

// DefaultNetwork is used when no network is selected.
const DefaultNetwork = "hardhat"

// Hardhat/Anvil development account #0 (DO NOT use outside local networks!)
const devPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// Config holds all configuration for the deployer.
type Config struct {
	Network    string                   `mapstructure:"network"`
	Networks   map[string]NetworkConfig `mapstructure:"networks"`
	Paths      PathsConfig              `mapstructure:"paths"`
	Deploy     DeployConfig             `mapstructure:"deploy"`
	PrivateKey string                   `mapstructure:"private_key"`
	InfuraKey  string                   `mapstructure:"infura_key"`
}

// NetworkConfig describes one chain. GasPrice and fee caps are in wei.
type NetworkConfig struct {
	URL       string   `mapstructure:"url"`
	ChainID   int64    `mapstructure:"chain_id"`
	GasPrice  int64    `mapstructure:"gas_price"`
	GasFeeCap int64    `mapstructure:"gas_fee_cap"`
	GasTipCap int64    `mapstructure:"gas_tip_cap"`
	Accounts  []string `mapstructure:"accounts"`
}

// PathsConfig mirrors the Hardhat project layout.
type PathsConfig struct {
	Artifacts string `mapstructure:"artifacts"`
}

// DeployConfig holds per-deployment tuning.
type DeployConfig struct {
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	GasLimit       uint64        `mapstructure:"gas_limit"`
}

// Load reads configuration from an optional config file, an optional .env
// file and the environment. Empty paths search the default locations.
func Load(configFile, envFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("deploy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.BindEnv("private_key", "PRIVATE_KEY")
	v.BindEnv("infura_key", "INFURA_KEY")
	v.BindEnv("network", "NETWORK", "HARDHAT_NETWORK")

	if err := loadEnvFile(v, envFile); err != nil {
		return nil, err
	}

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	return &cfg, nil
}

// loadEnvFile applies KEY=VALUE pairs from a dotenv file for every known
// setting. Variables already present in the process environment win.
func loadEnvFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file: %w", err)
	}

	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read env file: %w", err)
	}
	for _, key := range v.AllKeys() {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if _, ok := os.LookupEnv(envKey); ok {
			continue
		}
		if ev.IsSet(strings.ToLower(envKey)) {
			v.Set(key, ev.Get(strings.ToLower(envKey)))
		}
	}
	return nil
}

// setDefaults mirrors the networks of the original Hardhat project.
func setDefaults(v *viper.Viper) {
	v.SetDefault("network", DefaultNetwork)
	v.SetDefault("private_key", "")
	v.SetDefault("infura_key", "")

	v.SetDefault("paths.artifacts", "./artifacts")

	v.SetDefault("deploy.confirm_timeout", publish.DefaultConfirmTimeout.String())
	v.SetDefault("deploy.poll_interval", publish.DefaultPollInterval.String())
	v.SetDefault("deploy.gas_limit", 0)

	v.SetDefault("networks.hardhat.url", "http://127.0.0.1:8545")
	v.SetDefault("networks.hardhat.chain_id", 31337)
	v.SetDefault("networks.hardhat.accounts", []string{devPrivateKey})

	v.SetDefault("networks.bsctestnet.url", "https://data-seed-prebsc-1-s1.binance.org:8545/")
	v.SetDefault("networks.bsctestnet.chain_id", 97)
	v.SetDefault("networks.bsctestnet.gas_price", 20_000_000_000)

	v.SetDefault("networks.bscmainnet.url", "https://bsc-dataseed.binance.org/")
	v.SetDefault("networks.bscmainnet.chain_id", 56)
	v.SetDefault("networks.bscmainnet.gas_price", 20_000_000_000)

	v.SetDefault("networks.goerli.url", "https://goerli.infura.io/v3/b165ca4a2a7f4583bebae070d32e8f43")
	v.SetDefault("networks.goerli.chain_id", 5)
	v.SetDefault("networks.goerli.gas_price", 20_000_000_000)

	v.SetDefault("networks.ethmainnet.url", "https://mainnet.infura.io/v3/{infura_key}")
	v.SetDefault("networks.ethmainnet.chain_id", 1)
	v.SetDefault("networks.ethmainnet.gas_price", 100_000_000_000)
}

func (c *Config) normalize() {
	networks := make(map[string]NetworkConfig, len(c.Networks))
	for name, n := range c.Networks {
		n.URL = strings.ReplaceAll(n.URL, "{infura_key}", c.InfuraKey)
		if len(n.Accounts) == 0 {
			n.Accounts = []string{c.PrivateKey}
		}
		networks[strings.ToLower(name)] = n
	}
	c.Networks = networks
	c.Network = strings.TrimSpace(c.Network)
	if c.Network == "" {
		c.Network = DefaultNetwork
	}
}

// NetworkNames returns the configured network names, sorted.
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NetworkContext builds the context for the named network. An empty name
// selects the configured default.
func (c *Config) NetworkContext(name string) (publish.NetworkContext, error) {
	if strings.TrimSpace(name) == "" {
		name = c.Network
	}
	n, ok := c.Networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return publish.NetworkContext{}, fmt.Errorf("unknown network %q (configured: %s)", name, strings.Join(c.NetworkNames(), ", "))
	}
	if n.URL == "" {
		return publish.NetworkContext{}, fmt.Errorf("network %q has no url", name)
	}

	nc := publish.NetworkContext{
		Name:     name,
		RPCURL:   n.URL,
		ChainID:  n.ChainID,
		Accounts: append([]string(nil), n.Accounts...),
	}
	if n.GasPrice > 0 {
		nc.GasPrice = big.NewInt(n.GasPrice)
	}
	if n.GasFeeCap > 0 {
		nc.GasFeeCap = big.NewInt(n.GasFeeCap)
		nc.GasTipCap = big.NewInt(n.GasTipCap)
	}
	return nc, nil
}

// DeployerOptions combines the network's pricing with the deploy settings.
func (c *Config) DeployerOptions(nc publish.NetworkContext) publish.DeployerOptions {
	opts := publish.OptionsFor(nc)
	opts.ConfirmTimeout = c.Deploy.ConfirmTimeout
	if c.Deploy.PollInterval > 0 {
		opts.PollInterval = c.Deploy.PollInterval
	}
	opts.GasLimit = c.Deploy.GasLimit
	return opts
}
