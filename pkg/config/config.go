package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variable keys. These match what operators already export for
// the node, so no prefix is applied.
const (
	KeyRPCEndpoint      = "RPC_URL"
	KeyPrivateKey       = "PRIVATE_KEY"
	KeyTokenAddress     = "TOKEN_ADDRESS"
	KeyContractAddress  = "CONTRACT_ADDRESS"
	KeyVerifierImage    = "DOCKER_IMAGE"
	KeyPreferredGateway = "PINATA_GATEWAY"
	KeyDataDir          = "DATA_DIR"
	KeyGreedyMode       = "GREEDY_MODE"
)

const (
	DefaultRPCEndpoint   = "http://127.0.0.1:8545"
	DefaultVerifierImage = "apodeixis-validator:v0.12"
)

// ApodeixisConfig holds everything supplied at process start. None of these
// are reconfigurable at runtime.
type ApodeixisConfig struct {
	// RPCEndpoint is the ledger JSON-RPC endpoint.
	RPCEndpoint string
	// PrivateKey is the hex-encoded signing key for the validator account.
	PrivateKey string
	// TokenAddress is the APDX token contract address.
	TokenAddress string
	// ContractAddress is the main task contract address.
	ContractAddress string
	// VerifierImage is the sandbox image run against fetched artifacts.
	VerifierImage string
	// PreferredGateway is an optional gateway host tried before the public ones.
	PreferredGateway string
	// DataDir is where fetched artifacts are written.
	DataDir string
	// Greedy controls whether the node proactively finalizes revealed tasks.
	Greedy bool
}

// Load reads the node configuration from the environment, honouring a .env
// file in the working directory if one exists.
func Load() (ApodeixisConfig, error) {
	// missing .env is fine, the environment may be set directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault(KeyRPCEndpoint, DefaultRPCEndpoint)
	v.SetDefault(KeyVerifierImage, DefaultVerifierImage)
	v.SetDefault(KeyDataDir, ".")

	for _, key := range []string{
		KeyRPCEndpoint,
		KeyPrivateKey,
		KeyTokenAddress,
		KeyContractAddress,
		KeyVerifierImage,
		KeyPreferredGateway,
		KeyDataDir,
		KeyGreedyMode,
	} {
		if err := v.BindEnv(key); err != nil {
			return ApodeixisConfig{}, err
		}
	}

	cfg := ApodeixisConfig{
		RPCEndpoint:      v.GetString(KeyRPCEndpoint),
		PrivateKey:       v.GetString(KeyPrivateKey),
		TokenAddress:     v.GetString(KeyTokenAddress),
		ContractAddress:  v.GetString(KeyContractAddress),
		VerifierImage:    v.GetString(KeyVerifierImage),
		PreferredGateway: v.GetString(KeyPreferredGateway),
		DataDir:          v.GetString(KeyDataDir),
		Greedy:           v.GetBool(KeyGreedyMode),
	}

	return cfg, cfg.Validate()
}

// Validate checks the fields the node cannot run without.
func (c ApodeixisConfig) Validate() error {
	if c.PrivateKey == "" {
		return fmt.Errorf("config: %s is required", KeyPrivateKey)
	}
	if c.TokenAddress == "" {
		return fmt.Errorf("config: %s is required", KeyTokenAddress)
	}
	if c.ContractAddress == "" {
		return fmt.Errorf("config: %s is required", KeyContractAddress)
	}
	return nil
}
