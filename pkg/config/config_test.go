//go:build unit || !integration

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(KeyPrivateKey, "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	t.Setenv(KeyTokenAddress, "0x1111111111111111111111111111111111111111")
	t.Setenv(KeyContractAddress, "0x2222222222222222222222222222222222222222")
	t.Setenv(KeyGreedyMode, "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultRPCEndpoint, cfg.RPCEndpoint)
	require.Equal(t, DefaultVerifierImage, cfg.VerifierImage)
	require.True(t, cfg.Greedy)
}

func TestValidateRejectsMissingKeyMaterial(t *testing.T) {
	cfg := ApodeixisConfig{
		TokenAddress:    "0x1111111111111111111111111111111111111111",
		ContractAddress: "0x2222222222222222222222222222222222222222",
	}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), KeyPrivateKey)
}

func TestValidateRejectsMissingContracts(t *testing.T) {
	cfg := ApodeixisConfig{PrivateKey: "ab"}
	require.Error(t, cfg.Validate())

	cfg.TokenAddress = "0x1111111111111111111111111111111111111111"
	require.Error(t, cfg.Validate())

	cfg.ContractAddress = "0x2222222222222222222222222222222222222222"
	require.NoError(t, cfg.Validate())
}
