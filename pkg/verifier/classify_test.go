//go:build unit || !integration

package verifier_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/apodeixis-project/apodeixis/pkg/verifier"
)

func TestClassifyCheatTakesPrecedenceOverCompilation(t *testing.T) {
	raw := "Status: FAILURE\nCHEAT DETECTED\nsome compiler noise"

	outcome := verifier.Classify(raw)
	require.Equal(t, verifier.OutcomeCheatDetected, outcome.Kind)
	require.Equal(t, verifier.CheatSentinelHash, outcome.ResultHash)
	require.NotEqual(t, verifier.CompilationSentinelHash, outcome.ResultHash)
}

func TestClassifyAxiomMarkerIsCheat(t *testing.T) {
	raw := "Status: FAILURE\nERROR_AXIOM_CHECK_FAILED"

	outcome := verifier.Classify(raw)
	require.Equal(t, verifier.OutcomeCheatDetected, outcome.Kind)
}

func TestClassifyFailureWithoutMarkersIsCompilationFailed(t *testing.T) {
	raw := "Status: FAILURE\nerror: unknown identifier 'norm_nun'"

	outcome := verifier.Classify(raw)
	require.Equal(t, verifier.OutcomeCompilationFailed, outcome.Kind)
	require.Equal(t, verifier.CompilationSentinelHash, outcome.ResultHash)
}

func TestClassifyShortTokenIsHashed(t *testing.T) {
	raw := "Status: SUCCESS\nDeterministic Hash: abc123"

	outcome := verifier.Classify(raw)
	require.Equal(t, verifier.OutcomeValid, outcome.Kind)
	require.Equal(t, crypto.Keccak256Hash([]byte("abc123")), outcome.ResultHash)
}

func TestClassifyFullLengthHashUsedVerbatim(t *testing.T) {
	short := "4ef02056a1a1c6be" // hex but not full length, must be hashed
	outcome := verifier.Classify("Deterministic Hash: " + short)
	require.Equal(t, crypto.Keccak256Hash([]byte(short)), outcome.ResultHash)

	fullHash := "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899"
	outcome = verifier.Classify("Deterministic Hash: " + fullHash)
	require.Equal(t, verifier.OutcomeValid, outcome.Kind)
	require.Equal(t, common.HexToHash(fullHash), outcome.ResultHash)
}

func TestClassifySuccessWithoutTokenIsUnparseable(t *testing.T) {
	outcome := verifier.Classify("some output that matches nothing")
	require.Equal(t, verifier.OutcomeUnparseable, outcome.Kind)
	require.Equal(t, verifier.CompilationSentinelHash, outcome.ResultHash)
}

// Classifier is deterministic and total: any input yields exactly one of the
// four kinds, repeat calls agree.
func TestClassifyDeterministicAndTotal(t *testing.T) {
	inputs := []string{
		"",
		"Status: FAILURE",
		"Status: FAILURE CHEAT DETECTED",
		"Deterministic Hash: deadbeef",
		"garbage \x00 bytes \xff",
		"Status: SUCCESS\nDeterministic Hash: UPPER_CASE_TOKEN",
	}
	for _, input := range inputs {
		first := verifier.Classify(input)
		second := verifier.Classify(input)
		require.Equal(t, first, second, "input %q", input)
		require.Contains(t, []verifier.OutcomeKind{
			verifier.OutcomeValid,
			verifier.OutcomeCheatDetected,
			verifier.OutcomeCompilationFailed,
			verifier.OutcomeUnparseable,
		}, first.Kind)
		require.NotEqual(t, common.Hash{}, first.ResultHash, "outcome always carries a committable hash")
	}
}

func TestSentinelHashesAreFixedConstants(t *testing.T) {
	require.Equal(t,
		crypto.Keccak256Hash([]byte("ERROR_AXIOM_CHECK_FAILED")),
		verifier.CheatSentinelHash)
	require.Equal(t,
		crypto.Keccak256Hash([]byte("COMPILATION_FAILED")),
		verifier.CompilationSentinelHash)
	require.NotEqual(t, verifier.CheatSentinelHash, verifier.CompilationSentinelHash)
}
