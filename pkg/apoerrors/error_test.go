//go:build unit || !integration

package apoerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchExhaustedWrapsCause(t *testing.T) {
	cause := fmt.Errorf("gateway timeout")
	err := NewFetchExhausted("QmFoo", cause)

	require.Equal(t, ErrorCodeFetchExhausted, err.GetCode())
	require.Contains(t, err.Error(), "QmFoo")
	require.ErrorIs(t, err, cause)
	require.Equal(t, "QmFoo", err.GetDetails()["CID"])
}

func TestTransactionRevertedCarriesHash(t *testing.T) {
	err := NewTransactionReverted("0xdeadbeef")

	require.Equal(t, "0xdeadbeef", err.TxHash())
	require.Contains(t, err.Error(), "0xdeadbeef")
}

func TestTypedErrorsSatisfyInterface(t *testing.T) {
	cases := []ApodeixisErrorInterface{
		NewFetchExhausted("cid", nil),
		NewSandboxLaunch("image", nil),
		NewTransactionReverted("0x0"),
		NewProtocolViolation("reveal without commit"),
		NewTransientNetwork("poll", nil),
	}
	seen := map[string]bool{}
	for _, c := range cases {
		require.NotEmpty(t, c.GetCode())
		require.False(t, seen[c.GetCode()], "duplicate code %s", c.GetCode())
		seen[c.GetCode()] = true
	}
}

func TestProtocolViolationMatchesAs(t *testing.T) {
	var target *ProtocolViolation
	err := fmt.Errorf("wrapped: %w", NewProtocolViolation("stale salt"))
	require.True(t, errors.As(err, &target))
	require.Contains(t, target.GetMessage(), "stale salt")
}
