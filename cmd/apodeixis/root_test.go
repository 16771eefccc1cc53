//go:build unit || !integration

package apodeixis

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RootSuite struct {
	suite.Suite
}

func TestRootSuite(t *testing.T) {
	suite.Run(t, new(RootSuite))
}

func (s *RootSuite) execute(args ...string) (string, error) {
	out := new(bytes.Buffer)
	RootCmd.SetOut(out)
	RootCmd.SetErr(out)
	RootCmd.SetArgs(args)
	_, err := RootCmd.ExecuteC()
	return out.String(), err
}

func (s *RootSuite) TestHelpListsCommands() {
	out, err := s.execute("--help")
	require.NoError(s.T(), err)
	require.Contains(s.T(), out, "serve")
	require.Contains(s.T(), out, "stake")
	require.Contains(s.T(), out, "exit")
}

func (s *RootSuite) TestVersionTemplate() {
	RootCmd.Version = "v0.0.1-test"
	setVersion()

	out, err := s.execute("--version")
	require.NoError(s.T(), err)
	require.Contains(s.T(), out, "Apodeixis Version: v0.0.1-test")
}

func (s *RootSuite) TestStakeAmountParsing() {
	amount, err := parseTokenAmount("25")
	require.NoError(s.T(), err)
	require.Equal(s.T(), "25000000000000000000", amount.String())

	_, err = parseTokenAmount("-3")
	require.Error(s.T(), err)
	_, err = parseTokenAmount("lots")
	require.Error(s.T(), err)
}
