//go:build unit || !integration

package system

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/apodeixis-project/apodeixis/pkg/logger"
)

type SystemCleanupSuite struct {
	suite.Suite
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestSystemCleanupSuite(t *testing.T) {
	suite.Run(t, new(SystemCleanupSuite))
}

// Before each test
func (suite *SystemCleanupSuite) SetupTest() {
	logger.ConfigureTestLogging(suite.T())
}

func (suite *SystemCleanupSuite) TestCleanupManager() {
	clean := false

	cm := NewCleanupManager()
	cm.RegisterCallback(func() error {
		clean = true
		return nil
	})

	cm.Cleanup()
	require.True(suite.T(), clean, "cleanup handler failed to run registered functions")
}

func (suite *SystemCleanupSuite) TestCleanupManagerRunsAllCallbacks() {
	ran := make(chan string, 2)

	cm := NewCleanupManager()
	cm.RegisterCallback(func() error {
		ran <- "first"
		return nil
	})
	cm.RegisterCallback(func() error {
		ran <- "second"
		return nil
	})

	cm.Cleanup()
	close(ran)

	seen := map[string]bool{}
	for name := range ran {
		seen[name] = true
	}
	require.True(suite.T(), seen["first"])
	require.True(suite.T(), seen["second"])
}
