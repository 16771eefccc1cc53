//go:build unit || !integration

package fetcher_test

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/apodeixis-project/apodeixis/pkg/apoerrors"
	"github.com/apodeixis-project/apodeixis/pkg/fetcher"
	"github.com/apodeixis-project/apodeixis/pkg/logger"
)

type FetcherSuite struct {
	suite.Suite
	dataDir string
}

func TestFetcherSuite(t *testing.T) {
	suite.Run(t, new(FetcherSuite))
}

func (s *FetcherSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.dataDir = s.T().TempDir()
}

func (s *FetcherSuite) TestSimulatedPointerSkipsNetwork() {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	f := fetcher.New(fetcher.Params{
		DataDir:  s.dataDir,
		Gateways: []string{server.URL},
	})

	path, err := f.Fetch(context.Background(), big.NewInt(7), "QmSimulated123")
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(0), hits.Load(), "simulated fetch must not hit the network")

	content, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	require.Contains(s.T(), string(content), "theorem test")
}

func (s *FetcherSuite) TestFallsBackAcrossGateways() {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})
	serverA := httptest.NewServer(slow)
	defer serverA.Close()
	serverB := httptest.NewServer(slow)
	defer serverB.Close()
	serverC := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("theorem artifact"))
	}))
	defer serverC.Close()

	f := fetcher.New(fetcher.Params{
		DataDir:        s.dataDir,
		Gateways:       []string{serverA.URL, serverB.URL, serverC.URL},
		AttemptTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	path, err := f.Fetch(context.Background(), big.NewInt(1), "QmRealCID")
	require.NoError(s.T(), err)
	// bounded by two timeout windows plus C's response time
	require.Less(s.T(), time.Since(start), 2*time.Second)

	content, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "theorem artifact", string(content))
}

func (s *FetcherSuite) TestExhaustingAllGatewaysFails() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := fetcher.New(fetcher.Params{
		DataDir:  s.dataDir,
		Gateways: []string{server.URL, server.URL},
	})

	_, err := f.Fetch(context.Background(), big.NewInt(2), "QmMissing")
	require.Error(s.T(), err)

	var exhausted *apoerrors.FetchExhausted
	require.True(s.T(), errors.As(err, &exhausted))
	require.Equal(s.T(), "QmMissing", exhausted.GetDetails()["CID"])
}

func (s *FetcherSuite) TestPreferredGatewayTriedFirst() {
	var order []string
	preferred := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "preferred")
		_, _ = w.Write([]byte("artifact"))
	}))
	defer preferred.Close()
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "fallback")
		_, _ = w.Write([]byte("artifact"))
	}))
	defer fallback.Close()

	f := fetcher.New(fetcher.Params{
		DataDir:          s.dataDir,
		PreferredGateway: preferred.URL,
		Gateways:         []string{fallback.URL},
	})

	_, err := f.Fetch(context.Background(), big.NewInt(3), "QmPreferred")
	require.NoError(s.T(), err)
	require.Equal(s.T(), []string{"preferred"}, order)
}
