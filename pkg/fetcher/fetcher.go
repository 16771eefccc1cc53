package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/apodeixis-project/apodeixis/pkg/apoerrors"
)

// SimulatedPrefix marks artifact pointers that must never hit the network.
// A deterministic placeholder is written instead (test/bootstrap path).
const SimulatedPrefix = "QmSimulated"

const simulatedArtifact = "import Mathlib\ntheorem test : 1 + 1 = 2 := by norm_num"

const defaultAttemptTimeout = 15 * time.Second

// DefaultGateways are the public fallbacks tried after the preferred
// gateway, in order.
var DefaultGateways = []string{
	"https://cloudflare-ipfs.com",
	"https://ipfs.io",
	"https://gateway.pinata.cloud",
}

type Params struct {
	// DataDir is where fetched artifacts are written, one file per task.
	DataDir string
	// PreferredGateway is an optional gateway host tried first.
	PreferredGateway string
	// Gateways overrides the fallback list. Defaults to DefaultGateways.
	Gateways []string
	// AttemptTimeout bounds each candidate attempt. Defaults to 15s.
	AttemptTimeout time.Duration
}

// Fetcher retrieves task artifacts from a content-addressed network through
// an ordered candidate list of gateways with fallback.
type Fetcher struct {
	client         *retryablehttp.Client
	dataDir        string
	candidates     []string
	attemptTimeout time.Duration
}

func New(params Params) *Fetcher {
	client := retryablehttp.NewClient()
	// fallback across gateways is this package's concern, keep the
	// per-gateway retry budget small
	client.RetryMax = 1
	client.Logger = nil

	gateways := params.Gateways
	if gateways == nil {
		gateways = DefaultGateways
	}
	var candidates []string
	if params.PreferredGateway != "" {
		candidates = append(candidates, normalizeGateway(params.PreferredGateway))
	}
	for _, gw := range gateways {
		candidates = append(candidates, normalizeGateway(gw))
	}

	attemptTimeout := params.AttemptTimeout
	if attemptTimeout == 0 {
		attemptTimeout = defaultAttemptTimeout
	}

	return &Fetcher{
		client:         client,
		dataDir:        params.DataDir,
		candidates:     candidates,
		attemptTimeout: attemptTimeout,
	}
}

func normalizeGateway(gateway string) string {
	if strings.Contains(gateway, "://") {
		return strings.TrimSuffix(gateway, "/")
	}
	return "https://" + gateway
}

// Fetch retrieves the artifact for one task and persists it to a task-scoped
// local file. The first candidate that answers with a 200 wins; transport
// and timeout errors on one candidate are swallowed and the next is tried.
// Exhausting every candidate returns a FetchExhausted.
func (f *Fetcher) Fetch(ctx context.Context, taskID *big.Int, cid string) (string, error) {
	if f.dataDir != "" {
		if err := os.MkdirAll(f.dataDir, 0o755); err != nil { //nolint:gomnd
			return "", errors.Wrap(err, "creating data dir")
		}
	}
	localPath := filepath.Join(f.dataDir, fmt.Sprintf("Task_%s.lean", taskID))

	if strings.HasPrefix(cid, SimulatedPrefix) {
		log.Ctx(ctx).Warn().Str("CID", cid).Msg("simulating artifact download")
		if err := os.WriteFile(localPath, []byte(simulatedArtifact), 0o644); err != nil { //nolint:gomnd
			return "", errors.Wrap(err, "writing simulated artifact")
		}
		return localPath, nil
	}

	var attemptErrs *multierror.Error
	for _, base := range f.candidates {
		url := fmt.Sprintf("%s/ipfs/%s", base, cid)
		log.Ctx(ctx).Info().Str("URL", url).Msg("downloading artifact")

		if err := f.fetchOne(ctx, url, localPath); err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("URL", url).Msg("gateway attempt failed")
			attemptErrs = multierror.Append(attemptErrs, errors.Wrap(err, base))
			continue
		}

		log.Ctx(ctx).Info().Str("Path", localPath).Msg("artifact download succeeded")
		return localPath, nil
	}

	return "", apoerrors.NewFetchExhausted(cid, attemptErrs.ErrorOrNil())
}

func (f *Fetcher) fetchOne(ctx context.Context, url, localPath string) error {
	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return errors.Wrap(err, "creating artifact file")
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return errors.Wrap(err, "writing artifact file")
	}
	return nil
}
