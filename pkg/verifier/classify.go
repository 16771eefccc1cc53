package verifier

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// OutcomeKind is the classification of one sandbox run.
type OutcomeKind int

const (
	// OutcomeValid means the sandbox produced a parsable deterministic result.
	OutcomeValid OutcomeKind = iota
	// OutcomeCheatDetected means the sandbox flagged a cheat marker.
	OutcomeCheatDetected
	// OutcomeCompilationFailed means the artifact failed to compile or run.
	OutcomeCompilationFailed
	// OutcomeUnparseable means the run looked successful but produced no
	// parsable result token.
	OutcomeUnparseable
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValid:
		return "valid"
	case OutcomeCheatDetected:
		return "cheat-detected"
	case OutcomeCompilationFailed:
		return "compilation-failed"
	case OutcomeUnparseable:
		return "unparseable"
	default:
		return "unknown"
	}
}

// Outcome is what the lifecycle controller commits. Every kind carries a
// hash so the protocol can never stall on bad sandbox output.
type Outcome struct {
	Kind       OutcomeKind
	ResultHash common.Hash
}

// Sentinel hashes committed for non-valid outcomes. Fixed protocol-level
// constants derived by hashing a well-known label, auditable without
// revealing on-chain which failure occurred.
var (
	CheatSentinelHash       = crypto.Keccak256Hash([]byte("ERROR_AXIOM_CHECK_FAILED"))
	CompilationSentinelHash = crypto.Keccak256Hash([]byte("COMPILATION_FAILED"))
)

const failureMarker = "Status: FAILURE"

// cheat markers take precedence over the generic compilation failure
var cheatMarkers = []string{"CHEAT DETECTED", "ERROR_AXIOM_CHECK_FAILED"}

var (
	resultTokenPattern = regexp.MustCompile(`Deterministic Hash: ([a-f0-9A-Z_]+)`)
	bareHashPattern    = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// Classify maps raw sandbox output to an Outcome. Pure and total: any input
// yields exactly one of the four kinds and a committable hash.
func Classify(raw string) Outcome {
	if strings.Contains(raw, failureMarker) {
		for _, marker := range cheatMarkers {
			if strings.Contains(raw, marker) {
				return Outcome{Kind: OutcomeCheatDetected, ResultHash: CheatSentinelHash}
			}
		}
		return Outcome{Kind: OutcomeCompilationFailed, ResultHash: CompilationSentinelHash}
	}

	match := resultTokenPattern.FindStringSubmatch(raw)
	if match == nil {
		return Outcome{Kind: OutcomeUnparseable, ResultHash: CompilationSentinelHash}
	}

	token := match[1]
	if bareHashPattern.MatchString(token) {
		// already a full-length hash literal, use it verbatim
		return Outcome{Kind: OutcomeValid, ResultHash: common.HexToHash(token)}
	}
	return Outcome{Kind: OutcomeValid, ResultHash: crypto.Keccak256Hash([]byte(token))}
}
