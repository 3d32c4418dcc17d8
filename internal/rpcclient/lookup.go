// =============================================================================
// whalewatch - Transaction Lookup
// =============================================================================
//
// This package answers "what does this transaction look like on chain?" for a
// transaction identifier. Two variants implement the same Lookup interface:
//
//   MockClient  deterministic synthetic data, no network
//   LiveClient  Bitcoin Core JSON-RPC over HTTP
//
// New picks one at startup. A live client that cannot reach its node on the
// first attempt is replaced by the mock for the rest of the process.
//
// =============================================================================

package rpcclient

import (
	"context"
	"errors"

	"github.com/ginjaninja78/whalewatch/internal/types"
)

// Mode names the variant behind a Lookup.
type Mode string

const (
	ModeSimulation Mode = "simulation"
	ModeLive       Mode = "live"
)

// ErrRPC is wrapped by every error the node itself reported.
var ErrRPC = errors.New("rpc error")

// Lookup fetches transaction details by identifier.
//
// A non-nil error means the detail is absent for this call only; callers
// move on to the next identifier.
type Lookup interface {
	GetRawTransaction(ctx context.Context, txid string) (*types.TransactionDetail, error)
	Mode() Mode
}

// shortID returns the identifier prefix used in log lines.
func shortID(txid string) string {
	if len(txid) > 10 {
		return txid[:10]
	}
	return txid
}
