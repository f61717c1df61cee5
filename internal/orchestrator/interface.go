package orchestrator

import (
	"context"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/model"
)

// ExecuteParams carries one bridge transfer request. The source leg is the
// caller's own transaction, signed client-side and broadcast here; the
// backend never holds user keys.
type ExecuteParams struct {
	UserAddress        string
	DestinationAddress string
	Amount             *model.Web3BigInt
	SignedSourceTx     string
	// RetryOfRequestID links a corrected retry to the failed request it
	// replaces.
	RetryOfRequestID string
}

type IOrchestrator interface {
	// Execute drives both legs to a terminal outcome and blocks until done.
	Execute(ctx context.Context, params ExecuteParams) (*model.BridgeRequest, error)

	// ExecuteAsync validates and persists the request synchronously, then
	// drives the legs in the background. Callers poll GetStatus.
	ExecuteAsync(ctx context.Context, params ExecuteParams) (*model.BridgeRequest, error)

	// Resume re-drives only the destination leg of a request whose source
	// leg confirmed. Idempotent: a Completed request is returned as-is.
	Resume(ctx context.Context, requestID string) (*model.BridgeRequest, error)

	// Cancel aborts a request whose source leg has not confirmed yet.
	Cancel(ctx context.Context, requestID string) (*model.BridgeRequest, error)

	GetStatus(requestID string) (*model.BridgeRequest, error)
	ListHistory(userAddress string) ([]model.BridgeRequest, error)

	// ReconcileInFlight re-drives every request left without a terminal
	// outcome, typically after a restart.
	ReconcileInFlight(ctx context.Context) error
}

// SourceChain is the source-leg capability slice of the chain adapter.
type SourceChain interface {
	chainclient.TxSubmitter
	chainclient.ConfirmationWaiter
}

// CreditSubmitter is implemented by the relayer signer.
type CreditSubmitter interface {
	SubmitCredit(ctx context.Context, destinationAddress string, amount *model.Web3BigInt) (*chainclient.PendingTx, error)
}
