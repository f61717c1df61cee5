package chainclient

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type ConfirmationStatus string

const (
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationFailed    ConfirmationStatus = "failed"
	// ConfirmationTimedOut means the wait ended, not the transaction: it
	// may still land later and must be checked before manual remediation.
	ConfirmationTimedOut ConfirmationStatus = "timed_out"
)

// PendingTx is the handle returned by a non-blocking submission.
type PendingTx struct {
	Hash        string
	SubmittedAt time.Time
}

type ConfirmationResult struct {
	Status      ConfirmationStatus
	BlockNumber uint64
	// Reason carries the node-side failure detail for operator logs.
	Reason string
}

// Distinct failure surfaces of a chain adapter. The orchestrator maps all
// of them into the caller-facing taxonomy but keeps the distinction in logs.
var (
	ErrNetworkUnreachable = errors.New("chain rpc unreachable")
	ErrTxRejected         = errors.New("transaction rejected by node")
	ErrTxReverted         = errors.New("transaction reverted on-chain")
	ErrWaitTimeout        = errors.New("timed out waiting for confirmation")
)

type TxSubmitter interface {
	// SubmitTransaction broadcasts an already-signed raw transaction and
	// returns a pending handle immediately.
	SubmitTransaction(ctx context.Context, signedTxHex string) (*PendingTx, error)
}

type ConfirmationWaiter interface {
	// WaitForConfirmation blocks until finality or the configured timeout.
	WaitForConfirmation(ctx context.Context, txHash string) (*ConfirmationResult, error)
}

type ContractReader interface {
	// ReadContractValue is a point-in-time read with no consistency
	// guarantee beyond the querying node's current block.
	ReadContractValue(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error
}

// Client is the full capability set of one chain adapter.
type Client interface {
	TxSubmitter
	ConfirmationWaiter
	ContractReader

	LatestBlock(ctx context.Context) (uint64, error)
}
