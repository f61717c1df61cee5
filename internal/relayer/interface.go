package relayer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/model"
)

type ISigner interface {
	// SubmitCredit signs and broadcasts a destination-chain credit for
	// destinationAddress. Submissions are serialized in FIFO order; the
	// call blocks until its turn has been broadcast or failed.
	SubmitCredit(ctx context.Context, destinationAddress string, amount *model.Web3BigInt) (*chainclient.PendingTx, error)

	Address() string
	QueueDepth() int
	Stop()
}

// Backend is the node surface needed to build, price and broadcast the
// relayer's own transactions.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}
