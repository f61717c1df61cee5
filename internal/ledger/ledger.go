// Package ledger projects a user's custody balance from the source-chain
// contract. The contract's per-user ledger is the single source of truth
// for funds available to bridge; nothing here is cached.
package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/consts"
	"github.com/xrpyield/bridge-backend/internal/model"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

type IDepositLedger interface {
	AvailableBalance(ctx context.Context, userAddress string) (*model.Web3BigInt, error)
}

type DepositLedgerView struct {
	reader chainclient.ContractReader
	logger *logger.Logger
}

func New(reader chainclient.ContractReader, logger *logger.Logger) IDepositLedger {
	return &DepositLedgerView{
		reader: reader,
		logger: logger,
	}
}

// AvailableBalance reads deposits(user) live from the custody contract.
// Callers re-read immediately before acting on the value to narrow the
// stale-read window.
func (v *DepositLedgerView) AvailableBalance(ctx context.Context, userAddress string) (*model.Web3BigInt, error) {
	var out []interface{}
	err := v.reader.ReadContractValue(ctx, &out, "deposits", common.HexToAddress(userAddress))
	if err != nil {
		v.logger.Error("[AvailableBalance][ReadContractValue]", map[string]string{
			"user_address": userAddress,
			"error":        err.Error(),
		})
		return nil, err
	}

	if len(out) == 0 {
		return nil, errors.New("custody contract returned no value for deposits")
	}

	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("unexpected deposits return type %T", out[0])
	}

	return &model.Web3BigInt{
		Value:   balance.String(),
		Decimal: consts.XRP_DECIMALS,
	}, nil
}
