package chainclient

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

// Backend is the subset of the ethclient surface the adapter needs,
// narrowed so tests can substitute a fake node.
type Backend interface {
	bind.ContractCaller
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// EVMClient adapts one EVM-compatible chain (the XRPL EVM sidechain or
// Ethereum) behind the Client capability set.
type EVMClient struct {
	chainName           string
	backend             Backend
	contract            *bind.BoundContract
	confirmationTimeout time.Duration
	pollInterval        time.Duration
	logger              *logger.Logger
}

func New(chainName string, chainCfg config.ChainConfig, bridgeCfg config.BridgeConfig, contractABI abi.ABI, logger *logger.Logger) (*EVMClient, error) {
	client, err := ethclient.Dial(chainCfg.RPCEndpoint)
	if err != nil {
		return nil, errors.Wrapf(ErrNetworkUnreachable, "dial %s: %v", chainName, err)
	}

	return NewWithBackend(chainName, client, chainCfg, bridgeCfg, contractABI, logger), nil
}

func NewWithBackend(chainName string, backend Backend, chainCfg config.ChainConfig, bridgeCfg config.BridgeConfig, contractABI abi.ABI, logger *logger.Logger) *EVMClient {
	contractAddr := common.HexToAddress(chainCfg.ContractAddr)

	return &EVMClient{
		chainName:           chainName,
		backend:             backend,
		contract:            bind.NewBoundContract(contractAddr, contractABI, backend, nil, nil),
		confirmationTimeout: bridgeCfg.ConfirmationTimeout,
		pollInterval:        bridgeCfg.PollInterval,
		logger:              logger,
	}
}

func (c *EVMClient) SubmitTransaction(ctx context.Context, signedTxHex string) (*PendingTx, error) {
	raw, err := hexutil.Decode(ensureHexPrefix(signedTxHex))
	if err != nil {
		return nil, errors.Wrap(ErrTxRejected, "malformed signed transaction hex")
	}

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(ErrTxRejected, "undecodable signed transaction")
	}

	if err := c.backend.SendTransaction(ctx, tx); err != nil {
		c.logger.Error("[SubmitTransaction][SendTransaction]", map[string]string{
			"chain":   c.chainName,
			"tx_hash": tx.Hash().Hex(),
			"error":   err.Error(),
		})
		return nil, classifySubmitError(err)
	}

	return &PendingTx{
		Hash:        tx.Hash().Hex(),
		SubmittedAt: time.Now(),
	}, nil
}

// WaitForConfirmation polls for the receipt until the node reports it or
// the configured timeout elapses. A timeout does not cancel the underlying
// transaction; it only ends this wait.
func (c *EVMClient) WaitForConfirmation(ctx context.Context, txHash string) (*ConfirmationResult, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.confirmationTimeout)
	defer cancel()

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.backend.TransactionReceipt(waitCtx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				return &ConfirmationResult{
					Status:      ConfirmationConfirmed,
					BlockNumber: receipt.BlockNumber.Uint64(),
				}, nil
			}
			return &ConfirmationResult{
				Status:      ConfirmationFailed,
				BlockNumber: receipt.BlockNumber.Uint64(),
				Reason:      ErrTxReverted.Error(),
			}, nil

		case errors.Is(err, ethereum.NotFound):
			// not yet included, keep polling

		default:
			c.logger.Error("[WaitForConfirmation][TransactionReceipt]", map[string]string{
				"chain":   c.chainName,
				"tx_hash": txHash,
				"error":   err.Error(),
			})
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, errors.Wrap(ctx.Err(), "confirmation wait cancelled")
			}
			return &ConfirmationResult{
				Status: ConfirmationTimedOut,
				Reason: ErrWaitTimeout.Error(),
			}, nil
		case <-ticker.C:
		}
	}
}

func (c *EVMClient) ReadContractValue(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error {
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, out, method, args...)
	if err != nil {
		return errors.Wrapf(ErrNetworkUnreachable, "%s.%s: %v", c.chainName, method, err)
	}
	return nil
}

func (c *EVMClient) LatestBlock(ctx context.Context) (uint64, error) {
	block, err := c.backend.BlockNumber(ctx)
	if err != nil {
		return 0, errors.Wrapf(ErrNetworkUnreachable, "%s latest block: %v", c.chainName, err)
	}
	return block, nil
}

func classifySubmitError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "connection reset"):
		return errors.Wrap(ErrNetworkUnreachable, err.Error())
	default:
		return errors.Wrap(ErrTxRejected, err.Error())
	}
}

func ensureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
