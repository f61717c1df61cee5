// Package relayer owns the custodial signing key for destination-chain
// credits. Exactly one submission is in flight at a time; queued requests
// are processed in arrival order so concurrent bridge executions can never
// race on the same nonce.
package relayer

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/xrpyield/bridge-backend/contracts/xrpbridge"
	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/model"
	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

type creditJob struct {
	destination common.Address
	amount      *big.Int
	reply       chan creditResult
}

type creditResult struct {
	pending *chainclient.PendingTx
	err     error
}

type Signer struct {
	key          *ecdsa.PrivateKey
	address      common.Address
	chainID      *big.Int
	contractAddr common.Address
	gasLimit     uint64
	backend      Backend
	logger       *logger.Logger

	// jobs is never closed; shutdown is signalled through quit so a
	// submission racing Stop can never send on a closed channel
	jobs     chan creditJob
	quit     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// nonce state is only touched by the worker goroutine
	nonce      uint64
	nonceReady bool
}

func New(privateKeyHex string, chainCfg config.ChainConfig, relayerCfg config.RelayerConfig, backend Backend, logger *logger.Logger) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid relayer private key")
	}

	s := &Signer{
		key:          key,
		address:      crypto.PubkeyToAddress(key.PublicKey),
		chainID:      big.NewInt(chainCfg.ChainID),
		contractAddr: common.HexToAddress(chainCfg.ContractAddr),
		gasLimit:     relayerCfg.GasLimit,
		backend:      backend,
		logger:       logger,
		jobs:         make(chan creditJob, relayerCfg.QueueSize),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	go s.worker()
	return s, nil
}

func (s *Signer) Address() string {
	return s.address.Hex()
}

func (s *Signer) QueueDepth() int {
	return len(s.jobs)
}

func (s *Signer) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		<-s.done
	})
}

func (s *Signer) SubmitCredit(ctx context.Context, destinationAddress string, amount *model.Web3BigInt) (*chainclient.PendingTx, error) {
	value, ok := amount.BigInt()
	if !ok {
		return nil, errors.Wrap(model.ErrRelayerUnavailable, "unparseable credit amount")
	}

	job := creditJob{
		destination: common.HexToAddress(destinationAddress),
		amount:      value,
		reply:       make(chan creditResult, 1),
	}

	select {
	case <-s.quit:
		return nil, errors.Wrap(model.ErrRelayerUnavailable, "relayer stopped")
	default:
	}

	select {
	case s.jobs <- job:
	default:
		return nil, errors.Wrap(model.ErrRelayerUnavailable, "relayer submission queue full")
	}

	select {
	case res := <-job.reply:
		return res.pending, res.err
	case <-ctx.Done():
		// the job still drains in order; only this caller stops waiting
		return nil, errors.Wrap(ctx.Err(), "credit submission wait cancelled")
	case <-s.quit:
		// the worker may have finished this job just before stopping
		select {
		case res := <-job.reply:
			return res.pending, res.err
		default:
		}
		return nil, errors.Wrap(model.ErrRelayerUnavailable, "relayer stopped")
	}
}

func (s *Signer) worker() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			return
		case job := <-s.jobs:
			job.reply <- s.processCredit(job)
		}
	}
}

func (s *Signer) processCredit(job creditJob) creditResult {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !s.nonceReady {
		nonce, err := s.backend.PendingNonceAt(ctx, s.address)
		if err != nil {
			return creditResult{err: errors.Wrapf(model.ErrRelayerUnavailable, "pending nonce: %v", err)}
		}
		s.nonce = nonce
		s.nonceReady = true
	}

	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return creditResult{err: errors.Wrapf(model.ErrRelayerUnavailable, "gas price: %v", err)}
	}

	calldata, err := xrpbridge.PackBridgeFromXrp(job.destination)
	if err != nil {
		return creditResult{err: errors.Wrapf(model.ErrRelayerUnavailable, "pack calldata: %v", err)}
	}

	tx := types.NewTransaction(s.nonce, s.contractAddr, job.amount, s.gasLimit, gasPrice, calldata)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return creditResult{err: errors.Wrapf(model.ErrRelayerUnavailable, "sign credit tx: %v", err)}
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		// the local nonce may be stale now, re-sync before the next job
		s.nonceReady = false
		s.logger.Error("[SubmitCredit][SendTransaction]", map[string]string{
			"destination": job.destination.Hex(),
			"nonce":       new(big.Int).SetUint64(s.nonce).String(),
			"error":       err.Error(),
		})
		return creditResult{err: errors.Wrapf(model.ErrDestinationLegFailure, "broadcast credit: %v", err)}
	}

	s.nonce++

	s.logger.Info("[SubmitCredit] credit broadcast", map[string]string{
		"destination": job.destination.Hex(),
		"amount":      job.amount.String(),
		"tx_hash":     signed.Hash().Hex(),
	})

	return creditResult{pending: &chainclient.PendingTx{
		Hash:        signed.Hash().Hex(),
		SubmittedAt: time.Now(),
	}}
}
