// Package orchestrator owns the two-leg bridge state machine: lock on the
// source chain, credit on the destination chain, durable record of every
// transition in between.
package orchestrator

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/ledger"
	"github.com/xrpyield/bridge-backend/internal/model"
	"github.com/xrpyield/bridge-backend/internal/monitoring"
	"github.com/xrpyield/bridge-backend/internal/store"
	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
	"github.com/xrpyield/bridge-backend/internal/utils/webhook"
)

type Orchestrator struct {
	db         *gorm.DB
	store      *store.Store
	source     SourceChain
	destWaiter chainclient.ConfirmationWaiter
	relayer    CreditSubmitter
	ledger     ledger.IDepositLedger
	webhook    *webhook.Client
	metrics    *monitoring.BridgeMetrics
	logger     *logger.Logger
	appConfig  *config.AppConfig

	// inFlight tracks which requests are currently owned by a live run
	// so the reconcile sweep and a concurrent Resume cannot drive the
	// same request twice.
	inFlight sync.Map
}

func New(
	db *gorm.DB,
	store *store.Store,
	source SourceChain,
	destWaiter chainclient.ConfirmationWaiter,
	relayer CreditSubmitter,
	ledger ledger.IDepositLedger,
	webhook *webhook.Client,
	metrics *monitoring.BridgeMetrics,
	logger *logger.Logger,
	appConfig *config.AppConfig,
) IOrchestrator {
	return &Orchestrator{
		db:         db,
		store:      store,
		source:     source,
		destWaiter: destWaiter,
		relayer:    relayer,
		ledger:     ledger,
		webhook:    webhook,
		metrics:    metrics,
		logger:     logger,
		appConfig:  appConfig,
	}
}

// acquire claims exclusive drive ownership of a request for this process.
func (o *Orchestrator) acquire(requestID string) bool {
	_, loaded := o.inFlight.LoadOrStore(requestID, struct{}{})
	return !loaded
}

func (o *Orchestrator) release(requestID string) {
	o.inFlight.Delete(requestID)
}

func (o *Orchestrator) Execute(ctx context.Context, params ExecuteParams) (*model.BridgeRequest, error) {
	req, err := o.createRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	if !o.acquire(req.RequestID) {
		return req, model.ErrRequestInFlight
	}
	defer o.release(req.RequestID)

	return o.runSourceLeg(ctx, req, params.SignedSourceTx)
}

func (o *Orchestrator) ExecuteAsync(ctx context.Context, params ExecuteParams) (*model.BridgeRequest, error) {
	req, err := o.createRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	// claim before returning so a reconcile sweep firing between the
	// insert and the goroutine start cannot pick the request up
	if !o.acquire(req.RequestID) {
		return req, model.ErrRequestInFlight
	}

	snapshot := *req
	go func() {
		defer o.release(req.RequestID)

		// detach from the inbound request; the legs outlive the HTTP call
		runCtx, cancel := context.WithTimeout(context.Background(), 2*o.appConfig.Bridge.ConfirmationTimeout+time.Minute)
		defer cancel()

		if _, err := o.runSourceLeg(runCtx, req, params.SignedSourceTx); err != nil {
			o.logger.Error("[ExecuteAsync][run]", map[string]string{
				"request_id": req.RequestID,
				"error":      err.Error(),
			})
		}
	}()

	return &snapshot, nil
}

// createRequest validates preconditions and persists the initial record.
// Any validation failure leaves the store untouched.
func (o *Orchestrator) createRequest(ctx context.Context, params ExecuteParams) (*model.BridgeRequest, error) {
	if !common.IsHexAddress(params.UserAddress) {
		return nil, model.NewValidationError("user_address", "not a valid address")
	}
	if !common.IsHexAddress(params.DestinationAddress) {
		return nil, model.NewValidationError("destination_address", "not a valid address")
	}
	if params.Amount == nil || !params.Amount.IsPositive() {
		return nil, model.NewValidationError("amount", "must be a positive base-unit integer")
	}
	if params.SignedSourceTx == "" {
		return nil, model.NewValidationError("signed_source_tx", "missing signed source transaction")
	}

	// re-read the custody balance immediately before acting on it to keep
	// the stale-read window as small as possible
	balance, err := o.ledger.AvailableBalance(ctx, params.UserAddress)
	if err != nil {
		return nil, errors.Wrap(err, "deposit balance check")
	}
	if params.Amount.Cmp(balance) > 0 {
		return nil, model.NewValidationError("amount", "exceeds available deposit balance")
	}

	req := model.NewBridgeRequest(uuid.NewString(), params.UserAddress, params.DestinationAddress, params.Amount)
	req.RetryOfRequestID = params.RetryOfRequestID

	if _, err := o.store.BridgeRequest.Create(o.db, req); err != nil {
		return nil, errors.Wrap(err, "persist bridge request")
	}

	o.logger.Info("[Execute] bridge request created", map[string]string{
		"request_id":   req.RequestID,
		"user_address": req.UserAddress,
		"amount":       req.Amount,
	})

	return req, nil
}

func (o *Orchestrator) runSourceLeg(ctx context.Context, req *model.BridgeRequest, signedSourceTx string) (*model.BridgeRequest, error) {
	legStart := time.Now()

	pending, err := o.source.SubmitTransaction(ctx, signedSourceTx)
	if err != nil {
		o.failSource(req, err.Error())
		o.metrics.ObserveLeg(monitoring.LegSource, monitoring.LegStatusFailed, time.Since(legStart).Seconds())
		return req, errors.Wrap(model.ErrSourceLegFailure, err.Error())
	}

	if err := o.transition(req, func() error { return req.MarkSourceSubmitted(pending.Hash) }); err != nil {
		return req, err
	}

	result, err := o.source.WaitForConfirmation(ctx, pending.Hash)
	if err != nil {
		o.failSource(req, err.Error())
		o.metrics.ObserveLeg(monitoring.LegSource, monitoring.LegStatusFailed, time.Since(legStart).Seconds())
		return req, errors.Wrap(model.ErrSourceLegFailure, err.Error())
	}

	if result.Status != chainclient.ConfirmationConfirmed {
		// a timed-out wait and a revert both fail the leg, but the
		// distinction matters to operators: a timed-out tx may still land
		o.logger.Error("[Execute][SourceLeg] not confirmed", map[string]string{
			"request_id": req.RequestID,
			"tx_hash":    pending.Hash,
			"status":     string(result.Status),
			"reason":     result.Reason,
		})
		o.failSource(req, result.Reason)
		o.metrics.ObserveLeg(monitoring.LegSource, string(result.Status), time.Since(legStart).Seconds())
		return req, errors.Wrap(model.ErrSourceLegFailure, result.Reason)
	}

	if err := o.transition(req, req.MarkSourceConfirmed); err != nil {
		// a racing Cancel or sweep already owns the record; do not start
		// the destination leg on a superseded state
		return req, err
	}
	o.metrics.ObserveLeg(monitoring.LegSource, monitoring.LegStatusConfirmed, time.Since(legStart).Seconds())

	return o.runDestinationLeg(ctx, req)
}

// runDestinationLeg submits and awaits the custodial credit. The source leg
// is already confirmed when this runs; every failure from here resolves to
// PartiallyCompleted, never Failed.
func (o *Orchestrator) runDestinationLeg(ctx context.Context, req *model.BridgeRequest) (*model.BridgeRequest, error) {
	legStart := time.Now()

	// this write is the gate in front of the relayer: if it is rejected
	// the record moved underneath us and no credit may be submitted
	if err := o.transition(req, req.MarkDestinationPending); err != nil {
		return req, err
	}

	pending, err := o.relayer.SubmitCredit(ctx, req.DestinationAddress, req.AmountWeb3())
	if err != nil {
		o.failDestination(req, err.Error())
		o.metrics.ObserveLeg(monitoring.LegDestination, monitoring.LegStatusFailed, time.Since(legStart).Seconds())
		if errors.Is(err, model.ErrRelayerUnavailable) {
			return req, err
		}
		return req, errors.Wrap(model.ErrDestinationLegFailure, err.Error())
	}

	if err := o.transition(req, func() error { return req.MarkDestinationSubmitted(pending.Hash) }); err != nil {
		return req, err
	}

	result, err := o.destWaiter.WaitForConfirmation(ctx, pending.Hash)
	if err != nil {
		o.failDestination(req, err.Error())
		o.metrics.ObserveLeg(monitoring.LegDestination, monitoring.LegStatusFailed, time.Since(legStart).Seconds())
		return req, errors.Wrap(model.ErrDestinationLegFailure, err.Error())
	}

	if result.Status != chainclient.ConfirmationConfirmed {
		o.logger.Error("[Execute][DestinationLeg] not confirmed", map[string]string{
			"request_id": req.RequestID,
			"tx_hash":    pending.Hash,
			"status":     string(result.Status),
			"reason":     result.Reason,
		})
		o.failDestination(req, result.Reason)
		o.metrics.ObserveLeg(monitoring.LegDestination, string(result.Status), time.Since(legStart).Seconds())
		return req, errors.Wrap(model.ErrDestinationLegFailure, result.Reason)
	}

	if err := o.transition(req, req.MarkDestinationConfirmed); err != nil {
		return req, err
	}
	o.metrics.ObserveLeg(monitoring.LegDestination, monitoring.LegStatusConfirmed, time.Since(legStart).Seconds())
	o.notifyTerminal(req)

	o.logger.Info("[Execute] bridge completed", map[string]string{
		"request_id":   req.RequestID,
		"source_tx":    req.SourceTxHash,
		"dest_tx":      req.DestinationTxHash,
		"user_address": req.UserAddress,
	})

	return req, nil
}

func (o *Orchestrator) Resume(ctx context.Context, requestID string) (*model.BridgeRequest, error) {
	req, err := o.store.BridgeRequest.GetByRequestID(o.db, requestID)
	if err != nil {
		return nil, err
	}

	if req.TerminalOutcome == model.TerminalOutcomeCompleted {
		// idempotent no-op, no chain calls
		return req, nil
	}

	if !o.acquire(req.RequestID) {
		return nil, model.ErrRequestInFlight
	}
	defer o.release(req.RequestID)

	switch req.TerminalOutcome {
	case model.TerminalOutcomeFailed:
		return nil, model.NewValidationError("request_id",
			"source leg never confirmed; submit a new request instead of resuming")

	case model.TerminalOutcomePartiallyCompleted:
		return o.resumePartiallyCompleted(ctx, req)

	default:
		return o.resumeInFlight(ctx, req)
	}
}

// resumePartiallyCompleted re-drives the destination leg of a request whose
// source leg confirmed. If an earlier credit transaction is on record it is
// re-polled first: a wait that timed out says nothing about the transaction,
// and a late landing must complete the request rather than credit it twice.
func (o *Orchestrator) resumePartiallyCompleted(ctx context.Context, req *model.BridgeRequest) (*model.BridgeRequest, error) {
	if req.DestinationTxHash != "" {
		result, err := o.destWaiter.WaitForConfirmation(ctx, req.DestinationTxHash)
		if err != nil {
			return nil, errors.Wrap(model.ErrDestinationLegFailure, err.Error())
		}

		switch result.Status {
		case chainclient.ConfirmationConfirmed:
			hash := req.DestinationTxHash
			err := o.reopen(req, func() error {
				if err := req.Reopen(); err != nil {
					return err
				}
				if err := req.MarkDestinationSubmitted(hash); err != nil {
					return err
				}
				return req.MarkDestinationConfirmed()
			})
			if err != nil {
				return nil, err
			}
			o.notifyTerminal(req)
			o.logger.Info("[Resume] earlier credit landed after the wait gave up", map[string]string{
				"request_id": req.RequestID,
				"dest_tx":    hash,
			})
			return req, nil

		case chainclient.ConfirmationTimedOut:
			// still unresolved on-chain; a fresh credit here could pay twice
			return nil, errors.Wrap(model.ErrDestinationLegFailure,
				"earlier credit transaction still unresolved, retry resume later")
		}
		// reverted on-chain: safe to submit a fresh credit
	}

	if err := o.reopen(req, req.Reopen); err != nil {
		return nil, err
	}
	o.logger.Info("[Resume] re-driving destination leg", map[string]string{
		"request_id": req.RequestID,
	})
	return o.resumeDestination(ctx, req)
}

// resumeInFlight recovers a request interrupted mid-run, e.g. by a crash.
func (o *Orchestrator) resumeInFlight(ctx context.Context, req *model.BridgeRequest) (*model.BridgeRequest, error) {
	switch req.SourceLegStatus {
	case model.SourceLegStatusPending:
		// interrupted before the source tx was ever broadcast: nothing
		// moved, close the request out
		o.failSource(req, "interrupted before source submission")
		return req, errors.Wrap(model.ErrSourceLegFailure, "interrupted before source submission")

	case model.SourceLegStatusSubmitted:
		result, err := o.source.WaitForConfirmation(ctx, req.SourceTxHash)
		if err != nil {
			o.failSource(req, err.Error())
			return req, errors.Wrap(model.ErrSourceLegFailure, err.Error())
		}
		if result.Status != chainclient.ConfirmationConfirmed {
			o.failSource(req, result.Reason)
			return req, errors.Wrap(model.ErrSourceLegFailure, result.Reason)
		}
		if err := o.transition(req, req.MarkSourceConfirmed); err != nil {
			return req, err
		}
		return o.runDestinationLeg(ctx, req)

	case model.SourceLegStatusConfirmed:
		return o.resumeDestination(ctx, req)

	default:
		return nil, errors.Errorf("request %s in unexpected state %s/%s",
			req.RequestID, req.SourceLegStatus, req.DestinationLegStatus)
	}
}

// resumeDestination re-attempts only the destination leg. The source chain
// adapter is never called here: those funds already moved.
func (o *Orchestrator) resumeDestination(ctx context.Context, req *model.BridgeRequest) (*model.BridgeRequest, error) {
	switch req.DestinationLegStatus {
	case model.DestinationLegStatusSubmitted:
		// a credit tx is already out, just poll it
		legStart := time.Now()
		result, err := o.destWaiter.WaitForConfirmation(ctx, req.DestinationTxHash)
		if err != nil {
			o.failDestination(req, err.Error())
			return req, errors.Wrap(model.ErrDestinationLegFailure, err.Error())
		}
		if result.Status != chainclient.ConfirmationConfirmed {
			o.failDestination(req, result.Reason)
			o.metrics.ObserveLeg(monitoring.LegDestination, string(result.Status), time.Since(legStart).Seconds())
			return req, errors.Wrap(model.ErrDestinationLegFailure, result.Reason)
		}
		if err := o.transition(req, req.MarkDestinationConfirmed); err != nil {
			return req, err
		}
		o.metrics.ObserveLeg(monitoring.LegDestination, monitoring.LegStatusConfirmed, time.Since(legStart).Seconds())
		o.notifyTerminal(req)
		return req, nil

	case model.DestinationLegStatusNotStarted:
		return o.runDestinationLeg(ctx, req)

	case model.DestinationLegStatusPending:
		// pending with nothing broadcast yet: restart the leg cleanly
		pending, err := o.relayer.SubmitCredit(ctx, req.DestinationAddress, req.AmountWeb3())
		if err != nil {
			o.failDestination(req, err.Error())
			if errors.Is(err, model.ErrRelayerUnavailable) {
				return req, err
			}
			return req, errors.Wrap(model.ErrDestinationLegFailure, err.Error())
		}
		if err := o.transition(req, func() error { return req.MarkDestinationSubmitted(pending.Hash) }); err != nil {
			return req, err
		}
		return o.resumeDestination(ctx, req)

	default:
		return nil, errors.Errorf("request %s destination leg in unexpected state %s",
			req.RequestID, req.DestinationLegStatus)
	}
}

func (o *Orchestrator) Cancel(ctx context.Context, requestID string) (*model.BridgeRequest, error) {
	req, err := o.store.BridgeRequest.GetByRequestID(o.db, requestID)
	if err != nil {
		return nil, err
	}

	if !req.Cancellable() {
		if req.SourceLegStatus == model.SourceLegStatusConfirmed && req.TerminalOutcome != model.TerminalOutcomeCompleted {
			return nil, model.NewValidationError("request_id",
				"funds already left custody; completion or resume are the only paths forward")
		}
		return nil, model.NewValidationError("request_id", "request is no longer cancellable")
	}

	// the terminal write below also stops any live run: its next
	// transition is rejected by the store and the leg aborts
	if err := o.transition(req, func() error { return req.MarkSourceFailed("cancelled by caller") }); err != nil {
		return nil, err
	}
	o.notifyTerminal(req)
	o.logger.Info("[Cancel] request cancelled", map[string]string{
		"request_id": req.RequestID,
	})
	return req, nil
}

func (o *Orchestrator) GetStatus(requestID string) (*model.BridgeRequest, error) {
	return o.store.BridgeRequest.GetByRequestID(o.db, requestID)
}

func (o *Orchestrator) ListHistory(userAddress string) ([]model.BridgeRequest, error) {
	if !common.IsHexAddress(userAddress) {
		return nil, model.NewValidationError("user_address", "not a valid address")
	}
	return o.store.BridgeRequest.ListByUserAddress(o.db, userAddress)
}

// transition applies an in-memory state change and persists it. A rejected
// write means the stored record moved underneath this driver (a racing
// cancel, or another process); the caller must stop driving the request.
func (o *Orchestrator) transition(req *model.BridgeRequest, mutate func() error) error {
	if err := mutate(); err != nil {
		o.logger.Error("[transition] illegal state change", map[string]string{
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
		return err
	}

	if err := o.store.BridgeRequest.ApplyTransition(o.db, req); err != nil {
		if errors.Is(err, model.ErrStoreWriteConflict) {
			o.logger.Error("[transition] superseded by a newer write", map[string]string{
				"request_id": req.RequestID,
				"ordinal":    strconv.Itoa(req.StateOrdinal),
			})
			return err
		}
		o.logger.Error("[transition] persist failed", map[string]string{
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// reopen persists the one sanctioned exit from PartiallyCompleted.
func (o *Orchestrator) reopen(req *model.BridgeRequest, mutate func() error) error {
	if err := mutate(); err != nil {
		o.logger.Error("[reopen] illegal state change", map[string]string{
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
		return err
	}

	if err := o.store.BridgeRequest.ApplyReopen(o.db, req); err != nil {
		o.logger.Error("[reopen] persist failed", map[string]string{
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// failSource records a terminal failure of the source leg. A rejected write
// means another driver already resolved the request; its outcome stands.
func (o *Orchestrator) failSource(req *model.BridgeRequest, reason string) {
	if err := o.transition(req, func() error { return req.MarkSourceFailed(reason) }); err != nil {
		return
	}
	o.notifyTerminal(req)
}

func (o *Orchestrator) failDestination(req *model.BridgeRequest, reason string) {
	if err := o.transition(req, func() error { return req.MarkDestinationFailed(reason) }); err != nil {
		return
	}
	o.notifyTerminal(req)
}

func (o *Orchestrator) notifyTerminal(req *model.BridgeRequest) {
	if !req.IsTerminal() {
		return
	}
	o.metrics.IncOutcome(string(req.TerminalOutcome))

	notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	o.webhook.NotifyTerminalOutcome(notifyCtx,
		o.appConfig.Bridge.TerminalWebhookURL,
		req.RequestID, req.UserAddress, string(req.TerminalOutcome),
		req.SourceTxHash, req.DestinationTxHash)
}
