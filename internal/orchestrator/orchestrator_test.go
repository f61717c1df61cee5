package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/model"
	"github.com/xrpyield/bridge-backend/internal/monitoring"
	"github.com/xrpyield/bridge-backend/internal/store"
	"github.com/xrpyield/bridge-backend/internal/utils/config"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
	"github.com/xrpyield/bridge-backend/internal/utils/webhook"

	"github.com/xrpyield/bridge-backend/internal/types/environments"
)

const (
	testUserAddr = "0x1111111111111111111111111111111111111111"
	testDestAddr = "0x2222222222222222222222222222222222222222"
)

// fakeRequestStore keeps records in memory and honors the same guards as
// the SQL store: a write with a non-advancing ordinal is rejected, and so
// is any ordinary transition against a record already terminal.
type fakeRequestStore struct {
	mu      sync.Mutex
	records map[string]*model.BridgeRequest
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{records: map[string]*model.BridgeRequest{}}
}

func (s *fakeRequestStore) Create(_ *gorm.DB, req *model.BridgeRequest) (*model.BridgeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.records[req.RequestID] = &cp
	return req, nil
}

func (s *fakeRequestStore) GetByRequestID(_ *gorm.DB, requestID string) (*model.BridgeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[requestID]
	if !ok {
		return nil, model.ErrRequestNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeRequestStore) ListByUserAddress(_ *gorm.DB, userAddress string) ([]model.BridgeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BridgeRequest
	for _, rec := range s.records {
		if rec.UserAddress == userAddress {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *fakeRequestStore) FindInFlight(_ *gorm.DB) ([]model.BridgeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BridgeRequest
	for _, rec := range s.records {
		if rec.TerminalOutcome == model.TerminalOutcomeNone {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *fakeRequestStore) ApplyTransition(_ *gorm.DB, req *model.BridgeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[req.RequestID]
	if !ok {
		return model.ErrRequestNotFound
	}
	if rec.StateOrdinal >= req.StateOrdinal || rec.TerminalOutcome != model.TerminalOutcomeNone {
		return model.ErrStoreWriteConflict
	}
	cp := *req
	s.records[req.RequestID] = &cp
	return nil
}

func (s *fakeRequestStore) ApplyReopen(_ *gorm.DB, req *model.BridgeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[req.RequestID]
	if !ok {
		return model.ErrRequestNotFound
	}
	if rec.StateOrdinal >= req.StateOrdinal || rec.TerminalOutcome != model.TerminalOutcomePartiallyCompleted {
		return model.ErrStoreWriteConflict
	}
	cp := *req
	s.records[req.RequestID] = &cp
	return nil
}

type fakeSourceChain struct {
	mu          sync.Mutex
	submits     int
	waits       int
	submitErr   error
	waitResult  *chainclient.ConfirmationResult
	waitDelay   time.Duration
	lastWaitFor string
}

func (f *fakeSourceChain) SubmitTransaction(ctx context.Context, signedTxHex string) (*chainclient.PendingTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &chainclient.PendingTx{Hash: "0xsource", SubmittedAt: time.Now()}, nil
}

func (f *fakeSourceChain) WaitForConfirmation(ctx context.Context, txHash string) (*chainclient.ConfirmationResult, error) {
	if f.waitDelay > 0 {
		time.Sleep(f.waitDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits++
	f.lastWaitFor = txHash
	if f.waitResult != nil {
		return f.waitResult, nil
	}
	return &chainclient.ConfirmationResult{Status: chainclient.ConfirmationConfirmed, BlockNumber: 100}, nil
}

type fakeCreditSubmitter struct {
	mu      sync.Mutex
	submits int
	err     error
}

func (f *fakeCreditSubmitter) SubmitCredit(ctx context.Context, destinationAddress string, amount *model.Web3BigInt) (*chainclient.PendingTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.err != nil {
		return nil, f.err
	}
	return &chainclient.PendingTx{Hash: "0xdest", SubmittedAt: time.Now()}, nil
}

type fakeDestWaiter struct {
	mu      sync.Mutex
	waits   int
	results []*chainclient.ConfirmationResult
}

func (f *fakeDestWaiter) WaitForConfirmation(ctx context.Context, txHash string) (*chainclient.ConfirmationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits++
	if len(f.results) > 0 {
		res := f.results[0]
		f.results = f.results[1:]
		return res, nil
	}
	return &chainclient.ConfirmationResult{Status: chainclient.ConfirmationConfirmed, BlockNumber: 200}, nil
}

type fakeLedger struct {
	balance *model.Web3BigInt
	err     error
	reads   int
}

func (f *fakeLedger) AvailableBalance(ctx context.Context, userAddress string) (*model.Web3BigInt, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.balance, nil
}

type fixture struct {
	orch    IOrchestrator
	store   *fakeRequestStore
	source  *fakeSourceChain
	dest    *fakeDestWaiter
	relayer *fakeCreditSubmitter
	ledger  *fakeLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	requestStore := newFakeRequestStore()
	source := &fakeSourceChain{}
	dest := &fakeDestWaiter{}
	relayer := &fakeCreditSubmitter{}
	depositLedger := &fakeLedger{balance: &model.Web3BigInt{Value: "10000000000000000000", Decimal: 18}}

	log := logger.New(environments.Test)
	appConfig := &config.AppConfig{
		Environment: environments.Test,
		Bridge: config.BridgeConfig{
			ConfirmationTimeout: time.Minute,
			PollInterval:        time.Millisecond,
		},
	}

	orch := New(
		nil,
		&store.Store{BridgeRequest: requestStore},
		source,
		dest,
		relayer,
		depositLedger,
		webhook.New(log),
		monitoring.NewBridgeMetrics(),
		log,
		appConfig,
	)

	return &fixture{
		orch:    orch,
		store:   requestStore,
		source:  source,
		dest:    dest,
		relayer: relayer,
		ledger:  depositLedger,
	}
}

func executeParams(amount string) ExecuteParams {
	return ExecuteParams{
		UserAddress:        testUserAddr,
		DestinationAddress: testDestAddr,
		Amount:             &model.Web3BigInt{Value: amount, Decimal: 18},
		SignedSourceTx:     "0xf86c80850430e23400",
	}
}

func TestExecuteHappyPath(t *testing.T) {
	f := newFixture(t)

	req, err := f.orch.Execute(context.Background(), executeParams("4000000000000000000"))
	require.NoError(t, err)

	assert.Equal(t, model.TerminalOutcomeCompleted, req.TerminalOutcome)
	assert.Equal(t, model.SourceLegStatusConfirmed, req.SourceLegStatus)
	assert.Equal(t, model.DestinationLegStatusConfirmed, req.DestinationLegStatus)
	assert.Equal(t, "0xsource", req.SourceTxHash)
	assert.Equal(t, "0xdest", req.DestinationTxHash)
	assert.NotNil(t, req.CompletedAt)

	// one submit and one wait per leg, in order
	assert.Equal(t, 1, f.source.submits)
	assert.Equal(t, 1, f.source.waits)
	assert.Equal(t, 1, f.relayer.submits)
	assert.Equal(t, 1, f.dest.waits)

	stored, err := f.store.GetByRequestID(nil, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, req.StateOrdinal, stored.StateOrdinal)
	assert.Equal(t, model.TerminalOutcomeCompleted, stored.TerminalOutcome)
}

func TestExecuteRejectsAmountOverBalance(t *testing.T) {
	f := newFixture(t)
	f.ledger.balance = &model.Web3BigInt{Value: "10000000000000000000", Decimal: 18}

	_, err := f.orch.Execute(context.Background(), executeParams("20000000000000000000"))
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))

	// nothing persisted, nothing submitted anywhere
	assert.Empty(t, f.store.records)
	assert.Equal(t, 0, f.source.submits)
	assert.Equal(t, 0, f.relayer.submits)
}

func TestExecuteRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(p *ExecuteParams)
	}{
		{name: "bad user address", mutate: func(p *ExecuteParams) { p.UserAddress = "not-an-address" }},
		{name: "bad destination address", mutate: func(p *ExecuteParams) { p.DestinationAddress = "0x123" }},
		{name: "zero amount", mutate: func(p *ExecuteParams) { p.Amount = &model.Web3BigInt{Value: "0", Decimal: 18} }},
		{name: "negative amount", mutate: func(p *ExecuteParams) { p.Amount = &model.Web3BigInt{Value: "-5", Decimal: 18} }},
		{name: "nil amount", mutate: func(p *ExecuteParams) { p.Amount = nil }},
		{name: "missing signed tx", mutate: func(p *ExecuteParams) { p.SignedSourceTx = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := executeParams("1000000000000000000")
			tt.mutate(&params)

			_, err := f.orch.Execute(context.Background(), params)
			require.Error(t, err)
			assert.True(t, model.IsValidationError(err))
		})
	}

	assert.Empty(t, f.store.records)
}

func TestExecuteSourceFailureIsTerminalFailed(t *testing.T) {
	f := newFixture(t)
	f.source.waitResult = &chainclient.ConfirmationResult{
		Status: chainclient.ConfirmationFailed,
		Reason: "execution reverted",
	}

	req, err := f.orch.Execute(context.Background(), executeParams("1000000000000000000"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrSourceLegFailure))

	assert.Equal(t, model.TerminalOutcomeFailed, req.TerminalOutcome)
	assert.Equal(t, model.SourceLegStatusFailed, req.SourceLegStatus)
	assert.Equal(t, "execution reverted", req.FailureReason)

	// no funds moved, so the destination leg must never start
	assert.Equal(t, 0, f.relayer.submits)
	assert.Equal(t, model.DestinationLegStatusNotStarted, req.DestinationLegStatus)
}

func TestExecuteDestTimeoutIsPartiallyCompleted(t *testing.T) {
	f := newFixture(t)
	f.dest.results = []*chainclient.ConfirmationResult{
		{Status: chainclient.ConfirmationTimedOut, Reason: "timed out after 1m0s"},
	}

	req, err := f.orch.Execute(context.Background(), executeParams("1000000000000000000"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDestinationLegFailure))

	assert.Equal(t, model.TerminalOutcomePartiallyCompleted, req.TerminalOutcome)
	assert.Equal(t, model.SourceLegStatusConfirmed, req.SourceLegStatus)
	assert.Equal(t, model.DestinationLegStatusFailed, req.DestinationLegStatus)
}

func TestResumeReSubmitsOnlyDestinationLeg(t *testing.T) {
	f := newFixture(t)
	// the first credit times out during Execute; when Resume re-polls it,
	// it turns out reverted, which sanctions a fresh submission
	f.dest.results = []*chainclient.ConfirmationResult{
		{Status: chainclient.ConfirmationTimedOut, Reason: "timed out"},
		{Status: chainclient.ConfirmationFailed, Reason: "execution reverted"},
	}

	req, err := f.orch.Execute(context.Background(), executeParams("1000000000000000000"))
	require.Error(t, err)
	require.Equal(t, model.TerminalOutcomePartiallyCompleted, req.TerminalOutcome)

	sourceSubmitsBefore := f.source.submits
	sourceWaitsBefore := f.source.waits

	resumed, err := f.orch.Resume(context.Background(), req.RequestID)
	require.NoError(t, err)

	assert.Equal(t, model.TerminalOutcomeCompleted, resumed.TerminalOutcome)
	assert.Equal(t, model.DestinationLegStatusConfirmed, resumed.DestinationLegStatus)

	// the confirmed source leg is never touched again
	assert.Equal(t, sourceSubmitsBefore, f.source.submits)
	assert.Equal(t, sourceWaitsBefore, f.source.waits)
	assert.Equal(t, 2, f.relayer.submits)
}

func TestResumeCompletedIsNoOp(t *testing.T) {
	f := newFixture(t)

	req, err := f.orch.Execute(context.Background(), executeParams("1000000000000000000"))
	require.NoError(t, err)
	require.Equal(t, model.TerminalOutcomeCompleted, req.TerminalOutcome)

	sourceCalls := f.source.submits + f.source.waits
	destCalls := f.relayer.submits + f.dest.waits

	resumed, err := f.orch.Resume(context.Background(), req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomeCompleted, resumed.TerminalOutcome)

	assert.Equal(t, sourceCalls, f.source.submits+f.source.waits)
	assert.Equal(t, destCalls, f.relayer.submits+f.dest.waits)
}

func TestResumeFailedIsRefused(t *testing.T) {
	f := newFixture(t)
	f.source.waitResult = &chainclient.ConfirmationResult{
		Status: chainclient.ConfirmationFailed,
		Reason: "execution reverted",
	}

	req, err := f.orch.Execute(context.Background(), executeParams("1000000000000000000"))
	require.Error(t, err)
	require.Equal(t, model.TerminalOutcomeFailed, req.TerminalOutcome)

	_, err = f.orch.Resume(context.Background(), req.RequestID)
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestResumeUnknownRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Resume(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRequestNotFound))
}

func TestCancelBeforeSourceConfirmation(t *testing.T) {
	f := newFixture(t)

	req := model.NewBridgeRequest("req-cancel", testUserAddr, testDestAddr,
		&model.Web3BigInt{Value: "1000000000000000000", Decimal: 18})
	_, err := f.store.Create(nil, req)
	require.NoError(t, err)

	cancelled, err := f.orch.Cancel(context.Background(), "req-cancel")
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomeFailed, cancelled.TerminalOutcome)
	assert.Equal(t, "cancelled by caller", cancelled.FailureReason)
}

func TestCancelAfterSourceConfirmationRefused(t *testing.T) {
	f := newFixture(t)
	f.dest.results = []*chainclient.ConfirmationResult{
		{Status: chainclient.ConfirmationTimedOut, Reason: "timed out"},
	}

	req, err := f.orch.Execute(context.Background(), executeParams("1000000000000000000"))
	require.Error(t, err)
	require.Equal(t, model.SourceLegStatusConfirmed, req.SourceLegStatus)

	// funds already left custody; cancellation must be refused even though
	// the transfer never completed
	_, err = f.orch.Cancel(context.Background(), req.RequestID)
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestRelayerUnavailableSurfacesDistinctly(t *testing.T) {
	f := newFixture(t)
	f.relayer.err = model.ErrRelayerUnavailable

	req, err := f.orch.Execute(context.Background(), executeParams("1000000000000000000"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRelayerUnavailable))
	assert.Equal(t, model.TerminalOutcomePartiallyCompleted, req.TerminalOutcome)
}

func TestExecuteAsyncReturnsPendingSnapshot(t *testing.T) {
	f := newFixture(t)

	req, err := f.orch.ExecuteAsync(context.Background(), executeParams("1000000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomeNone, req.TerminalOutcome)
	assert.Equal(t, model.SourceLegStatusPending, req.SourceLegStatus)

	require.Eventually(t, func() bool {
		stored, err := f.orch.GetStatus(req.RequestID)
		return err == nil && stored.TerminalOutcome == model.TerminalOutcomeCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconcileInFlightRecoversInterruptedRequests(t *testing.T) {
	f := newFixture(t)

	// a request caught mid-flight: source tx broadcast, process died before
	// the confirmation was recorded
	interrupted := model.NewBridgeRequest("req-interrupted", testUserAddr, testDestAddr,
		&model.Web3BigInt{Value: "1000000000000000000", Decimal: 18})
	require.NoError(t, interrupted.MarkSourceSubmitted("0xoldsource"))
	_, err := f.store.Create(nil, interrupted)
	require.NoError(t, err)

	// a request that never got its source tx out
	stale := model.NewBridgeRequest("req-stale", testUserAddr, testDestAddr,
		&model.Web3BigInt{Value: "1000000000000000000", Decimal: 18})
	_, err = f.store.Create(nil, stale)
	require.NoError(t, err)

	require.NoError(t, f.orch.ReconcileInFlight(context.Background()))

	recovered, err := f.orch.GetStatus("req-interrupted")
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomeCompleted, recovered.TerminalOutcome)
	assert.Equal(t, "0xoldsource", recovered.SourceTxHash)

	closed, err := f.orch.GetStatus("req-stale")
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomeFailed, closed.TerminalOutcome)
	assert.Equal(t, "interrupted before source submission", closed.FailureReason)
}

func TestReconcileSkipsPartiallyCompleted(t *testing.T) {
	f := newFixture(t)

	partial := model.NewBridgeRequest("req-partial", testUserAddr, testDestAddr,
		&model.Web3BigInt{Value: "1000000000000000000", Decimal: 18})
	require.NoError(t, partial.MarkSourceSubmitted("0xsrc"))
	require.NoError(t, partial.MarkSourceConfirmed())
	require.NoError(t, partial.MarkDestinationPending())
	require.NoError(t, partial.MarkDestinationFailed("relayer down"))
	_, err := f.store.Create(nil, partial)
	require.NoError(t, err)

	require.NoError(t, f.orch.ReconcileInFlight(context.Background()))

	// re-crediting is an explicit Resume decision; the sweep leaves it alone
	after, err := f.orch.GetStatus("req-partial")
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomePartiallyCompleted, after.TerminalOutcome)
	assert.Equal(t, 0, f.relayer.submits)
}

func TestReconcileLeavesLiveRunAlone(t *testing.T) {
	f := newFixture(t)
	f.source.waitDelay = 300 * time.Millisecond

	req, err := f.orch.ExecuteAsync(context.Background(), executeParams("1000000000000000000"))
	require.NoError(t, err)

	// let the background run broadcast the source tx, then sweep while its
	// confirmation wait is still in progress
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, f.orch.ReconcileInFlight(context.Background()))

	require.Eventually(t, func() bool {
		stored, err := f.orch.GetStatus(req.RequestID)
		return err == nil && stored.TerminalOutcome == model.TerminalOutcomeCompleted
	}, 2*time.Second, 10*time.Millisecond)

	// exactly one credit: the sweep must not drive a request that already
	// has a live driver
	assert.Equal(t, 1, f.relayer.submits)
	assert.Equal(t, 1, f.source.submits)
}

func TestResumeWhileRunInProgressIsRefused(t *testing.T) {
	f := newFixture(t)
	f.source.waitDelay = 300 * time.Millisecond

	req, err := f.orch.ExecuteAsync(context.Background(), executeParams("1000000000000000000"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = f.orch.Resume(context.Background(), req.RequestID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrRequestInFlight))

	require.Eventually(t, func() bool {
		stored, err := f.orch.GetStatus(req.RequestID)
		return err == nil && stored.TerminalOutcome == model.TerminalOutcomeCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, f.relayer.submits)
}

func TestCancelDuringSourceWaitSticksAndStopsCredit(t *testing.T) {
	f := newFixture(t)
	f.source.waitDelay = 300 * time.Millisecond

	req, err := f.orch.ExecuteAsync(context.Background(), executeParams("1000000000000000000"))
	require.NoError(t, err)

	// cancel lands while the background run is waiting on the source tx
	time.Sleep(50 * time.Millisecond)
	cancelled, err := f.orch.Cancel(context.Background(), req.RequestID)
	require.NoError(t, err)
	require.Equal(t, model.TerminalOutcomeFailed, cancelled.TerminalOutcome)

	// give the background run time to observe the confirmation and try to
	// move the record forward; the terminal write must win
	time.Sleep(400 * time.Millisecond)

	stored, err := f.orch.GetStatus(req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomeFailed, stored.TerminalOutcome)
	assert.Equal(t, "cancelled by caller", stored.FailureReason)

	// a cancelled request never gets a credit
	assert.Equal(t, 0, f.relayer.submits)
}

func newPartialWithCredit(t *testing.T, f *fixture, requestID, creditTxHash string) *model.BridgeRequest {
	t.Helper()
	req := model.NewBridgeRequest(requestID, testUserAddr, testDestAddr,
		&model.Web3BigInt{Value: "1000000000000000000", Decimal: 18})
	require.NoError(t, req.MarkSourceSubmitted("0xsrc"))
	require.NoError(t, req.MarkSourceConfirmed())
	require.NoError(t, req.MarkDestinationPending())
	require.NoError(t, req.MarkDestinationSubmitted(creditTxHash))
	require.NoError(t, req.MarkDestinationFailed("confirmation timed out"))
	_, err := f.store.Create(nil, req)
	require.NoError(t, err)
	return req
}

func TestResumePicksUpCreditThatLandedLate(t *testing.T) {
	f := newFixture(t)
	newPartialWithCredit(t, f, "req-late-credit", "0xoldcredit")

	// the credit whose wait timed out has since landed; resume must adopt
	// it instead of paying a second time
	resumed, err := f.orch.Resume(context.Background(), "req-late-credit")
	require.NoError(t, err)

	assert.Equal(t, model.TerminalOutcomeCompleted, resumed.TerminalOutcome)
	assert.Equal(t, model.DestinationLegStatusConfirmed, resumed.DestinationLegStatus)
	assert.Equal(t, "0xoldcredit", resumed.DestinationTxHash)
	assert.Equal(t, 0, f.relayer.submits)

	stored, err := f.orch.GetStatus("req-late-credit")
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomeCompleted, stored.TerminalOutcome)
	assert.Equal(t, "0xoldcredit", stored.DestinationTxHash)
}

func TestResumeRefusedWhileOldCreditUnresolved(t *testing.T) {
	f := newFixture(t)
	newPartialWithCredit(t, f, "req-unresolved", "0xoldcredit")
	f.dest.results = []*chainclient.ConfirmationResult{
		{Status: chainclient.ConfirmationTimedOut, Reason: "timed out"},
	}

	// the earlier credit is neither confirmed nor reverted; submitting a
	// fresh one could pay twice, so resume backs off
	_, err := f.orch.Resume(context.Background(), "req-unresolved")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDestinationLegFailure))
	assert.Equal(t, 0, f.relayer.submits)

	stored, err := f.orch.GetStatus("req-unresolved")
	require.NoError(t, err)
	assert.Equal(t, model.TerminalOutcomePartiallyCompleted, stored.TerminalOutcome)
	assert.Equal(t, "0xoldcredit", stored.DestinationTxHash)
}

func TestListHistoryValidatesAddress(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.ListHistory("garbage")
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}
