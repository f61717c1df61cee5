package bridgerequest

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/xrpyield/bridge-backend/internal/model"
)

type Store struct {
}

func New() IStore {
	return &Store{}
}

func (s *Store) Create(tx *gorm.DB, req *model.BridgeRequest) (*model.BridgeRequest, error) {
	return req, tx.Create(req).Error
}

func (s *Store) GetByRequestID(tx *gorm.DB, requestID string) (*model.BridgeRequest, error) {
	var req model.BridgeRequest
	err := tx.Where("request_id = ?", requestID).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (s *Store) ListByUserAddress(tx *gorm.DB, userAddress string) ([]model.BridgeRequest, error) {
	var reqs []model.BridgeRequest
	err := tx.Where("user_address = ?", userAddress).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// FindInFlight returns requests with no terminal outcome, scanned on boot
// and by the reconcile sweep.
func (s *Store) FindInFlight(tx *gorm.DB) ([]model.BridgeRequest, error) {
	var reqs []model.BridgeRequest
	err := tx.Where("terminal_outcome = ?", model.TerminalOutcomeNone).
		Order("created_at ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *Store) ApplyTransition(tx *gorm.DB, req *model.BridgeRequest) error {
	result := tx.Model(&model.BridgeRequest{}).
		Where("request_id = ? AND state_ordinal < ? AND terminal_outcome = ?",
			req.RequestID, req.StateOrdinal, model.TerminalOutcomeNone).
		Updates(transitionColumns(req))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrStoreWriteConflict
	}
	return nil
}

// ApplyReopen is the one write allowed to leave a terminal state: it only
// matches rows still recorded as partially completed, so a concurrent
// completion or second reopen cannot both win.
func (s *Store) ApplyReopen(tx *gorm.DB, req *model.BridgeRequest) error {
	result := tx.Model(&model.BridgeRequest{}).
		Where("request_id = ? AND state_ordinal < ? AND terminal_outcome = ?",
			req.RequestID, req.StateOrdinal, model.TerminalOutcomePartiallyCompleted).
		Updates(transitionColumns(req))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrStoreWriteConflict
	}
	return nil
}

func transitionColumns(req *model.BridgeRequest) map[string]interface{} {
	return map[string]interface{}{
		"source_leg_status":      req.SourceLegStatus,
		"destination_leg_status": req.DestinationLegStatus,
		"source_tx_hash":         req.SourceTxHash,
		"destination_tx_hash":    req.DestinationTxHash,
		"terminal_outcome":       req.TerminalOutcome,
		"state_ordinal":          req.StateOrdinal,
		"failure_reason":         req.FailureReason,
		"completed_at":           req.CompletedAt,
		"updated_at":             time.Now(),
	}
}
