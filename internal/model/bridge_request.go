package model

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type SourceLegStatus string

const (
	SourceLegStatusPending   SourceLegStatus = "pending"
	SourceLegStatusSubmitted SourceLegStatus = "submitted"
	SourceLegStatusConfirmed SourceLegStatus = "confirmed"
	SourceLegStatusFailed    SourceLegStatus = "failed"
)

type DestinationLegStatus string

const (
	DestinationLegStatusNotStarted DestinationLegStatus = "not_started"
	DestinationLegStatusPending    DestinationLegStatus = "pending"
	DestinationLegStatusSubmitted  DestinationLegStatus = "submitted"
	DestinationLegStatusConfirmed  DestinationLegStatus = "confirmed"
	DestinationLegStatusFailed     DestinationLegStatus = "failed"
)

type TerminalOutcome string

const (
	TerminalOutcomeNone               TerminalOutcome = "none"
	TerminalOutcomeCompleted          TerminalOutcome = "completed"
	TerminalOutcomePartiallyCompleted TerminalOutcome = "partially_completed"
	TerminalOutcomeFailed             TerminalOutcome = "failed"
)

// BridgeRequest is the durable record of one two-leg bridge transfer.
// Rows are never deleted; a corrected retry creates a new request
// referencing the failed one via RetryOfRequestID.
type BridgeRequest struct {
	gorm.Model
	RequestID            string               `gorm:"column:request_id;type:varchar(64);not null;uniqueIndex"`
	UserAddress          string               `gorm:"column:user_address;type:varchar(64);not null;index"`
	DestinationAddress   string               `gorm:"column:destination_address;type:varchar(64);not null"`
	Amount               string               `gorm:"column:amount;type:varchar(255);not null"`
	SourceLegStatus      SourceLegStatus      `gorm:"column:source_leg_status;type:varchar(50);default:'pending'"`
	DestinationLegStatus DestinationLegStatus `gorm:"column:destination_leg_status;type:varchar(50);default:'not_started'"`
	SourceTxHash         string               `gorm:"column:source_tx_hash;type:varchar(128)"`
	DestinationTxHash    string               `gorm:"column:destination_tx_hash;type:varchar(128)"`
	TerminalOutcome      TerminalOutcome      `gorm:"column:terminal_outcome;type:varchar(50);default:'none';index"`
	// StateOrdinal increases on every transition so the store can reject
	// stale writes arriving out of order.
	StateOrdinal     int        `gorm:"column:state_ordinal;not null;default:1"`
	RetryOfRequestID string     `gorm:"column:retry_of_request_id;type:varchar(64)"`
	FailureReason    string     `gorm:"column:failure_reason;type:text"`
	CompletedAt      *time.Time `gorm:"column:completed_at"`
}

func (BridgeRequest) TableName() string {
	return "bridge_requests"
}

func NewBridgeRequest(requestID, userAddress, destinationAddress string, amount *Web3BigInt) *BridgeRequest {
	return &BridgeRequest{
		RequestID:            requestID,
		UserAddress:          userAddress,
		DestinationAddress:   destinationAddress,
		Amount:               amount.Value,
		SourceLegStatus:      SourceLegStatusPending,
		DestinationLegStatus: DestinationLegStatusNotStarted,
		TerminalOutcome:      TerminalOutcomeNone,
		StateOrdinal:         1,
	}
}

func (r *BridgeRequest) IsTerminal() bool {
	return r.TerminalOutcome != TerminalOutcomeNone && r.TerminalOutcome != ""
}

func (r *BridgeRequest) bump() {
	r.StateOrdinal++
}

func (r *BridgeRequest) guardMutable() error {
	if r.IsTerminal() {
		return errors.Errorf("request %s already terminal (%s)", r.RequestID, r.TerminalOutcome)
	}
	return nil
}

func (r *BridgeRequest) MarkSourceSubmitted(txHash string) error {
	if err := r.guardMutable(); err != nil {
		return err
	}
	if r.SourceLegStatus != SourceLegStatusPending {
		return errors.Errorf("source leg is %s, cannot submit", r.SourceLegStatus)
	}
	r.SourceLegStatus = SourceLegStatusSubmitted
	r.SourceTxHash = txHash
	r.bump()
	return nil
}

func (r *BridgeRequest) MarkSourceConfirmed() error {
	if err := r.guardMutable(); err != nil {
		return err
	}
	if r.SourceLegStatus != SourceLegStatusSubmitted {
		return errors.Errorf("source leg is %s, cannot confirm", r.SourceLegStatus)
	}
	r.SourceLegStatus = SourceLegStatusConfirmed
	r.bump()
	return nil
}

// MarkSourceFailed is terminal: no destination leg is ever attempted when
// the source leg fails, so the whole request resolves to Failed.
func (r *BridgeRequest) MarkSourceFailed(reason string) error {
	if err := r.guardMutable(); err != nil {
		return err
	}
	if r.SourceLegStatus == SourceLegStatusConfirmed {
		return errors.New("source leg already confirmed, cannot fail")
	}
	r.SourceLegStatus = SourceLegStatusFailed
	r.TerminalOutcome = TerminalOutcomeFailed
	r.FailureReason = reason
	r.bump()
	return nil
}

// MarkDestinationPending enforces the core ordering invariant: the
// destination leg only starts after the source leg is confirmed.
func (r *BridgeRequest) MarkDestinationPending() error {
	if err := r.guardMutable(); err != nil {
		return err
	}
	if r.SourceLegStatus != SourceLegStatusConfirmed {
		return errors.Errorf("source leg is %s, destination leg cannot start", r.SourceLegStatus)
	}
	r.DestinationLegStatus = DestinationLegStatusPending
	r.bump()
	return nil
}

func (r *BridgeRequest) MarkDestinationSubmitted(txHash string) error {
	if err := r.guardMutable(); err != nil {
		return err
	}
	if r.DestinationLegStatus != DestinationLegStatusPending {
		return errors.Errorf("destination leg is %s, cannot submit", r.DestinationLegStatus)
	}
	r.DestinationLegStatus = DestinationLegStatusSubmitted
	r.DestinationTxHash = txHash
	r.bump()
	return nil
}

func (r *BridgeRequest) MarkDestinationConfirmed() error {
	if err := r.guardMutable(); err != nil {
		return err
	}
	if r.DestinationLegStatus != DestinationLegStatusSubmitted {
		return errors.Errorf("destination leg is %s, cannot confirm", r.DestinationLegStatus)
	}
	r.DestinationLegStatus = DestinationLegStatusConfirmed
	r.TerminalOutcome = TerminalOutcomeCompleted
	now := time.Now()
	r.CompletedAt = &now
	r.bump()
	return nil
}

// MarkDestinationFailed resolves to PartiallyCompleted: funds moved on the
// source chain with no destination credit. Only Resume moves it forward.
func (r *BridgeRequest) MarkDestinationFailed(reason string) error {
	if err := r.guardMutable(); err != nil {
		return err
	}
	if r.SourceLegStatus != SourceLegStatusConfirmed {
		return errors.Errorf("source leg is %s, unexpected destination failure", r.SourceLegStatus)
	}
	r.DestinationLegStatus = DestinationLegStatusFailed
	r.TerminalOutcome = TerminalOutcomePartiallyCompleted
	r.FailureReason = reason
	r.bump()
	return nil
}

// Reopen is the one sanctioned exit from PartiallyCompleted, used by Resume
// to re-drive the destination leg. The source leg is never touched.
func (r *BridgeRequest) Reopen() error {
	if r.TerminalOutcome != TerminalOutcomePartiallyCompleted {
		return errors.Errorf("request %s is %s, only partially_completed requests can be reopened", r.RequestID, r.TerminalOutcome)
	}
	r.TerminalOutcome = TerminalOutcomeNone
	r.DestinationLegStatus = DestinationLegStatusPending
	r.DestinationTxHash = ""
	r.FailureReason = ""
	r.bump()
	return nil
}

// Cancellable reports whether the caller may still abort: only before the
// source leg confirmed, i.e. before funds left custody.
func (r *BridgeRequest) Cancellable() bool {
	return !r.IsTerminal() &&
		(r.SourceLegStatus == SourceLegStatusPending || r.SourceLegStatus == SourceLegStatusSubmitted)
}

func (r *BridgeRequest) AmountWeb3() *Web3BigInt {
	return &Web3BigInt{Value: r.Amount, Decimal: 18}
}
