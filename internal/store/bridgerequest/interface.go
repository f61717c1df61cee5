package bridgerequest

import (
	"gorm.io/gorm"

	"github.com/xrpyield/bridge-backend/internal/model"
)

type IStore interface {
	Create(tx *gorm.DB, req *model.BridgeRequest) (*model.BridgeRequest, error)
	GetByRequestID(tx *gorm.DB, requestID string) (*model.BridgeRequest, error)
	ListByUserAddress(tx *gorm.DB, userAddress string) ([]model.BridgeRequest, error)
	FindInFlight(tx *gorm.DB) ([]model.BridgeRequest, error)
	// ApplyTransition persists a new state, guarded by the request's
	// state ordinal and by terminal_outcome = none: a stale write can
	// never clobber a newer one and a terminal record is immutable.
	ApplyTransition(tx *gorm.DB, req *model.BridgeRequest) error
	// ApplyReopen persists the single sanctioned exit from a terminal
	// state, matching only rows still recorded as partially completed.
	ApplyReopen(tx *gorm.DB, req *model.BridgeRequest) error
}
