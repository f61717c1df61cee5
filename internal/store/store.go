package store

import (
	"github.com/xrpyield/bridge-backend/internal/store/bridgerequest"
)

type Store struct {
	BridgeRequest bridgerequest.IStore
}

func New() *Store {
	return &Store{
		BridgeRequest: bridgerequest.New(),
	}
}
