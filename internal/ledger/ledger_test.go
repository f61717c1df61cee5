package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/types/environments"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

type stubReader struct {
	value []interface{}
	err   error
	calls int
}

func (s *stubReader) ReadContractValue(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	*out = s.value
	return nil
}

func TestAvailableBalance(t *testing.T) {
	reader := &stubReader{value: []interface{}{big.NewInt(5_000_000)}}
	view := New(reader, logger.New(environments.Test))

	balance, err := view.AvailableBalance(context.Background(), "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "5000000", balance.Value)
	assert.Equal(t, 18, balance.Decimal)
	assert.Equal(t, 1, reader.calls)
}

func TestAvailableBalanceReaderError(t *testing.T) {
	reader := &stubReader{err: chainclient.ErrNetworkUnreachable}
	view := New(reader, logger.New(environments.Test))

	_, err := view.AvailableBalance(context.Background(), "0x1111111111111111111111111111111111111111")
	require.Error(t, err)
}

func TestAvailableBalanceUnexpectedReturn(t *testing.T) {
	tests := []struct {
		name  string
		value []interface{}
	}{
		{name: "empty return", value: []interface{}{}},
		{name: "wrong type", value: []interface{}{"not a bigint"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &stubReader{value: tt.value}
			view := New(reader, logger.New(environments.Test))

			_, err := view.AvailableBalance(context.Background(), "0x1111111111111111111111111111111111111111")
			require.Error(t, err)
		})
	}
}
