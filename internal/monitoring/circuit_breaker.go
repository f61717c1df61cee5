package monitoring

import (
	"context"

	"github.com/sony/gobreaker"

	"github.com/xrpyield/bridge-backend/internal/chainclient"
	"github.com/xrpyield/bridge-backend/internal/utils/logger"
)

// CircuitBreakerChainClient wraps a chain adapter so that a flapping RPC
// endpoint fails fast instead of stacking up confirmation waits.
type CircuitBreakerChainClient struct {
	wrapped        chainclient.Client
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *logger.Logger
}

func NewCircuitBreakerChainClient(chain string, wrapped chainclient.Client, config CircuitBreakerConfig, metrics *BridgeMetrics, logger *logger.Logger) *CircuitBreakerChainClient {
	cb := &CircuitBreakerChainClient{
		wrapped: wrapped,
		logger:  logger,
	}

	settings := gobreaker.Settings{
		Name:        chain,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.ConsecutiveFailureThreshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state change", map[string]string{
				"chain": name,
				"from":  from.String(),
				"to":    to.String(),
			})
			metrics.UpdateCircuitBreakerState(name, to)
		},
	}

	cb.circuitBreaker = gobreaker.NewCircuitBreaker(settings)
	return cb
}

func (cb *CircuitBreakerChainClient) SubmitTransaction(ctx context.Context, signedTxHex string) (*chainclient.PendingTx, error) {
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.wrapped.SubmitTransaction(ctx, signedTxHex)
	})
	if err != nil {
		return nil, err
	}
	return result.(*chainclient.PendingTx), nil
}

func (cb *CircuitBreakerChainClient) WaitForConfirmation(ctx context.Context, txHash string) (*chainclient.ConfirmationResult, error) {
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		res, err := cb.wrapped.WaitForConfirmation(ctx, txHash)
		if err != nil {
			return nil, err
		}
		// a timed-out or reverted wait is a resolved answer from a healthy
		// node, not an RPC failure; only transport errors trip the breaker
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*chainclient.ConfirmationResult), nil
}

func (cb *CircuitBreakerChainClient) ReadContractValue(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error {
	_, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, cb.wrapped.ReadContractValue(ctx, out, method, args...)
	})
	return err
}

func (cb *CircuitBreakerChainClient) LatestBlock(ctx context.Context) (uint64, error) {
	result, err := cb.circuitBreaker.Execute(func() (interface{}, error) {
		return cb.wrapped.LatestBlock(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(uint64), nil
}
